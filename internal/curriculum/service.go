package curriculum

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/compasslearn/compass/internal/graph"
	"github.com/compasslearn/compass/internal/llm"
)

// Service generates curricula through an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

var _ Generator = (*Service)(nil)

// NewService creates a curriculum generation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type outlineUnitOutput struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
}

type glossaryEntryOutput struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type outlineOutput struct {
	Units    []outlineUnitOutput   `json:"units"`
	Glossary []glossaryEntryOutput `json:"glossary"`
}

type followOnOutput struct {
	Suggestions []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"suggestions"`
}

// Outline generates the initial curriculum for a topic.
func (s *Service) Outline(ctx context.Context, topic string) (*Outline, error) {
	ctx = llm.WithPurpose(ctx, "outline")
	return s.generateOutline(ctx, outlineSystemPrompt, buildOutlineUserMessage(topic, s.cfg.OutlineUnits))
}

// SubOutline generates the nested curriculum drilling into one unit.
func (s *Service) SubOutline(ctx context.Context, in DeepStudyInput) (*Outline, error) {
	ctx = llm.WithPurpose(ctx, "sub-outline")
	return s.generateOutline(ctx, subOutlineSystemPrompt, buildSubOutlineUserMessage(in, s.cfg.SubOutlineUnits))
}

func (s *Service) generateOutline(ctx context.Context, system, userMsg string) (*Outline, error) {
	req := llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      OutlineSchema,
		MaxTokens:   s.cfg.OutlineMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("outline generation: %w", err)
	}

	var out outlineOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse outline response: %w", err)
	}
	if len(out.Units) == 0 {
		return nil, fmt.Errorf("outline generation: model returned no units")
	}

	outline := &Outline{
		Units:    make([]OutlineUnit, 0, len(out.Units)),
		Glossary: make([]graph.Term, 0, len(out.Glossary)),
	}
	for _, u := range out.Units {
		outline.Units = append(outline.Units, OutlineUnit{
			ID:           u.ID,
			Title:        u.Title,
			Description:  u.Description,
			Dependencies: u.Dependencies,
		})
	}
	for _, g := range out.Glossary {
		outline.Glossary = append(outline.Glossary, graph.Term{
			Term:       g.Term,
			Definition: g.Definition,
		})
	}

	// Surface structurally broken outlines here so callers never hold a
	// half-usable one. BuildGraph on the returned outline will pass.
	if _, err := outline.BuildGraph(); err != nil {
		return nil, fmt.Errorf("outline generation: %w", err)
	}
	return outline, nil
}

// FollowOns suggests units to append under a completed leaf. An empty
// slice is a valid result: the caller falls back to "no further content".
func (s *Service) FollowOns(ctx context.Context, in FollowOnInput) ([]graph.Draft, error) {
	ctx = llm.WithPurpose(ctx, "follow-on")

	req := llm.Request{
		System: followOnSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFollowOnUserMessage(in, s.cfg.FollowOnCount)},
		},
		Schema:      FollowOnSchema,
		MaxTokens:   s.cfg.FollowOnMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("follow-on generation: %w", err)
	}

	var out followOnOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse follow-on response: %w", err)
	}

	drafts := make([]graph.Draft, 0, len(out.Suggestions))
	for _, sug := range out.Suggestions {
		if sug.Title == "" {
			continue
		}
		drafts = append(drafts, graph.Draft{
			Title:       sug.Title,
			Description: sug.Description,
		})
	}
	if len(drafts) > s.cfg.FollowOnCount {
		drafts = drafts[:s.cfg.FollowOnCount]
	}
	return drafts, nil
}
