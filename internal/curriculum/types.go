package curriculum

import (
	"context"

	"github.com/compasslearn/compass/internal/graph"
)

// OutlineUnit is one generated unit of a curriculum outline. Dependencies
// reference other ids within the same outline.
type OutlineUnit struct {
	ID           string
	Title        string
	Description  string
	Dependencies []string
}

// Outline is a generated curriculum: units plus a glossary of terms the
// learner will meet along the way.
type Outline struct {
	Units    []OutlineUnit
	Glossary []graph.Term
}

// BuildGraph turns the outline into a validated learning graph. A
// generated outline that breaks a structural invariant (duplicate ids,
// dangling or cyclic dependencies) is rejected here, before any session
// sees it.
func (o *Outline) BuildGraph() (*graph.Graph, error) {
	units := make([]graph.Unit, 0, len(o.Units))
	for _, u := range o.Units {
		units = append(units, graph.Unit{
			ID:           u.ID,
			Title:        u.Title,
			Description:  u.Description,
			Dependencies: u.Dependencies,
		})
	}
	return graph.Build(units, o.Glossary)
}

// FollowOnInput holds the context for suggesting follow-on units after a
// learner finishes a graph leaf.
type FollowOnInput struct {
	// Topic is the journey's original subject.
	Topic string

	// Unit is the leaf unit just completed.
	Unit graph.Unit

	// ExistingTitles lists every unit already in the graph so the model
	// does not suggest repeats.
	ExistingTitles []string
}

// DeepStudyInput holds the context for materializing a unit's sub-graph.
type DeepStudyInput struct {
	Topic string
	Unit  graph.Unit
}

// Generator produces curricula. The engine treats every failure from a
// Generator as recoverable: the targeted graph is left untouched and the
// caller may retry.
type Generator interface {
	// Outline generates the initial curriculum for a topic.
	Outline(ctx context.Context, topic string) (*Outline, error)

	// FollowOns suggests new units to append under a completed leaf.
	FollowOns(ctx context.Context, in FollowOnInput) ([]graph.Draft, error)

	// SubOutline generates the nested curriculum for one unit's deep study.
	SubOutline(ctx context.Context, in DeepStudyInput) (*Outline, error)
}
