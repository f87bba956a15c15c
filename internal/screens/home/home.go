package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/compasslearn/compass/internal/journey"
	"github.com/compasslearn/compass/internal/router"
	"github.com/compasslearn/compass/internal/screen"
	"github.com/compasslearn/compass/internal/screens/journeymap"
	"github.com/compasslearn/compass/internal/screens/journeys"
	"github.com/compasslearn/compass/internal/screens/newjourney"
	"github.com/compasslearn/compass/internal/store"
	"github.com/compasslearn/compass/internal/ui/components"
	"github.com/compasslearn/compass/internal/ui/theme"
)

// HomeScreen is the entry screen of the application.
type HomeScreen struct {
	svc       *journey.Service
	menu      components.Menu
	recent    *store.SessionMeta
	llmReady  bool
	loadError error
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc *journey.Service, llmReady bool) *HomeScreen {
	h := &HomeScreen{svc: svc, llmReady: llmReady}

	metas, err := svc.List(context.Background())
	if err != nil {
		h.loadError = err
	} else if len(metas) > 0 {
		h.recent = &metas[0]
	}

	continueLabel := "CONTINUE JOURNEY"
	if h.recent != nil {
		continueLabel = fmt.Sprintf("CONTINUE: %s", strings.ToUpper(truncate(h.recent.Context, 28)))
	}

	items := []components.MenuItem{
		{Label: continueLabel, Disabled: h.recent == nil, Action: func() tea.Cmd {
			if h.recent == nil {
				return nil
			}
			id := h.recent.ID
			return func() tea.Msg {
				m, err := journeymap.New(svc, id)
				if err != nil {
					return nil
				}
				return router.PushScreenMsg{Screen: m}
			}
		}},
		{Label: "NEW JOURNEY", Disabled: !llmReady, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: newjourney.New(svc)}
			}
		}},
		{Label: "ALL JOURNEYS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: journeys.New(svc)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	title := theme.Title.Width(width).Render("C O M P A S S")
	subtitle := theme.Subtitle.Width(width).Render("chart a course through anything you want to learn")
	sections = append(sections, title, subtitle, "")

	if !h.llmReady {
		warn := lipgloss.NewStyle().
			Foreground(theme.Error).
			Width(width).
			Align(lipgloss.Center).
			Render("No LLM provider configured. Set COMPASS_LLM_PROVIDER to start new journeys.")
		sections = append(sections, warn, "")
	}

	menu := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(h.menu.View())
	sections = append(sections, menu)

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
