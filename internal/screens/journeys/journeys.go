package journeys

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
	"github.com/compasslearn/compass/internal/store"
	"github.com/compasslearn/compass/internal/ui/layout"
	"github.com/compasslearn/compass/internal/ui/theme"
)

// JourneysScreen lists stored journeys for resuming or deleting.
type JourneysScreen struct {
	svc      *journey.Service
	metas    []store.SessionMeta
	progress []string // "done/total" per row, aligned with metas
	cursor   int
	confirm  bool // pending delete confirmation for the cursor row
	err      error
}

var _ screen.Screen = (*JourneysScreen)(nil)
var _ screen.KeyHintProvider = (*JourneysScreen)(nil)

// New creates a JourneysScreen.
func New(svc *journey.Service) *JourneysScreen {
	j := &JourneysScreen{svc: svc}
	j.reload()
	return j
}

func (j *JourneysScreen) reload() {
	ctx := context.Background()
	metas, err := j.svc.List(ctx)
	j.metas = metas
	j.err = err

	j.progress = make([]string, len(metas))
	for i, m := range metas {
		snap, err := j.svc.Snapshot(ctx, m.ID)
		if err != nil {
			j.progress[i] = "?"
			continue
		}
		j.progress[i] = fmt.Sprintf("%d/%d", snap.RootDone, snap.RootTotal)
	}

	if j.cursor >= len(j.metas) {
		j.cursor = len(j.metas) - 1
	}
	if j.cursor < 0 {
		j.cursor = 0
	}
}

func (j *JourneysScreen) Init() tea.Cmd {
	return nil
}

func (j *JourneysScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return j, nil
	}

	if j.confirm {
		switch kmsg.String() {
		case "y":
			j.confirm = false
			if j.cursor < len(j.metas) {
				j.err = j.svc.Delete(context.Background(), j.metas[j.cursor].ID)
				j.reload()
			}
		default:
			j.confirm = false
		}
		return j, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if j.cursor > 0 {
			j.cursor--
		}
	case "down", "j":
		if j.cursor < len(j.metas)-1 {
			j.cursor++
		}
	case "x":
		if len(j.metas) > 0 {
			j.confirm = true
		}
	case "enter":
		if j.cursor < len(j.metas) {
			id := j.metas[j.cursor].ID
			svc := j.svc
			return j, func() tea.Msg {
				m, err := journeymap.New(svc, id)
				if err != nil {
					return nil
				}
				return router.PushScreenMsg{Screen: m}
			}
		}
	case "q":
		return j, func() tea.Msg { return router.PopScreenMsg{} }
	}

	return j, nil
}

func (j *JourneysScreen) View(width, height int) string {
	if j.err != nil {
		return lipgloss.NewStyle().
			Foreground(theme.Error).
			Padding(1, 2).
			Render(j.err.Error())
	}

	if len(j.metas) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("No journeys yet. Start one from the home screen."))
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, m := range j.metas {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == j.cursor {
			cursor = "▸ "
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}

		topic := m.Context
		if r := []rune(topic); len(r) > 48 {
			topic = string(r[:47]) + "…"
		}
		line := fmt.Sprintf("  %s%-50s %6s  %s", cursor, topic, j.progress[i],
			m.UpdatedAt.Local().Format("2006-01-02 15:04"))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if j.confirm && j.cursor < len(j.metas) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true).
			Render(fmt.Sprintf("  Delete %q? Press y to confirm.", j.metas[j.cursor].Context)))
	}

	return b.String()
}

func (j *JourneysScreen) Title() string {
	return "Journeys"
}

func (j *JourneysScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Resume"},
		{Key: "x", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}
