package newjourney

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/compasslearn/compass/internal/journey"
	"github.com/compasslearn/compass/internal/router"
	"github.com/compasslearn/compass/internal/screen"
	"github.com/compasslearn/compass/internal/screens/journeymap"
	"github.com/compasslearn/compass/internal/ui/components"
	"github.com/compasslearn/compass/internal/ui/layout"
	"github.com/compasslearn/compass/internal/ui/theme"
)

const maxTopicLen = 120

type startedMsg struct {
	sessionID string
}

type startFailedMsg struct {
	err error
}

// NewJourneyScreen prompts for a topic and charts the initial curriculum.
type NewJourneyScreen struct {
	svc        *journey.Service
	input      components.TextInput
	generating bool
	err        error
}

var _ screen.Screen = (*NewJourneyScreen)(nil)
var _ screen.KeyHintProvider = (*NewJourneyScreen)(nil)

// New creates a NewJourneyScreen.
func New(svc *journey.Service) *NewJourneyScreen {
	return &NewJourneyScreen{
		svc:   svc,
		input: components.NewTextInput("e.g. Linear algebra, Baking sourdough, Rust...", maxTopicLen),
	}
}

func (n *NewJourneyScreen) Init() tea.Cmd {
	return n.input.Init()
}

func (n *NewJourneyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		n.generating = false
		m, err := journeymap.New(n.svc, msg.sessionID)
		if err != nil {
			n.err = err
			return n, nil
		}
		return n, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: m}
		}

	case startFailedMsg:
		n.generating = false
		n.err = msg.err
		return n, nil

	case tea.KeyMsg:
		if n.generating {
			return n, nil
		}
		if msg.String() == "enter" {
			topic := strings.TrimSpace(n.input.Value())
			if topic == "" {
				return n, nil
			}
			n.generating = true
			n.err = nil
			return n, n.start(topic)
		}
	}

	if n.generating {
		return n, nil
	}
	var cmd tea.Cmd
	n.input, cmd = n.input.Update(msg)
	return n, cmd
}

func (n *NewJourneyScreen) start(topic string) tea.Cmd {
	svc := n.svc
	return func() tea.Msg {
		sess, err := svc.Start(context.Background(), topic)
		if err != nil {
			return startFailedMsg{err: err}
		}
		return startedMsg{sessionID: sess.ID}
	}
}

func (n *NewJourneyScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Width(width).Render("New Journey"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render("  What do you want to learn?"))
	b.WriteString("\n\n")
	b.WriteString("  " + n.input.View())
	b.WriteString("\n\n")

	switch {
	case n.generating:
		b.WriteString(theme.Hint.Render("  Charting your course... this can take a few seconds."))
	case n.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  " + n.err.Error()))
	default:
		b.WriteString(theme.Hint.Render("  Press Enter to chart the course."))
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Center, b.String())
}

func (n *NewJourneyScreen) Title() string {
	return "New Journey"
}

func (n *NewJourneyScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Chart"},
		{Key: "Esc", Description: "Back"},
	}
}
