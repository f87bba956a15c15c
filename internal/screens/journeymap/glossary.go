package journeymap

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/compasslearn/compass/internal/graph"
	"github.com/compasslearn/compass/internal/screen"
	"github.com/compasslearn/compass/internal/ui/layout"
	"github.com/compasslearn/compass/internal/ui/theme"
)

// GlossaryScreen lists the terms generated alongside the current graph.
type GlossaryScreen struct {
	terms        []graph.Term
	scrollOffset int
}

var _ screen.Screen = (*GlossaryScreen)(nil)
var _ screen.KeyHintProvider = (*GlossaryScreen)(nil)

func newGlossary(terms []graph.Term) *GlossaryScreen {
	return &GlossaryScreen{terms: terms}
}

func (g *GlossaryScreen) Init() tea.Cmd { return nil }
func (g *GlossaryScreen) Title() string { return "Glossary" }

func (g *GlossaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if g.scrollOffset > 0 {
				g.scrollOffset--
			}
		case "down", "j":
			if g.scrollOffset < len(g.terms)-1 {
				g.scrollOffset++
			}
		}
	}
	return g, nil
}

func (g *GlossaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (g *GlossaryScreen) View(width, height int) string {
	contentWidth := width - 8
	if contentWidth > 72 {
		contentWidth = 72
	}

	termStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	defStyle := lipgloss.NewStyle().
		Width(contentWidth).
		Foreground(theme.Text).
		PaddingLeft(4)

	var lines []string
	used := 0
	for i := g.scrollOffset; i < len(g.terms) && used < height-1; i++ {
		t := g.terms[i]
		entry := termStyle.Render("  "+t.Term) + "\n" + defStyle.Render(t.Definition)
		entryHeight := lipgloss.Height(entry) + 1
		if used+entryHeight > height && used > 0 {
			break
		}
		lines = append(lines, entry)
		used += entryHeight
	}

	return "\n" + strings.Join(lines, "\n\n")
}
