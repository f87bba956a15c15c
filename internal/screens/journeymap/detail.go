package journeymap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/compasslearn/compass/internal/journey"
	"github.com/compasslearn/compass/internal/screen"
	"github.com/compasslearn/compass/internal/ui/layout"
	"github.com/compasslearn/compass/internal/ui/theme"
)

// UnitDetailScreen shows one unit of the current view. It holds a copied
// row, so it stays readable regardless of what the session does behind it.
type UnitDetailScreen struct {
	unit journey.UnitRow
}

var _ screen.Screen = (*UnitDetailScreen)(nil)
var _ screen.KeyHintProvider = (*UnitDetailScreen)(nil)

func newUnitDetail(unit journey.UnitRow) *UnitDetailScreen {
	return &UnitDetailScreen{unit: unit}
}

func (d *UnitDetailScreen) Init() tea.Cmd { return nil }

func (d *UnitDetailScreen) Title() string {
	return d.unit.Title
}

func (d *UnitDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return d, nil
}

func (d *UnitDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (d *UnitDetailScreen) View(width, height int) string {
	u := d.unit

	contentWidth := width - 8
	if contentWidth > 72 {
		contentWidth = 72
	}

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s", u.Status.Icon(), u.Title)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + u.Status.Label()))
	if u.HasSubGraph {
		b.WriteString(dimStyle.Render(fmt.Sprintf("   ◈ sub-journey %d/%d", u.SubDone, u.SubTotal)))
	}
	b.WriteString("\n\n")

	if u.Description != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(u.Description))
		b.WriteString("\n\n")
	}

	if len(u.Requires) > 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			Render("  Requires"))
		b.WriteString("\n")
		for _, dep := range u.Requires {
			icon := "○"
			style := dimStyle
			if dep.Done {
				icon = "●"
				style = lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", icon, dep.Title)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(u.Unlocks) > 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true).
			Render("  Unlocks"))
		b.WriteString("\n")
		for _, title := range u.Unlocks {
			b.WriteString(dimStyle.Render("  → " + title))
			b.WriteString("\n")
		}
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
