package journeymap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/compasslearn/compass/internal/graph"
	"github.com/compasslearn/compass/internal/journey"
	"github.com/compasslearn/compass/internal/router"
	"github.com/compasslearn/compass/internal/screen"
	"github.com/compasslearn/compass/internal/ui/components"
	"github.com/compasslearn/compass/internal/ui/layout"
	"github.com/compasslearn/compass/internal/ui/theme"
)

type completeDoneMsg struct {
	res journey.CompleteResult
	err error
}

type expandDoneMsg struct {
	ids []string
	err error
}

type deepStudyDoneMsg struct {
	err error
}

// MapScreen displays the units of the journey's current view. It renders
// from a ViewSnapshot, never the live session: service mutations run in
// command goroutines, and the snapshot is only swapped on the update
// path once a result message lands.
type MapScreen struct {
	svc  *journey.Service
	snap journey.ViewSnapshot

	cursor       int
	scrollOffset int
	busy         bool
	notice       string
	noticeErr    bool
}

var _ screen.Screen = (*MapScreen)(nil)
var _ screen.KeyHintProvider = (*MapScreen)(nil)
var _ screen.StatusProvider = (*MapScreen)(nil)

// New snapshots the session and creates a MapScreen for it.
func New(svc *journey.Service, sessionID string) (*MapScreen, error) {
	snap, err := svc.Snapshot(context.Background(), sessionID)
	if err != nil {
		return nil, err
	}
	return &MapScreen{svc: svc, snap: snap}, nil
}

func (m *MapScreen) Init() tea.Cmd {
	return nil
}

func (m *MapScreen) cursorUnit() *journey.UnitRow {
	if m.cursor < 0 || m.cursor >= len(m.snap.Units) {
		return nil
	}
	return &m.snap.Units[m.cursor]
}

// refresh re-snapshots the session after a mutation committed.
func (m *MapScreen) refresh() {
	snap, err := m.svc.Snapshot(context.Background(), m.snap.SessionID)
	if err != nil {
		m.setNotice(err.Error(), true)
		return
	}
	m.snap = snap
	if m.cursor >= len(m.snap.Units) {
		m.cursor = len(m.snap.Units) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *MapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case completeDoneMsg:
		m.busy = false
		m.refresh()
		m.onCompleteDone(msg)
		return m, nil

	case expandDoneMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.setNotice(expandErrorText(msg.err), true)
		} else {
			m.setNotice(fmt.Sprintf("Charted %d new units.", len(msg.ids)), false)
		}
		return m, nil

	case deepStudyDoneMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.setNotice(msg.err.Error(), true)
		} else {
			m.cursor = 0
			m.scrollOffset = 0
			m.setNotice("Entered sub-journey. Press b to surface.", false)
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *MapScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Units)-1 {
			m.cursor++
		}
	case "enter":
		if u := m.cursorUnit(); u != nil {
			if err := m.svc.Open(context.Background(), m.snap.SessionID, u.ID); err != nil {
				m.setNotice(err.Error(), true)
				return m, nil
			}
			m.refresh()
			row := m.cursorUnit()
			if row == nil {
				return m, nil
			}
			detail := newUnitDetail(*row)
			return m, func() tea.Msg {
				return router.PushScreenMsg{Screen: detail}
			}
		}
	case "c":
		if u := m.cursorUnit(); u != nil {
			m.busy = true
			m.setNotice("", false)
			return m, m.complete(u.ID)
		}
	case "e":
		if u := m.cursorUnit(); u != nil {
			if u.Status != graph.StatusCompleted {
				m.setNotice("Complete this unit before charting follow-ons.", true)
				return m, nil
			}
			m.busy = true
			m.setNotice("Charting follow-on units...", false)
			return m, m.expand(u.ID)
		}
	case "d":
		if m.snap.View != "" {
			m.setNotice("Already inside a sub-journey. Press b to surface first.", true)
			return m, nil
		}
		if u := m.cursorUnit(); u != nil {
			m.busy = true
			if !u.HasSubGraph {
				m.setNotice("Charting sub-journey...", false)
			}
			return m, m.deepStudy(u.ID)
		}
	case "b":
		if m.snap.View == "" {
			return m, nil
		}
		if err := m.svc.Back(context.Background(), m.snap.SessionID); err != nil {
			m.setNotice(err.Error(), true)
			return m, nil
		}
		m.refresh()
		m.cursor = 0
		m.scrollOffset = 0
		m.setNotice("", false)
	case "g":
		if len(m.snap.Glossary) == 0 {
			m.setNotice("No glossary for this view.", false)
			return m, nil
		}
		glossary := newGlossary(m.snap.Glossary)
		return m, func() tea.Msg {
			return router.PushScreenMsg{Screen: glossary}
		}
	case "q":
		return m, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return m, nil
}

func (m *MapScreen) complete(unitID string) tea.Cmd {
	svc, sessID := m.svc, m.snap.SessionID
	return func() tea.Msg {
		res, err := svc.Complete(context.Background(), sessID, unitID)
		return completeDoneMsg{res: res, err: err}
	}
}

func (m *MapScreen) expand(unitID string) tea.Cmd {
	svc, sessID := m.svc, m.snap.SessionID
	return func() tea.Msg {
		ids, err := svc.Expand(context.Background(), sessID, unitID)
		return expandDoneMsg{ids: ids, err: err}
	}
}

func (m *MapScreen) deepStudy(unitID string) tea.Cmd {
	svc, sessID := m.svc, m.snap.SessionID
	return func() tea.Msg {
		err := svc.DeepStudy(context.Background(), sessID, unitID)
		return deepStudyDoneMsg{err: err}
	}
}

func (m *MapScreen) onCompleteDone(msg completeDoneMsg) {
	if msg.err != nil {
		if errors.Is(msg.err, journey.ErrMilestoneIncomplete) {
			m.setNotice("This unit has a sub-journey. Press d to finish it first.", true)
			return
		}
		m.setNotice(msg.err.Error(), true)
		return
	}

	res := msg.res
	switch {
	case res.RolledUp:
		m.cursor = 0
		m.scrollOffset = 0
		m.setNotice(fmt.Sprintf("Sub-journey complete! %q is done.", m.unitTitle(res.Milestone)), false)
	case res.AlreadyDone:
		m.setNotice("Already completed.", false)
	case res.Leaf && res.Next == "":
		m.setNotice("Frontier reached. Press e to chart what comes next.", false)
	case res.Next != "":
		m.setNotice(fmt.Sprintf("Completed. Up next: %s", m.unitTitle(res.Next)), false)
	default:
		m.setNotice("Completed.", false)
	}
}

func (m *MapScreen) unitTitle(id string) string {
	if row := m.snap.UnitByID(id); row != nil {
		return row.Title
	}
	return id
}

func (m *MapScreen) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *MapScreen) View(width, height int) string {
	units := m.snap.Units
	if len(units) == 0 {
		return theme.Hint.Render("  Nothing charted yet.")
	}

	listHeight := height - 2 // reserve the notice line
	if listHeight < 1 {
		listHeight = 1
	}
	m.adjustScroll(listHeight)

	var lines []string

	var pct float64
	if m.snap.Total > 0 {
		pct = float64(m.snap.Done) / float64(m.snap.Total)
	}
	bar := components.NewProgressBar("", pct, true, width-8)
	lines = append(lines, "  "+bar.View(), "")
	listHeight -= 2

	if m.snap.View != "" {
		crumb := fmt.Sprintf("  %s ▸ %s", m.snap.Context, m.snap.ViewTitle)
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(crumb))
		listHeight--
	}

	visible := 0
	for i := range units {
		if i < m.scrollOffset {
			continue
		}
		if visible >= listHeight {
			break
		}
		lines = append(lines, m.renderUnitRow(&units[i], i == m.cursor, width))
		visible++
	}

	lines = append(lines, "")
	if m.notice != "" {
		style := theme.Hint
		if m.noticeErr {
			style = lipgloss.NewStyle().Foreground(theme.Error)
		}
		lines = append(lines, style.Render("  "+m.notice))
	}

	return strings.Join(lines, "\n")
}

func (m *MapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+height {
		m.scrollOffset = m.cursor - height + 1
	}
}

func (m *MapScreen) renderUnitRow(u *journey.UnitRow, selected bool, width int) string {
	icon := u.Status.Icon()
	label := u.Status.Label()

	marker := "  "
	if u.HasSubGraph {
		marker = "◈ "
	}

	padding := 4
	iconWidth := 3
	markerWidth := 2
	labelWidth := 10
	spacing := 4
	titleWidth := width - padding - iconWidth - markerWidth - labelWidth - spacing
	if titleWidth < 10 {
		titleWidth = 10
	}

	title := truncateTitle(u.Title, titleWidth)

	var titleStyle, labelStyle lipgloss.Style
	if selected {
		titleStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	} else {
		switch u.Status {
		case graph.StatusCompleted:
			titleStyle = theme.Completed
			labelStyle = theme.Completed
		case graph.StatusActive:
			titleStyle = theme.Active
			labelStyle = theme.Active
		case graph.StatusAvailable:
			titleStyle = theme.Available
			labelStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
		default:
			titleStyle = theme.Locked
			labelStyle = theme.Locked
		}
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	titlePadded := fmt.Sprintf("%-*s", titleWidth, title)
	return fmt.Sprintf("  %s%s %s%s  %s",
		cursor,
		icon,
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(marker),
		titleStyle.Render(titlePadded),
		labelStyle.Render(fmt.Sprintf("%9s", label)),
	)
}

// truncateTitle shortens s to at most max cells, counting runes so a
// multibyte title is never cut mid-character.
func truncateTitle(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(r[:max-1]) + "…"
}

func (m *MapScreen) Title() string {
	if m.snap.View != "" {
		return m.snap.ViewTitle
	}
	return m.snap.Context
}

func (m *MapScreen) HeaderStatus() string {
	return fmt.Sprintf("✦ %d/%d charted", m.snap.Done, m.snap.Total)
}

func (m *MapScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "c", Description: "Complete"},
		{Key: "d", Description: "Deep study"},
		{Key: "e", Description: "Expand"},
		{Key: "g", Description: "Glossary"},
	}
	if m.snap.View != "" {
		hints = append(hints, layout.KeyHint{Key: "b", Description: "Surface"})
	}
	hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	return hints
}

func expandErrorText(err error) string {
	switch {
	case errors.Is(err, graph.ErrNoSuggestions):
		return "No follow-on units suggested. The map is unchanged."
	case errors.Is(err, graph.ErrParentNotCompleted):
		return "Complete this unit before charting follow-ons."
	case errors.Is(err, journey.ErrStaleGeneration):
		return "The map changed while charting. Try again."
	default:
		return err.Error()
	}
}
