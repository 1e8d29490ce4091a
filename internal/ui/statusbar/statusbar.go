// Package statusbar renders the step progress trail shown at the
// bottom of the screen.
package statusbar

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/seaswell/rollcall/internal/flow"
	"github.com/seaswell/rollcall/internal/ui/styles"
)

// Model holds the status bar state.
type Model struct {
	current   flow.Step
	completed map[flow.Step]bool
	note      string
	width     int
}

// New creates a status bar at the first step.
func New() Model {
	return Model{completed: map[flow.Step]bool{}}
}

// SetProgress updates the highlighted step and the completed set.
func (m Model) SetProgress(current flow.Step, completed map[flow.Step]bool) Model {
	m.current = current
	m.completed = completed
	return m
}

// SetNote sets the right-aligned text (draft saved, server URL).
func (m Model) SetNote(note string) Model {
	m.note = note
	return m
}

// SetWidth sets the render width.
func (m Model) SetWidth(w int) Model {
	m.width = w
	return m
}

// View renders the trail: done steps dimmed with a check, the current
// step highlighted, upcoming steps muted.
func (m Model) View() string {
	parts := make([]string, 0, len(flow.Steps()))
	for _, step := range flow.Steps() {
		label := step.String()
		switch {
		case step == m.current:
			parts = append(parts, styles.StepCurrentStyle.Render(label))
		case m.completed[step]:
			parts = append(parts, styles.StepDoneStyle.Render("✓"+label))
		default:
			parts = append(parts, styles.StepPendingStyle.Render(label))
		}
	}
	trail := strings.Join(parts, styles.StepPendingStyle.Render(" › "))

	if m.note == "" || m.width == 0 {
		return styles.StatusBarStyle.Render(trail)
	}

	note := styles.HelpStyle.Render(m.note)
	gap := m.width - ansi.StringWidth(trail) - ansi.StringWidth(note) - 2
	if gap < 1 {
		return styles.StatusBarStyle.Render(trail)
	}
	return styles.StatusBarStyle.Render(trail + strings.Repeat(" ", gap) + note)
}
