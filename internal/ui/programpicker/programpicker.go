// Package programpicker renders the program selection step: a list of
// open programs beside a markdown-rendered description pane.
package programpicker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/keys"
	"github.com/seaswell/rollcall/internal/ui/markdown"
	"github.com/seaswell/rollcall/internal/ui/styles"
)

// ChosenMsg is sent when the user confirms a program.
type ChosenMsg struct {
	Program api.Program
}

// RetryMsg is sent when the user retries a failed program fetch.
type RetryMsg struct{}

const (
	listWidth    = 32
	defaultWidth = 80
)

// Model holds the program picker state.
type Model struct {
	programs []api.Program
	selected int

	loading  bool
	errText  string
	renderer *markdown.Renderer

	keymap keys.KeyMap
	width  int
	height int
}

// New creates a picker in its loading state. markdownStyle is the
// glamour style name from config ("dark" or "light").
func New(markdownStyle string) Model {
	r, err := markdown.New(defaultWidth-listWidth, markdownStyle)
	if err != nil {
		// Fall back to the default style rather than failing the step.
		r, _ = markdown.New(defaultWidth-listWidth, "")
	}
	return Model{
		loading:  true,
		renderer: r,
		keymap:   keys.DefaultKeyMap(),
		width:    defaultWidth,
	}
}

// SetPrograms replaces the list and clears the loading and error states.
func (m Model) SetPrograms(programs []api.Program) Model {
	m.programs = programs
	m.loading = false
	m.errText = ""
	if m.selected >= len(programs) {
		m.selected = 0
	}
	return m
}

// SetError puts the picker into its error state.
func (m Model) SetError(text string) Model {
	m.loading = false
	m.errText = text
	return m
}

// SetLoading marks a fetch in flight.
func (m Model) SetLoading() Model {
	m.loading = true
	m.errText = ""
	return m
}

// Selected returns the highlighted program, if any.
func (m Model) Selected() (api.Program, bool) {
	if m.selected >= 0 && m.selected < len(m.programs) {
		return m.programs[m.selected], true
	}
	return api.Program{}, false
}

// SetSize sets the viewport dimensions.
func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	if descWidth := w - listWidth - 4; descWidth > 10 {
		if r, err := markdown.New(descWidth, ""); err == nil {
			m.renderer = r
		}
	}
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			return m.handleMouseClick(msg)
		}

	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.errText != "" {
		if msg.String() == "r" {
			m = m.SetLoading()
			return m, func() tea.Msg { return RetryMsg{} }
		}
		return m, nil
	}
	if m.loading || len(m.programs) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.programs)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "enter":
		program := m.programs[m.selected]
		return m, func() tea.Msg { return ChosenMsg{Program: program} }
	}
	return m, nil
}

func (m Model) handleMouseClick(msg tea.MouseMsg) (Model, tea.Cmd) {
	for i := range m.programs {
		if zone.Get(makeProgramZoneID(i)).InBounds(msg) {
			if i == m.selected {
				program := m.programs[i]
				return m, func() tea.Msg { return ChosenMsg{Program: program} }
			}
			m.selected = i
			return m, nil
		}
	}
	return m, nil
}

// View renders the list pane and the description pane side by side.
func (m Model) View() string {
	title := styles.TitleStyle.Render("Select a Program")

	if m.loading {
		return title + "\n" + styles.PendingStyle.Render("Loading programs...")
	}
	if m.errText != "" {
		return title + "\n" +
			styles.ErrorStyle.Render(m.errText) + "\n" +
			styles.HelpStyle.Render("r: retry")
	}
	if len(m.programs) == 0 {
		return title + "\n" + styles.HelpStyle.Render("No programs are currently open for registration.")
	}

	var list strings.Builder
	for i, p := range m.programs {
		var line string
		if i == m.selected {
			line = styles.SelectionIndicatorStyle.Render(">") +
				lipgloss.NewStyle().Bold(true).Render(styles.TruncateString(p.Name, listWidth-2))
		} else {
			line = " " + styles.TruncateString(p.Name, listWidth-2)
		}
		list.WriteString(zone.Mark(makeProgramZoneID(i), line))
		if i < len(m.programs)-1 {
			list.WriteString("\n")
		}
	}

	listPane := lipgloss.NewStyle().Width(listWidth).Render(list.String())

	desc := m.programs[m.selected].Description
	if desc == "" {
		desc = "*No description provided.*"
	}
	descPane := m.renderer.RenderOrPlain(desc)

	body := lipgloss.JoinHorizontal(lipgloss.Top, listPane, "  ", descPane)

	return title + "\n" + body + "\n\n" +
		styles.HelpStyle.Render("j/k: move  ·  enter: select")
}

func makeProgramZoneID(index int) string {
	return fmt.Sprintf("programpicker-item-%d", index)
}
