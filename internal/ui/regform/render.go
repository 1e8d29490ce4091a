package regform

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/seaswell/rollcall/internal/schema"
	"github.com/seaswell/rollcall/internal/ui/styles"
	"github.com/seaswell/rollcall/internal/validate"
)

// View renders the form: title, fields in sort order with inline errors,
// then the submit/back buttons or the loading line.
func (m Model) View() string {
	var b strings.Builder

	if m.noForm {
		b.WriteString(styles.TitleStyle.Render("Registration Details"))
		b.WriteString("\n")
		b.WriteString("No additional information is required for this program.\n\n")
		b.WriteString(m.renderButtons())
		return b.String()
	}

	title := m.form.Name
	if title == "" {
		title = "Registration Details"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	if m.form.Description != "" {
		b.WriteString(styles.HelpStyle.Render(m.form.Description))
		b.WriteString("\n\n")
	}

	for i := range m.fields {
		b.WriteString(m.renderField(i))
		b.WriteString("\n")
	}

	if general, ok := m.errors[validate.GeneralKey]; ok {
		b.WriteString(styles.ErrorStyle.Render(general))
		b.WriteString("\n")
	}

	b.WriteString(m.renderButtons())
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("tab/shift+tab: move  ·  ctrl+s: submit  ·  esc: back"))

	return b.String()
}

// renderField renders one descriptor: label, input, and error line.
func (m Model) renderField(index int) string {
	fs := &m.fields[index]
	focused := m.focusedIndex == index

	labelStyle := styles.FormLabelStyle
	if focused {
		labelStyle = styles.FormLabelFocusedStyle
	}
	label := labelStyle.Render(fs.desc.Label)
	if fs.desc.IsRequired {
		label += styles.RequiredMarkStyle.Render(" *")
	}

	var input string
	switch {
	case fs.desc.FieldType == schema.FieldCheckbox:
		box := "[ ]"
		if fs.checked {
			box = "[x]"
		}
		prefix := " "
		if focused {
			prefix = styles.SelectionIndicatorStyle.Render(">")
		}
		input = prefix + box + " " + fs.desc.Label

	case fs.usesOptionList():
		var rows []string
		for j, opt := range fs.desc.Options {
			prefix := " "
			if focused && j == fs.optionCursor {
				prefix = styles.SelectionIndicatorStyle.Render(">")
			}
			marker := "( )"
			if j == fs.selectedOption {
				marker = "(●)"
			}
			rows = append(rows, zone.Mark(makeItemZoneID(index, j), prefix+marker+" "+opt.Label))
		}
		input = strings.Join(rows, "\n")

	case fs.desc.FieldType == schema.FieldTextarea:
		input = fs.textArea.View()

	default:
		input = fs.textInput.View()
	}

	lines := []string{label, input}
	if msg, ok := m.errors[fs.desc.FieldName]; ok {
		lines = append(lines, styles.FieldErrorStyle.Render(msg))
	}

	block := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if fs.desc.FieldType == schema.FieldCheckbox {
		// Checkbox: the whole row is the click target.
		return zone.Mark(makeFieldZoneID(index), block)
	}
	if fs.usesOptionList() {
		// Option rows carry their own zones.
		return block
	}
	return zone.Mark(makeFieldZoneID(index), block)
}

// renderButtons renders submit/back, or the loading line while a
// submission is in flight.
func (m Model) renderButtons() string {
	if m.loadingText != "" {
		return styles.HelpStyle.Render(m.loadingText)
	}

	onButtons := m.focusedIndex == -1

	submitStyle := styles.PrimaryButtonStyle
	if onButtons && m.focusedButton == 0 {
		submitStyle = styles.PrimaryButtonFocusedStyle
	}
	submitBtn := zone.Mark(zoneSubmitButton, submitStyle.Render("Submit"))

	backStyle := styles.SecondaryButtonStyle
	if onButtons && m.focusedButton == 1 {
		backStyle = styles.SecondaryButtonFocusedStyle
	}
	backBtn := zone.Mark(zoneBackButton, backStyle.Render("Back"))

	return submitBtn + "  " + backBtn
}
