// Package regform renders a server-supplied registration form and
// collects validated values. The component owns per-field edit state and
// validation display; the orchestrator owns submission and flow state.
package regform

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/seaswell/rollcall/internal/keys"
	"github.com/seaswell/rollcall/internal/schema"
	"github.com/seaswell/rollcall/internal/validate"
)

// ValueChangedMsg reports a single-field edit so the orchestrator can
// patch flow state without waiting for submit.
type ValueChangedMsg struct {
	Field string
	Value schema.Value
}

// SubmitMsg is sent when every field passes validation. The orchestrator
// performs the network submission.
type SubmitMsg struct {
	Values schema.ValueMap
}

// BackMsg is sent when the back button is activated.
type BackMsg struct{}

// Model is the dynamic form state.
//
// Model is immutable in the Bubble Tea sense: Update returns a new Model
// rather than modifying the receiver.
type Model struct {
	form   schema.Form
	engine *validate.Engine
	keymap keys.KeyMap

	fields        []fieldState
	focusedIndex  int // index into fields (-1 = on buttons)
	focusedButton int // 0 = submit, 1 = back (when focusedIndex == -1)

	errors validate.Errors

	// noForm renders the "no additional information required" branch.
	noForm bool

	// loadingText, if non-empty, shows a spinner line instead of buttons
	// and ignores keyboard input.
	loadingText string

	width, height int
}

// New creates a form model for the given schema. Prior values (from back
// navigation or a resumed draft) pre-fill the inputs.
func New(form schema.Form, engine *validate.Engine, initial schema.ValueMap) Model {
	m := Model{
		form:         form,
		engine:       engine,
		keymap:       keys.DefaultKeyMap(),
		fields:       make([]fieldState, len(form.Fields)),
		focusedIndex: 0,
		errors:       make(validate.Errors),
	}
	engine.CompileSchema(form)

	for i, desc := range form.Fields {
		prior, hasPrior := initial[desc.FieldName]
		m.fields[i] = newFieldState(desc, prior, hasPrior)
	}

	if len(m.fields) > 0 {
		m.fields[0].focus()
	} else {
		m.focusedIndex = -1
	}
	return m
}

// NewNoForm creates the model for a program without a custom form. The
// step is immediately completable; submit sends an empty value map.
func NewNoForm() Model {
	return Model{
		keymap:       keys.DefaultKeyMap(),
		noForm:       true,
		focusedIndex: -1,
		errors:       make(validate.Errors),
	}
}

// Init returns the cursor blink command when a text input has focus.
func (m Model) Init() tea.Cmd {
	if m.focusedIndex >= 0 && m.fields[m.focusedIndex].usesTextInput() {
		return textinput.Blink
	}
	return nil
}

// Values collects the current value of every field.
func (m Model) Values() schema.ValueMap {
	values := make(schema.ValueMap, len(m.fields))
	for i := range m.fields {
		values[m.fields[i].desc.FieldName] = m.fields[i].value()
	}
	return values
}

// Errors returns the active validation error map.
func (m Model) Errors() validate.Errors { return m.errors }

// SetLoading sets the in-flight indicator. Non-empty text disables input.
func (m Model) SetLoading(text string) Model {
	m.loadingText = text
	return m
}

// IsLoading reports whether a submission is in flight.
func (m Model) IsLoading() bool { return m.loadingText != "" }

// SetGeneralError records a submission-level failure under the reserved
// key and re-enables input so the user can retry.
func (m Model) SetGeneralError(text string) Model {
	m.loadingText = ""
	if m.errors == nil {
		m.errors = make(validate.Errors)
	}
	if text == "" {
		delete(m.errors, validate.GeneralKey)
	} else {
		m.errors[validate.GeneralKey] = text
	}
	return m
}

// SetSize sets the available viewport dimensions.
func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	return m
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.loadingText != "" {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			if newM, cmd, ok := m.handleMouseClick(msg); ok {
				return newM, cmd
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKeyMsg processes keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.noForm {
		if key.Matches(msg, m.keymap.Enter) || key.Matches(msg, m.keymap.Submit) {
			return m, func() tea.Msg { return SubmitMsg{Values: schema.ValueMap{}} }
		}
		return m, nil
	}

	// Ctrl+S submits from any field.
	if key.Matches(msg, m.keymap.Submit) {
		return m.submit()
	}

	switch {
	case key.Matches(msg, m.keymap.NextItem):
		m = m.nextField()
		return m, m.blinkCmd()

	case key.Matches(msg, m.keymap.PrevItem):
		m = m.prevField()
		return m, m.blinkCmd()

	case key.Matches(msg, m.keymap.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keymap.Down):
		return m.handleDown()

	case key.Matches(msg, m.keymap.Up):
		return m.handleUp()

	case key.Matches(msg, m.keymap.Toggle):
		if m.focusedIndex >= 0 {
			fs := &m.fields[m.focusedIndex]
			if fs.desc.FieldType == schema.FieldCheckbox {
				fs.checked = !fs.checked
				return m, m.fieldEdited(m.focusedIndex)
			}
			if fs.usesOptionList() {
				fs.selectedOption = fs.optionCursor
				return m, m.fieldEdited(m.focusedIndex)
			}
		}
	}

	// Forward everything else to the focused input.
	return m.forwardToInput(msg)
}

func (m Model) handleEnter() (Model, tea.Cmd) {
	if m.focusedIndex >= 0 {
		fs := &m.fields[m.focusedIndex]
		switch {
		case fs.desc.FieldType == schema.FieldCheckbox:
			fs.checked = !fs.checked
			return m, m.fieldEdited(m.focusedIndex)
		case fs.usesOptionList():
			fs.selectedOption = fs.optionCursor
			return m, m.fieldEdited(m.focusedIndex)
		case fs.desc.FieldType == schema.FieldTextarea:
			// Enter inserts a newline inside a textarea.
			return m.forwardToInput(tea.KeyMsg{Type: tea.KeyEnter})
		default:
			m = m.nextField()
			return m, m.blinkCmd()
		}
	}

	switch m.focusedButton {
	case 0:
		return m.submit()
	case 1:
		return m, func() tea.Msg { return BackMsg{} }
	}
	return m, nil
}

func (m Model) handleDown() (Model, tea.Cmd) {
	if m.focusedIndex >= 0 {
		fs := &m.fields[m.focusedIndex]
		if fs.usesOptionList() {
			if fs.optionCursor >= len(fs.desc.Options)-1 {
				m = m.nextField()
				return m, m.blinkCmd()
			}
			fs.optionCursor++
			return m, nil
		}
		if fs.desc.FieldType == schema.FieldTextarea {
			return m.forwardToInput(tea.KeyMsg{Type: tea.KeyDown})
		}
		m = m.nextField()
		return m, m.blinkCmd()
	}

	// On buttons: submit -> back -> wrap to first field.
	if m.focusedButton == 0 {
		m.focusedButton = 1
		return m, nil
	}
	if len(m.fields) > 0 {
		m.focusedIndex = 0
		m.fields[0].focus()
		return m, m.blinkCmd()
	}
	return m, nil
}

func (m Model) handleUp() (Model, tea.Cmd) {
	if m.focusedIndex >= 0 {
		fs := &m.fields[m.focusedIndex]
		if fs.usesOptionList() {
			if fs.optionCursor <= 0 {
				m = m.prevField()
				return m, m.blinkCmd()
			}
			fs.optionCursor--
			return m, nil
		}
		if fs.desc.FieldType == schema.FieldTextarea {
			return m.forwardToInput(tea.KeyMsg{Type: tea.KeyUp})
		}
		m = m.prevField()
		return m, m.blinkCmd()
	}

	if m.focusedButton == 1 {
		m.focusedButton = 0
		return m, nil
	}
	if last := len(m.fields) - 1; last >= 0 {
		m.focusedIndex = last
		m.fields[last].focus()
		return m, m.blinkCmd()
	}
	return m, nil
}

// forwardToInput routes a key to the focused text input or textarea and
// revalidates that one field when its value changed.
func (m Model) forwardToInput(msg tea.Msg) (Model, tea.Cmd) {
	if m.focusedIndex < 0 || m.focusedIndex >= len(m.fields) {
		return m, nil
	}
	fs := &m.fields[m.focusedIndex]

	before := fs.value()
	var cmd tea.Cmd
	switch {
	case fs.usesTextInput():
		fs.textInput, cmd = fs.textInput.Update(msg)
	case fs.desc.FieldType == schema.FieldTextarea:
		fs.textArea, cmd = fs.textArea.Update(msg)
	default:
		return m, nil
	}

	if fs.value() != before {
		return m, tea.Batch(cmd, m.fieldEdited(m.focusedIndex))
	}
	return m, cmd
}

// fieldEdited revalidates exactly one descriptor and emits the value
// change. Only this field's error entry is touched, keeping per-edit
// cost independent of field count.
func (m *Model) fieldEdited(index int) tea.Cmd {
	fs := &m.fields[index]
	value := fs.value()

	if msg := m.engine.ValidateField(fs.desc, value); msg != "" {
		m.errors[fs.desc.FieldName] = msg
	} else {
		delete(m.errors, fs.desc.FieldName)
	}

	name := fs.desc.FieldName
	return func() tea.Msg {
		return ValueChangedMsg{Field: name, Value: value}
	}
}

// submit validates every field. Failures become the active error map and
// the form stays; a clean pass emits SubmitMsg.
func (m Model) submit() (Model, tea.Cmd) {
	if m.noForm {
		return m, func() tea.Msg { return SubmitMsg{Values: schema.ValueMap{}} }
	}

	values := m.Values()
	errs := m.engine.ValidateAll(m.form, values)
	if !errs.Empty() {
		m.errors = errs
		return m, nil
	}

	m.errors = make(validate.Errors)
	return m, func() tea.Msg { return SubmitMsg{Values: values} }
}

// nextField moves focus to the next field or the buttons.
func (m Model) nextField() Model {
	if m.focusedIndex >= 0 {
		m.fields[m.focusedIndex].blur()
		if m.focusedIndex+1 < len(m.fields) {
			m.focusedIndex++
			m.fields[m.focusedIndex].focus()
		} else {
			m.focusedIndex = -1
			m.focusedButton = 0
		}
		return m
	}

	if m.focusedButton == 0 {
		m.focusedButton = 1
	} else if len(m.fields) > 0 {
		m.focusedIndex = 0
		m.fields[0].focus()
	}
	return m
}

// prevField moves focus to the previous field or wraps to the buttons.
func (m Model) prevField() Model {
	if m.focusedIndex >= 0 {
		m.fields[m.focusedIndex].blur()
		if m.focusedIndex > 0 {
			m.focusedIndex--
			m.fields[m.focusedIndex].focus()
		} else {
			m.focusedIndex = -1
			m.focusedButton = 1
		}
		return m
	}

	if m.focusedButton == 1 {
		m.focusedButton = 0
	} else if last := len(m.fields) - 1; last >= 0 {
		m.focusedIndex = last
		m.fields[last].focus()
	}
	return m
}

// blinkCmd returns the blink command when the focused field takes text.
func (m Model) blinkCmd() tea.Cmd {
	if m.focusedIndex >= 0 && m.fields[m.focusedIndex].usesTextInput() {
		return textinput.Blink
	}
	return nil
}

// handleMouseClick focuses clicked fields, selects clicked options, and
// activates clicked buttons.
func (m Model) handleMouseClick(msg tea.MouseMsg) (Model, tea.Cmd, bool) {
	if z := zone.Get(zoneSubmitButton); z != nil && z.InBounds(msg) {
		m = m.blurAll()
		m.focusedIndex = -1
		m.focusedButton = 0
		newM, cmd := m.submit()
		return newM, cmd, true
	}
	if z := zone.Get(zoneBackButton); z != nil && z.InBounds(msg) {
		return m, func() tea.Msg { return BackMsg{} }, true
	}

	for i := range m.fields {
		fs := &m.fields[i]

		if fs.usesOptionList() {
			for j := range fs.desc.Options {
				if z := zone.Get(makeItemZoneID(i, j)); z != nil && z.InBounds(msg) {
					m = m.blurAll()
					m.focusedIndex = i
					fs.optionCursor = j
					fs.selectedOption = j
					return m, m.fieldEdited(i), true
				}
			}
		}

		if z := zone.Get(makeFieldZoneID(i)); z != nil && z.InBounds(msg) {
			m = m.blurAll()
			m.focusedIndex = i
			m.fields[i].focus()
			if fs.desc.FieldType == schema.FieldCheckbox {
				fs.checked = !fs.checked
				return m, m.fieldEdited(i), true
			}
			return m, m.blinkCmd(), true
		}
	}

	return m, nil, false
}

func (m Model) blurAll() Model {
	if m.focusedIndex >= 0 && m.focusedIndex < len(m.fields) {
		m.fields[m.focusedIndex].blur()
	}
	return m
}

const (
	zoneSubmitButton = "regform-submit"
	zoneBackButton   = "regform-back"
)

func makeFieldZoneID(field int) string {
	return fmt.Sprintf("regform-field-%d", field)
}

func makeItemZoneID(field, item int) string {
	return fmt.Sprintf("regform-item-%d-%d", field, item)
}
