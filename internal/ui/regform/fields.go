package regform

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/seaswell/rollcall/internal/schema"
)

const inputWidth = 40

// fieldState holds runtime state for one rendered descriptor.
type fieldState struct {
	desc schema.FieldDescriptor

	// Single-line input state (text, number, date, email, tel)
	textInput textinput.Model

	// Textarea state
	textArea textarea.Model

	// Checkbox state
	checked bool

	// Select/radio state
	optionCursor   int
	selectedOption int // index into desc.Options, -1 = none
}

// usesTextInput reports whether the field renders as a single-line input.
func (fs *fieldState) usesTextInput() bool {
	switch fs.desc.FieldType {
	case schema.FieldText, schema.FieldNumber, schema.FieldDate, schema.FieldEmail, schema.FieldTel:
		return true
	default:
		return false
	}
}

func (fs *fieldState) usesOptionList() bool {
	return fs.desc.FieldType == schema.FieldSelect || fs.desc.FieldType == schema.FieldRadio
}

// newFieldState creates a fieldState, seeding it from a prior value when
// one exists (back navigation, resumed draft).
func newFieldState(desc schema.FieldDescriptor, prior schema.Value, hasPrior bool) fieldState {
	fs := fieldState{desc: desc, selectedOption: -1}

	switch desc.FieldType {
	case schema.FieldTextarea:
		ta := textarea.New()
		ta.Placeholder = desc.Placeholder
		ta.SetWidth(inputWidth)
		ta.SetHeight(3)
		ta.CharLimit = 0
		if hasPrior {
			ta.SetValue(prior.String())
		}
		fs.textArea = ta

	case schema.FieldCheckbox:
		if hasPrior {
			fs.checked = prior.Bool()
		}

	case schema.FieldSelect, schema.FieldRadio:
		if hasPrior {
			for i, opt := range desc.Options {
				if opt.Value == prior.String() {
					fs.selectedOption = i
					fs.optionCursor = i
					break
				}
			}
		}

	default:
		ti := textinput.New()
		ti.Placeholder = desc.Placeholder
		ti.Prompt = ""
		ti.Width = inputWidth
		if hasPrior {
			ti.SetValue(prior.String())
		}
		fs.textInput = ti
	}

	return fs
}

// value extracts the field's current value.
func (fs *fieldState) value() schema.Value {
	switch fs.desc.FieldType {
	case schema.FieldTextarea:
		return schema.Text(fs.textArea.Value())
	case schema.FieldCheckbox:
		return schema.Flag(fs.checked)
	case schema.FieldSelect, schema.FieldRadio:
		if fs.selectedOption >= 0 && fs.selectedOption < len(fs.desc.Options) {
			return schema.Text(fs.desc.Options[fs.selectedOption].Value)
		}
		return schema.Text("")
	default:
		return schema.Text(fs.textInput.Value())
	}
}

func (fs *fieldState) focus() {
	switch {
	case fs.usesTextInput():
		fs.textInput.Focus()
	case fs.desc.FieldType == schema.FieldTextarea:
		fs.textArea.Focus()
	}
}

func (fs *fieldState) blur() {
	switch {
	case fs.usesTextInput():
		fs.textInput.Blur()
	case fs.desc.FieldType == schema.FieldTextarea:
		fs.textArea.Blur()
	}
}
