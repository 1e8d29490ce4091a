package regform

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/seaswell/rollcall/internal/schema"
	"github.com/seaswell/rollcall/internal/testutil"
	"github.com/seaswell/rollcall/internal/validate"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	m.Run()
}

func sampleForm() schema.Form {
	return testutil.FormOf(
		testutil.Field("first_name", schema.FieldText, testutil.Required(), testutil.WithLabel("First Name"), testutil.WithSortOrder(1)),
		testutil.Field("email", schema.FieldEmail, testutil.Required(), testutil.WithLabel("Email"), testutil.WithSortOrder(2)),
		testutil.Field("shirt_size", schema.FieldSelect, testutil.WithLabel("Shirt Size"), testutil.WithSortOrder(3),
			testutil.WithOptions("s", "Small", "m", "Medium", "l", "Large")),
		testutil.Field("waiver", schema.FieldCheckbox, testutil.Required(), testutil.WithLabel("Waiver"), testutil.WithSortOrder(4)),
	)
}

func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// collect runs a command and returns the messages it produces.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findValueChanged(msgs []tea.Msg) (ValueChangedMsg, bool) {
	for _, msg := range msgs {
		if vc, ok := msg.(ValueChangedMsg); ok {
			return vc, true
		}
	}
	return ValueChangedMsg{}, false
}

func TestFocusCycling_Forward(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)
	require.Equal(t, 0, m.focusedIndex)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, m.focusedIndex)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 3, m.focusedIndex)

	// Past the last field lands on the submit button.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, -1, m.focusedIndex)
	require.Equal(t, 0, m.focusedButton)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, m.focusedButton)

	// Wraps back to the first field.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 0, m.focusedIndex)
}

func TestFocusCycling_Reverse(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, -1, m.focusedIndex)
	require.Equal(t, 1, m.focusedButton, "reverse from first field lands on back button")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, 0, m.focusedButton)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, 3, m.focusedIndex, "wraps to last field")
}

func TestEditRevalidatesOnlyThatField(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)

	// Tab to email and type an invalid address.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeString(t, m, "nope")

	require.Contains(t, m.errors, "email")
	require.NotContains(t, m.errors, "first_name", "other fields are untouched by per-edit validation")

	// Finishing the address clears the entry.
	m = typeString(t, m, "@example.com")
	require.NotContains(t, m.errors, "email")
}

func TestEditEmitsValueChanged(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'A'}})
	_ = m

	vc, ok := findValueChanged(collect(cmd))
	require.True(t, ok)
	require.Equal(t, "first_name", vc.Field)
	require.Equal(t, "A", vc.Value.String())
}

func TestCheckboxToggle(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)
	for range 3 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	require.Equal(t, 3, m.focusedIndex)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.True(t, m.fields[3].checked)

	vc, ok := findValueChanged(collect(cmd))
	require.True(t, ok)
	require.Equal(t, "waiver", vc.Field)
	require.True(t, vc.Value.Bool())
}

func TestSelectNavigationAndChoice(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 2, m.focusedIndex)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, m.fields[2].selectedOption)

	vc, ok := findValueChanged(collect(cmd))
	require.True(t, ok)
	require.Equal(t, "m", vc.Value.String())

	// Down past the last option escapes to the next field.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 3, m.focusedIndex)
}

func TestSubmitBlockedByValidation(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	_, ok := findValueChanged(collect(cmd))
	require.False(t, ok)

	for _, msg := range collect(cmd) {
		_, isSubmit := msg.(SubmitMsg)
		require.False(t, isSubmit, "invalid form must not submit")
	}
	require.Contains(t, m.errors, "first_name")
	require.Contains(t, m.errors, "email")
	require.Contains(t, m.errors, "waiver")
}

func TestSubmitWithValidValues(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)

	m = typeString(t, m, "Ada")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeString(t, m, "ada@example.com")
	// Skip optional select, check the waiver.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, m.errors.Empty())

	var submit *SubmitMsg
	for _, msg := range collect(cmd) {
		if s, ok := msg.(SubmitMsg); ok {
			submit = &s
		}
	}
	require.NotNil(t, submit)
	require.Equal(t, "Ada", submit.Values["first_name"].String())
	require.Equal(t, "ada@example.com", submit.Values["email"].String())
	require.True(t, submit.Values["waiver"].Bool())
}

func TestInitialValuesPrefill(t *testing.T) {
	initial := schema.ValueMap{
		"first_name": schema.Text("Ada"),
		"shirt_size": schema.Text("l"),
		"waiver":     schema.Flag(true),
	}
	m := New(sampleForm(), validate.NewEngine(), initial)

	values := m.Values()
	require.Equal(t, "Ada", values["first_name"].String())
	require.Equal(t, "l", values["shirt_size"].String())
	require.True(t, values["waiver"].Bool())
}

func TestGeneralErrorDisplayAndRetry(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)
	m = m.SetLoading("Submitting...")
	require.True(t, m.IsLoading())

	// Keys are ignored while loading.
	before := m.Values()["first_name"].String()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.Equal(t, before, m.Values()["first_name"].String())

	m = m.SetGeneralError("connection refused")
	require.False(t, m.IsLoading())
	require.Equal(t, "connection refused", m.errors[validate.GeneralKey])
	require.Contains(t, m.View(), "connection refused")
}

func TestNoFormVariant(t *testing.T) {
	m := NewNoForm()
	require.Contains(t, m.View(), "No additional information")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_ = m

	var submit *SubmitMsg
	for _, msg := range collect(cmd) {
		if s, ok := msg.(SubmitMsg); ok {
			submit = &s
		}
	}
	require.NotNil(t, submit)
	require.Empty(t, submit.Values)
}

func TestViewShowsFieldErrors(t *testing.T) {
	m := New(sampleForm(), validate.NewEngine(), nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	view := m.View()
	require.Contains(t, view, "First Name is required")
	require.True(t, strings.Contains(view, "Email is required"))
}
