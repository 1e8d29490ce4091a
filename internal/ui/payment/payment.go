// Package payment renders the payment step. Payment itself happens out
// of band; this step surfaces whatever the finalize call returned (a
// payment URL, a reference number) and lets the user continue once
// they have acted on it.
package payment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/seaswell/rollcall/internal/ui/styles"
)

// ContinueMsg is sent when the user proceeds to confirmation.
// Navigating back to the fee summary is the orchestrator's esc handling.
type ContinueMsg struct{}

const zoneContinueButton = "payment-continue"

// wellKnownLabels maps intent keys to display labels. Unknown keys fall
// back to the raw key name so new server fields still show up.
var wellKnownLabels = map[string]string{
	"payment_url":      "Payment URL",
	"reference_number": "Reference",
	"amount_due":       "Amount Due",
	"expires_at":       "Expires",
	"status":           "Status",
}

// Model holds the payment step state.
type Model struct {
	intent map[string]any
	keys   []string

	width  int
	height int
}

// New creates the payment step from the raw finalize result. A nil or
// unparsable intent renders an instructions-only view.
func New(intent json.RawMessage) Model {
	m := Model{}
	if len(intent) == 0 {
		return m
	}

	var parsed map[string]any
	if err := json.Unmarshal(intent, &parsed); err != nil {
		return m
	}
	m.intent = parsed

	for k := range parsed {
		if k == "registration_id" || k == "id" {
			continue
		}
		m.keys = append(m.keys, k)
	}
	sort.Strings(m.keys)
	return m
}

// HasIntent reports whether any payment details were returned.
func (m Model) HasIntent() bool { return len(m.keys) > 0 }

// SetSize sets the viewport dimensions.
func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			return m, func() tea.Msg { return ContinueMsg{} }
		}

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			if zone.Get(zoneContinueButton).InBounds(msg) {
				return m, func() tea.Msg { return ContinueMsg{} }
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View renders the payment details and continue button.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Payment"))
	b.WriteString("\n")

	if !m.HasIntent() {
		b.WriteString("Your registration has been submitted.\n")
		b.WriteString("No payment details were provided; any balance can be settled later.\n\n")
	} else {
		b.WriteString("Complete payment using the details below, then continue.\n\n")
		for _, k := range m.keys {
			label, ok := wellKnownLabels[k]
			if !ok {
				label = k
			}
			b.WriteString(styles.FormLabelStyle.Render(label + ":"))
			b.WriteString(" ")
			b.WriteString(formatIntentValue(m.intent[k]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(zone.Mark(zoneContinueButton, styles.PrimaryButtonFocusedStyle.Render("Continue")))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("enter: continue  ·  esc: back"))
	return b.String()
}

func formatIntentValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case nil:
		return ""
	default:
		out, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(out)
	}
}
