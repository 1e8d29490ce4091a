// Package confirmation renders the final step: the registration status
// fetched from the server, classified as successful or still
// processing, with the registrant's details echoed back.
package confirmation

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/schema"
	"github.com/seaswell/rollcall/internal/ui/styles"
)

// RetryMsg is sent when the user re-checks a processing registration.
type RetryMsg struct{}

// Outcome classifies a registration record for display.
type Outcome int

const (
	// OutcomeProcessing means the registration is recorded but not yet
	// confirmed. It is never presented as a failure.
	OutcomeProcessing Outcome = iota
	OutcomeSuccessful
)

// Classify maps a registration record to a display outcome. A record
// counts as successful when the server says so outright, or when the
// money has cleared: nothing left to pay and something was paid.
func Classify(record *api.RegistrationRecord) Outcome {
	if record == nil {
		return OutcomeProcessing
	}
	switch strings.ToLower(record.Status) {
	case "completed", "confirmed":
		return OutcomeSuccessful
	}
	// The record carries its own balance fields; the nested summary is a
	// fallback for backends that only populate the breakdown.
	balance, paid := record.BalanceDue, record.AmountPaid
	if balance == 0 && paid == 0 && record.FinancialSummary != nil {
		balance = record.FinancialSummary.BalanceDue
		paid = record.FinancialSummary.AmountPaid
	}
	if balance <= 0 && paid > 0 {
		return OutcomeSuccessful
	}
	return OutcomeProcessing
}

// Model holds the confirmation step state.
type Model struct {
	record      *api.RegistrationRecord
	programName string

	// fallback supplies registrant details when the record omits them,
	// from the values entered earlier in the flow.
	fallback schema.ValueMap

	loading bool
	errText string

	width  int
	height int
}

// New creates a confirmation step in its loading state.
func New(programName string, fallback schema.ValueMap) Model {
	return Model{
		programName: programName,
		fallback:    fallback,
		loading:     true,
	}
}

// SetRecord installs a fetched registration record.
func (m Model) SetRecord(record *api.RegistrationRecord) Model {
	m.record = record
	m.loading = false
	m.errText = ""
	return m
}

// SetError records a failed status fetch.
func (m Model) SetError(text string) Model {
	m.loading = false
	m.errText = text
	return m
}

// SetLoading marks a status fetch in flight.
func (m Model) SetLoading() Model {
	m.loading = true
	m.errText = ""
	return m
}

// SetSize sets the viewport dimensions.
func (m Model) SetSize(w, h int) Model {
	m.width = w
	m.height = h
	return m
}

// field returns a registrant detail, preferring the server's echo of
// the submitted form and falling back to the local flow values.
func (m Model) field(name string) string {
	if m.record != nil {
		if v := m.record.FormValue(name); v != "" {
			return v
		}
	}
	if m.fallback != nil {
		if v, ok := m.fallback[name]; ok {
			return v.String()
		}
	}
	return ""
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if msg.String() == "r" && (m.errText != "" || Classify(m.record) == OutcomeProcessing) {
			m = m.SetLoading()
			return m, func() tea.Msg { return RetryMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View renders the outcome.
func (m Model) View() string {
	title := styles.TitleStyle.Render("Confirmation")

	if m.loading {
		return title + "\n" + styles.PendingStyle.Render("Checking registration status...")
	}
	if m.errText != "" {
		return title + "\n" +
			styles.ErrorStyle.Render(m.errText) + "\n" +
			styles.HelpStyle.Render("r: retry  ·  q: quit")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	switch Classify(m.record) {
	case OutcomeSuccessful:
		b.WriteString(styles.SuccessStyle.Render("✓ Registration complete"))
	default:
		b.WriteString(styles.PendingStyle.Render("● Registration received, payment processing"))
	}
	b.WriteString("\n\n")

	if m.programName != "" {
		b.WriteString(styles.FormLabelStyle.Render("Program:") + " " + m.programName + "\n")
	}
	if m.record != nil && m.record.ID != "" {
		b.WriteString(styles.FormLabelStyle.Render("Registration:") + " " + m.record.ID + "\n")
	}

	name := strings.TrimSpace(m.field("first_name") + " " + m.field("last_name"))
	if name != "" {
		b.WriteString(styles.FormLabelStyle.Render("Name:") + " " + name + "\n")
	}
	if email := m.field("email"); email != "" {
		b.WriteString(styles.FormLabelStyle.Render("Email:") + " " + email + "\n")
	}
	if phone := m.field("phone"); phone != "" {
		b.WriteString(styles.FormLabelStyle.Render("Phone:") + " " + phone + "\n")
	}

	if m.record != nil && m.record.FinancialSummary != nil {
		s := m.record.FinancialSummary
		b.WriteString("\n")
		b.WriteString(styles.FormLabelStyle.Render("Paid:") + " " + styles.FormatAmount(s.AmountPaid) + "\n")
		b.WriteString(styles.FormLabelStyle.Render("Balance:") + " " + styles.FormatAmount(s.BalanceDue) + "\n")
	}

	b.WriteString("\n")
	if Classify(m.record) == OutcomeProcessing {
		width := m.width
		if width <= 0 {
			width = 80
		}
		notice := wordwrap.String("Payment can take a few minutes to settle. If this persists, contact the program organizer.", width)
		b.WriteString(styles.HelpStyle.Render(notice))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("r: check again  ·  q: quit"))
	} else {
		b.WriteString(styles.HelpStyle.Render("q: quit"))
	}
	return b.String()
}
