// Package feesummary renders the fee review step: an itemized table of
// fees, discounts, and totals, with finalize and back actions.
package feesummary

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/ui/styles"
)

// FinalizeRequestMsg is sent when the user confirms the fees.
type FinalizeRequestMsg struct{}

// RefreshRequestMsg is sent when the user asks for a re-fetch.
type RefreshRequestMsg struct{}

// BackMsg is sent when the user navigates back to the form step.
type BackMsg struct{}

const (
	zoneFinalizeButton = "feesummary-finalize"
	zoneBackButton     = "feesummary-back"

	amountColumnWidth = 12
	labelColumnWidth  = 36
)

// Model holds the fee summary state.
type Model struct {
	summary *api.FinancialSummary

	loading     bool
	loadingText string
	errText     string

	// 0 = finalize, 1 = back
	focusedButton int

	width  int
	height int
}

// New creates a fee summary in its loading state.
func New() Model {
	return Model{loading: true}
}

// SetSummary installs a freshly fetched summary. The additive totals are
// checked and logged when they disagree; the server remains the source
// of truth so a mismatch never blocks the step.
func (m Model) SetSummary(summary *api.FinancialSummary) Model {
	m.summary = summary
	m.loading = false
	m.loadingText = ""
	m.errText = ""

	if summary != nil {
		checkTotals(summary)
	}
	return m
}

// SetError records a failed fetch or finalize. An already loaded
// summary stays visible behind the error line.
func (m Model) SetError(text string) Model {
	m.loading = false
	m.loadingText = ""
	m.errText = text
	return m
}

// SetLoading marks a fetch or finalize in flight.
func (m Model) SetLoading(text string) Model {
	m.loading = m.summary == nil
	m.loadingText = text
	m.errText = ""
	return m
}

// IsLoading reports whether a request is in flight.
func (m Model) IsLoading() bool { return m.loading || m.loadingText != "" }

// Summary returns the currently displayed summary.
func (m Model) Summary() *api.FinancialSummary { return m.summary }

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
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			return m.handleMouseClick(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.loadingText != "" {
		return m, nil
	}

	if m.errText != "" && m.summary == nil {
		// Load failed outright; only retry or back make sense.
		if msg.String() == "r" {
			m = m.SetLoading("Loading fees...")
			return m, func() tea.Msg { return RefreshRequestMsg{} }
		}
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focusedButton = 1 - m.focusedButton
	case "r":
		m = m.SetLoading("Refreshing fees...")
		return m, func() tea.Msg { return RefreshRequestMsg{} }
	case "enter":
		if m.focusedButton == 0 {
			return m, func() tea.Msg { return FinalizeRequestMsg{} }
		}
		return m, func() tea.Msg { return BackMsg{} }
	}
	return m, nil
}

func (m Model) handleMouseClick(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.IsLoading() {
		return m, nil
	}
	if zone.Get(zoneFinalizeButton).InBounds(msg) {
		m.focusedButton = 0
		return m, func() tea.Msg { return FinalizeRequestMsg{} }
	}
	if zone.Get(zoneBackButton).InBounds(msg) {
		m.focusedButton = 1
		return m, func() tea.Msg { return BackMsg{} }
	}
	return m, nil
}

// View renders the itemized fee table.
func (m Model) View() string {
	title := styles.TitleStyle.Render("Fee Summary")

	if m.loading && m.summary == nil {
		text := m.loadingText
		if text == "" {
			text = "Loading fees..."
		}
		return title + "\n" + styles.PendingStyle.Render(text)
	}
	if m.errText != "" && m.summary == nil {
		return title + "\n" +
			styles.ErrorStyle.Render(m.errText) + "\n" +
			styles.HelpStyle.Render("r: retry  ·  esc: back")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	s := m.summary

	b.WriteString(feeRow("Base fee", s.BaseFee, styles.FeeLabelStyle))
	b.WriteString("\n")
	for _, line := range s.AdditionalFees {
		b.WriteString(feeRow(line.Name, line.Amount, styles.FeeLabelStyle))
		b.WriteString("\n")
	}
	for _, line := range s.Discounts {
		b.WriteString(feeRow(line.Name, -math.Abs(line.Amount), styles.FeeLabelStyle))
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("─", labelColumnWidth+amountColumnWidth))
	b.WriteString("\n")
	b.WriteString(feeRow("Subtotal", s.TotalBeforeTax, styles.FeeLabelStyle))
	b.WriteString("\n")
	b.WriteString(feeRow("Tax", s.TaxAmount, styles.FeeLabelStyle))
	b.WriteString("\n")
	b.WriteString(feeRow("Total due", s.TotalAmountDue, styles.FeeTotalStyle))
	b.WriteString("\n")
	if s.AmountPaid != 0 {
		b.WriteString(feeRow("Paid", -s.AmountPaid, styles.FeeLabelStyle))
		b.WriteString("\n")
		b.WriteString(feeRow("Balance due", s.BalanceDue, styles.FeeTotalStyle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.errText != "" {
		b.WriteString(styles.ErrorStyle.Render(m.errText))
		b.WriteString("\n")
	}

	b.WriteString(m.renderButtons())
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("enter: confirm  ·  r: refresh  ·  esc: back"))
	return b.String()
}

func (m Model) renderButtons() string {
	if m.loadingText != "" {
		return styles.HelpStyle.Render(m.loadingText)
	}

	finalizeStyle := styles.PrimaryButtonStyle
	if m.focusedButton == 0 {
		finalizeStyle = styles.PrimaryButtonFocusedStyle
	}
	backStyle := styles.SecondaryButtonStyle
	if m.focusedButton == 1 {
		backStyle = styles.SecondaryButtonFocusedStyle
	}

	return zone.Mark(zoneFinalizeButton, finalizeStyle.Render("Confirm & Continue")) +
		"  " +
		zone.Mark(zoneBackButton, backStyle.Render("Back"))
}

// feeRow right-aligns the amount against a fixed label column.
func feeRow(label string, amount float64, labelStyle lipgloss.Style) string {
	label = styles.TruncateString(label, labelColumnWidth)
	pad := labelColumnWidth - runewidth.StringWidth(label)
	if pad < 0 {
		pad = 0
	}

	amountText := styles.FormatAmount(amount)
	amountPad := amountColumnWidth - runewidth.StringWidth(amountText)
	if amountPad < 0 {
		amountPad = 0
	}

	return labelStyle.Render(label) +
		strings.Repeat(" ", pad+amountPad) +
		styles.FeeAmountStyle.Render(amountText)
}

// checkTotals verifies the summary's additive relationships and logs
// any disagreement. Server values are displayed as received.
func checkTotals(s *api.FinancialSummary) {
	const epsilon = 0.005

	subtotal := s.BaseFee
	for _, line := range s.AdditionalFees {
		subtotal += line.Amount
	}
	for _, line := range s.Discounts {
		subtotal -= math.Abs(line.Amount)
	}
	if math.Abs(subtotal-s.TotalBeforeTax) > epsilon {
		log.Warn(log.CatUI, "fee subtotal mismatch",
			"computed", subtotal, "reported", s.TotalBeforeTax)
	}

	total := s.TotalBeforeTax + s.TaxAmount
	if math.Abs(total-s.TotalAmountDue) > epsilon {
		log.Warn(log.CatUI, "fee total mismatch",
			"computed", total, "reported", s.TotalAmountDue)
	}

	balance := s.TotalAmountDue - s.AmountPaid
	if math.Abs(balance-s.BalanceDue) > epsilon {
		log.Warn(log.CatUI, "fee balance mismatch",
			"computed", balance, "reported", s.BalanceDue)
	}
}
