package feesummary

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/seaswell/rollcall/internal/api"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	m.Run()
}

func sampleSummary() *api.FinancialSummary {
	return &api.FinancialSummary{
		BaseFee: 150,
		AdditionalFees: []api.FeeLine{
			{Name: "Equipment rental", Amount: 25},
		},
		Discounts: []api.FeeLine{
			{Name: "Early bird", Amount: 10},
		},
		TotalBeforeTax: 165,
		TaxAmount:      13.20,
		TotalAmountDue: 178.20,
		AmountPaid:     0,
		BalanceDue:     178.20,
	}
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func rune1(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestLoadingState(t *testing.T) {
	m := New()
	require.Contains(t, m.View(), "Loading fees")

	_, cmd := m.Update(enter())
	require.Nil(t, cmd)
}

func TestRendersTotals(t *testing.T) {
	m := New().SetSummary(sampleSummary())

	view := m.View()
	require.Contains(t, view, "Base fee")
	require.Contains(t, view, "$150.00")
	require.Contains(t, view, "Equipment rental")
	require.Contains(t, view, "Early bird")
	require.Contains(t, view, "-$10.00")
	require.Contains(t, view, "$178.20")
	require.Contains(t, view, "Total due")
}

func TestShowsBalanceWhenPartiallyPaid(t *testing.T) {
	s := sampleSummary()
	s.AmountPaid = 100
	s.BalanceDue = 78.20
	m := New().SetSummary(s)

	view := m.View()
	require.Contains(t, view, "Balance due")
	require.Contains(t, view, "$78.20")
}

func TestEnterFinalizes(t *testing.T) {
	m := New().SetSummary(sampleSummary())

	_, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	_, ok := cmd().(FinalizeRequestMsg)
	require.True(t, ok)
}

func TestTabSwitchesToBack(t *testing.T) {
	m := New().SetSummary(sampleSummary())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	_, ok := cmd().(BackMsg)
	require.True(t, ok)
}

func TestRefreshRequested(t *testing.T) {
	m := New().SetSummary(sampleSummary())

	m, cmd := m.Update(rune1('r'))
	require.NotNil(t, cmd)
	_, ok := cmd().(RefreshRequestMsg)
	require.True(t, ok)
	require.True(t, m.IsLoading())
}

func TestFailedLoadRetry(t *testing.T) {
	m := New().SetError("gateway timeout")

	view := m.View()
	require.Contains(t, view, "gateway timeout")
	require.Contains(t, view, "r: retry")

	// Enter does nothing without a summary.
	m, cmd := m.Update(enter())
	require.Nil(t, cmd)

	m, cmd = m.Update(rune1('r'))
	require.NotNil(t, cmd)
	_, ok := cmd().(RefreshRequestMsg)
	require.True(t, ok)
}

func TestErrorKeepsLoadedSummary(t *testing.T) {
	m := New().SetSummary(sampleSummary())
	m = m.SetError("finalize failed")

	view := m.View()
	require.Contains(t, view, "finalize failed")
	require.Contains(t, view, "Total due", "summary stays visible behind the error")

	// Finalize can be retried with the summary still loaded.
	_, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	_, ok := cmd().(FinalizeRequestMsg)
	require.True(t, ok)
}

func TestLoadingSwallowsKeys(t *testing.T) {
	m := New().SetSummary(sampleSummary())
	m = m.SetLoading("Finalizing...")

	require.Contains(t, m.View(), "Finalizing...")
	_, cmd := m.Update(enter())
	require.Nil(t, cmd)
}
