package payment

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	m.Run()
}

func TestRendersIntentDetails(t *testing.T) {
	intent := json.RawMessage(`{
		"payment_url": "https://pay.example.com/abc123",
		"reference_number": "REF-42",
		"amount_due": 178.2,
		"registration_id": "reg-1"
	}`)
	m := New(intent)
	require.True(t, m.HasIntent())

	view := m.View()
	require.Contains(t, view, "Payment URL")
	require.Contains(t, view, "https://pay.example.com/abc123")
	require.Contains(t, view, "REF-42")
	require.Contains(t, view, "178.20")
	require.NotContains(t, view, "reg-1", "registration id is internal plumbing")
}

func TestUnknownKeysStillShown(t *testing.T) {
	m := New(json.RawMessage(`{"gateway": "stripe"}`))
	view := m.View()
	require.Contains(t, view, "gateway")
	require.Contains(t, view, "stripe")
}

func TestNoIntent(t *testing.T) {
	m := New(nil)
	require.False(t, m.HasIntent())
	require.Contains(t, m.View(), "No payment details were provided")
}

func TestMalformedIntent(t *testing.T) {
	m := New(json.RawMessage(`not json`))
	require.False(t, m.HasIntent())
}

func TestEnterContinues(t *testing.T) {
	m := New(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(ContinueMsg)
	require.True(t, ok)
}
