package confirmation

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/schema"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		record *api.RegistrationRecord
		want   Outcome
	}{
		{
			name:   "nil record",
			record: nil,
			want:   OutcomeProcessing,
		},
		{
			name:   "status completed",
			record: &api.RegistrationRecord{Status: "completed"},
			want:   OutcomeSuccessful,
		},
		{
			name:   "status confirmed mixed case",
			record: &api.RegistrationRecord{Status: "Confirmed"},
			want:   OutcomeSuccessful,
		},
		{
			name: "pending but fully paid",
			record: &api.RegistrationRecord{
				Status: "pending",
				FinancialSummary: &api.FinancialSummary{
					BalanceDue: 0,
					AmountPaid: 150,
				},
			},
			want: OutcomeSuccessful,
		},
		{
			name: "pending with outstanding balance",
			record: &api.RegistrationRecord{
				Status: "pending",
				FinancialSummary: &api.FinancialSummary{
					BalanceDue: 50,
					AmountPaid: 100,
				},
			},
			want: OutcomeProcessing,
		},
		{
			name: "pending zero balance but nothing paid",
			record: &api.RegistrationRecord{
				Status: "pending",
				FinancialSummary: &api.FinancialSummary{
					BalanceDue: 0,
					AmountPaid: 0,
				},
			},
			want: OutcomeProcessing,
		},
		{
			name: "overpaid",
			record: &api.RegistrationRecord{
				Status: "pending",
				FinancialSummary: &api.FinancialSummary{
					BalanceDue: -10,
					AmountPaid: 160,
				},
			},
			want: OutcomeSuccessful,
		},
		{
			name: "pending fully paid without a summary",
			record: &api.RegistrationRecord{
				Status:     "pending",
				BalanceDue: 0,
				AmountPaid: 150,
			},
			want: OutcomeSuccessful,
		},
		{
			name: "pending outstanding balance without a summary",
			record: &api.RegistrationRecord{
				Status:     "pending",
				BalanceDue: 50,
				AmountPaid: 100,
			},
			want: OutcomeProcessing,
		},
		{
			name: "record balance wins over a stale summary",
			record: &api.RegistrationRecord{
				Status:     "pending",
				BalanceDue: 50,
				AmountPaid: 100,
				FinancialSummary: &api.FinancialSummary{
					BalanceDue: 0,
					AmountPaid: 150,
				},
			},
			want: OutcomeProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.record))
		})
	}
}

func TestSuccessfulView(t *testing.T) {
	record := &api.RegistrationRecord{
		ID:     "reg-7",
		Status: "completed",
		FormData: []api.FormDataEntry{
			{FieldName: "first_name", FieldValue: "Ada"},
			{FieldName: "last_name", FieldValue: "Lovelace"},
			{FieldName: "email", FieldValue: "ada@example.com"},
		},
		FinancialSummary: &api.FinancialSummary{AmountPaid: 150, BalanceDue: 0},
	}
	m := New("Summer Camp", nil).SetRecord(record)

	view := m.View()
	require.Contains(t, view, "Registration complete")
	require.Contains(t, view, "Summer Camp")
	require.Contains(t, view, "reg-7")
	require.Contains(t, view, "Ada Lovelace")
	require.Contains(t, view, "ada@example.com")
	require.Contains(t, view, "$150.00")
}

func TestProcessingViewNeverShowsFailure(t *testing.T) {
	record := &api.RegistrationRecord{
		Status:           "pending",
		FinancialSummary: &api.FinancialSummary{BalanceDue: 50, AmountPaid: 100},
	}
	m := New("Summer Camp", nil).SetRecord(record)

	view := m.View()
	require.Contains(t, view, "payment processing")
	require.Contains(t, view, "program organizer")
	require.NotContains(t, view, "fail")
	require.NotContains(t, view, "Fail")
}

func TestFallbackToFlowValues(t *testing.T) {
	fallback := schema.ValueMap{
		"first_name": schema.Text("Grace"),
		"email":      schema.Text("grace@example.com"),
	}
	record := &api.RegistrationRecord{Status: "completed"}
	m := New("Robotics", fallback).SetRecord(record)

	view := m.View()
	require.Contains(t, view, "Grace")
	require.Contains(t, view, "grace@example.com")
}

func TestRecordValuesWinOverFallback(t *testing.T) {
	fallback := schema.ValueMap{"email": schema.Text("old@example.com")}
	record := &api.RegistrationRecord{
		Status:   "completed",
		FormData: []api.FormDataEntry{{FieldName: "email", FieldValue: "new@example.com"}},
	}
	m := New("Robotics", fallback).SetRecord(record)

	view := m.View()
	require.Contains(t, view, "new@example.com")
	require.NotContains(t, view, "old@example.com")
}

func TestRetryWhileProcessing(t *testing.T) {
	record := &api.RegistrationRecord{Status: "pending"}
	m := New("Camp", nil).SetRecord(record)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	_, ok := cmd().(RetryMsg)
	require.True(t, ok)
	require.Contains(t, m.View(), "Checking registration status")
}

func TestNoRetryWhenSuccessful(t *testing.T) {
	record := &api.RegistrationRecord{Status: "completed"}
	m := New("Camp", nil).SetRecord(record)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.Nil(t, cmd)
}

func TestErrorStateRetry(t *testing.T) {
	m := New("Camp", nil).SetError("status fetch failed")
	require.Contains(t, m.View(), "status fetch failed")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	_, ok := cmd().(RetryMsg)
	require.True(t, ok)
}
