package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seaswell/rollcall/internal/schema"
)

func TestListPrograms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/programs", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode([]Program{
			{ID: "p1", Name: "Spring Soccer"},
			{ID: "p2", Name: "Summer Camp", Description: "Two weeks"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	programs, err := client.ListPrograms(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)
	require.Equal(t, "Spring Soccer", programs[0].Name)
}

func TestCreateRegistration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/programs/p1/registrations", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "reg-42"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	id, err := client.CreateRegistration(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "reg-42", id)
}

func TestFetchForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/programs/p1/registration-form", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "form-1",
			"name": "Player Info",
			"fields": [
				{"id": "f2", "field_name": "email", "field_type": "email", "label": "Email", "is_required": true, "sort_order": 2},
				{"id": "f1", "field_name": "first_name", "field_type": "text", "label": "First Name", "is_required": true, "sort_order": 1}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	form, err := client.FetchForm(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, form.Fields, 2)
	// Normalized into ascending sort order.
	require.Equal(t, "first_name", form.Fields[0].FieldName)
	require.Equal(t, "email", form.Fields[1].FieldName)
}

func TestFetchForm_NotFoundMeansNoForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.FetchForm(context.Background(), "p1")
	require.ErrorIs(t, err, ErrNoForm)
}

func TestSubmitForm(t *testing.T) {
	var received struct {
		FormData map[string]any `json:"form_data"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/registration-flow/reg-42/submit-form", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.SubmitForm(context.Background(), "reg-42", schema.ValueMap{
		"first_name": schema.Text("Ada"),
		"waiver":     schema.Flag(true),
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", received.FormData["first_name"])
	require.Equal(t, true, received.FormData["waiver"])
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/registration-flow/reg-42/status", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": "reg-42",
			"status": "pending",
			"total_amount_due": 150,
			"balance_due": 0,
			"amount_paid": 150,
			"form_data": [
				{"field_name": "first_name", "field_label": "First Name", "field_value": "Ada"}
			],
			"financial_summary": {
				"base_fee": 100,
				"additional_fees": [{"name": "Jersey", "amount": 40}],
				"discounts": [{"name": "Sibling", "amount": 10}],
				"total_before_tax": 130,
				"tax_amount": 20,
				"total_amount_due": 150,
				"amount_paid": 150,
				"balance_due": 0
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	record, err := client.Status(context.Background(), "reg-42")
	require.NoError(t, err)
	require.Equal(t, "pending", record.Status)
	require.Equal(t, "Ada", record.FormValue("first_name"))
	require.Empty(t, record.FormValue("last_name"))
	require.NotNil(t, record.FinancialSummary)
	require.Equal(t, 150.0, record.FinancialSummary.TotalAmountDue)
}

func TestFinalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/registration-flow/reg-42/finalize", r.URL.Path)
		_, _ = w.Write([]byte(`{"payment_url": "https://pay.example.com/reg-42"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	result, err := client.Finalize(context.Background(), "reg-42")
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.com/reg-42", result["payment_url"])
}

func TestErrorEnvelope(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"error field", http.StatusBadRequest, `{"error": "registration is closed"}`, "registration is closed"},
		{"message field", http.StatusConflict, `{"message": "already finalized"}`, "already finalized"},
		{"error wins over message", http.StatusBadRequest, `{"error": "a", "message": "b"}`, "a"},
		{"plain text body", http.StatusBadGateway, `upstream exploded`, "HTTP 502: Bad Gateway"},
		{"empty body", http.StatusInternalServerError, ``, "HTTP 500: Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			_, err := client.ListPrograms(context.Background())
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			require.Equal(t, tt.code, statusErr.StatusCode)
			require.Equal(t, tt.want, statusErr.Error())
		})
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, nil)
	_, err := client.ListPrograms(ctx)
	require.Error(t, err)
}
