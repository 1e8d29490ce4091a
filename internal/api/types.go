// Package api is the HTTP client for the registration backend. It owns
// the wire types and the error envelope; everything above it works with
// decoded structs and plain errors.
package api

import (
	"time"

	"github.com/seaswell/rollcall/internal/schema"
)

// Program is one entry of the program catalog.
type Program struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FeeLine is a named amount inside a financial summary, used for both
// additional fees and discounts.
type FeeLine struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// FinancialSummary is the server-computed fee breakdown. All arithmetic
// happens server-side; clients render it and at most sanity-check the
// sums for display.
type FinancialSummary struct {
	BaseFee        float64   `json:"base_fee"`
	AdditionalFees []FeeLine `json:"additional_fees"`
	Discounts      []FeeLine `json:"discounts"`
	TotalBeforeTax float64   `json:"total_before_tax"`
	TaxAmount      float64   `json:"tax_amount"`
	TotalAmountDue float64   `json:"total_amount_due"`
	AmountPaid     float64   `json:"amount_paid"`
	BalanceDue     float64   `json:"balance_due"`
}

// FormDataEntry is one normalized submitted-form value as echoed back by
// the status endpoint.
type FormDataEntry struct {
	FieldName  string `json:"field_name"`
	FieldLabel string `json:"field_label"`
	FieldValue string `json:"field_value"`
}

// RegistrationRecord is the backend's view of a registration. Status is
// server vocabulary and treated as an opaque string.
type RegistrationRecord struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	TotalAmountDue   float64           `json:"total_amount_due"`
	BalanceDue       float64           `json:"balance_due"`
	AmountPaid       float64           `json:"amount_paid"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	Program          *Program          `json:"program,omitempty"`
	FormData         []FormDataEntry   `json:"form_data"`
	FinancialSummary *FinancialSummary `json:"financial_summary,omitempty"`
}

// FormValue returns the normalized value for a field_name, or "" when the
// record carries no entry for it.
func (r RegistrationRecord) FormValue(fieldName string) string {
	for _, entry := range r.FormData {
		if entry.FieldName == fieldName {
			return entry.FieldValue
		}
	}
	return ""
}

// FinalizationResult is the opaque payload returned by finalize. Callers
// store it; only its presence matters to the flow.
type FinalizationResult map[string]any

type submitFormRequest struct {
	FormData schema.ValueMap `json:"form_data"`
}

type createRegistrationResponse struct {
	ID string `json:"id"`
}
