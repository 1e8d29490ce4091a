// Package validate implements field validation against backend-supplied
// field descriptors. Validation is synchronous and pure: the engine never
// touches the network, and identical inputs always produce identical
// results.
package validate

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seaswell/rollcall/internal/cachemanager"
	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/schema"
)

// GeneralKey is the reserved error-map key for submission-level failures
// (network errors on submit), never for per-field validation.
const GeneralKey = "_general"

// Errors maps field_name (or GeneralKey) to a human-readable message.
// Absence of a key means "no error".
type Errors map[string]string

// Empty reports whether no field is in error.
func (e Errors) Empty() bool { return len(e) == 0 }

var (
	// RFC-light email shape: something@something.tld, no whitespace.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Canonical phone rule: optional leading +, then 1-16 digits with a
	// nonzero first digit (E.164-leaning). Looser minimum-digit-count
	// variants were deliberately not kept; see DESIGN.md.
	telPattern = regexp.MustCompile(`^\+?[1-9][0-9]{0,15}$`)
)

// dateLayout is the canonical wire form for date fields.
const dateLayout = "2006-01-02"

// maxAgeYears bounds plausible dates of birth.
const maxAgeYears = 120

// Engine validates field values against their descriptors. Patterns arrive
// from the backend as data, so each regex is compiled once per schema load
// and cached; a malformed pattern is logged and treated as "no constraint"
// rather than crashing validation.
type Engine struct {
	patterns cachemanager.CacheManager[string, *regexp.Regexp]

	// Now is the clock used for date-of-birth checks. Overridable in tests.
	Now func() time.Time
}

// NewEngine creates a validation engine with its own pattern cache.
func NewEngine() *Engine {
	return &Engine{
		patterns: cachemanager.NewInMemoryCacheManager[string, *regexp.Regexp](
			"validation-regex", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
		Now: time.Now,
	}
}

// CompileSchema pre-compiles every pattern in the form so the first
// keystroke doesn't pay compilation cost. Safe to call more than once.
func (e *Engine) CompileSchema(form schema.Form) {
	for _, field := range form.Fields {
		if field.ValidationRegex != "" {
			e.pattern(field.ValidationRegex)
		}
	}
}

// pattern returns the compiled regex for expr, or nil when expr does not
// compile. Both outcomes are cached under the expression text.
func (e *Engine) pattern(expr string) *regexp.Regexp {
	ctx := context.Background()
	if re, ok := e.patterns.Get(ctx, expr); ok {
		return re
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		log.Warn(log.CatValidate, "Malformed validation_regex, skipping pattern", "pattern", expr, "error", err.Error())
		re = nil
	}
	e.patterns.Set(ctx, expr, re, cachemanager.DefaultExpiration)
	return re
}

// ValidateField checks one value against its descriptor and returns a
// message, or "" when the value passes. Rules run in fixed order and the
// first failure wins:
//
//  1. required-ness
//  2. empty optional values pass with no further checks
//  3. the descriptor's validation_regex
//  4. type-specific shape (email, tel, number, date)
//
// When the descriptor carries an error_message it overrides the default
// message for any failure of this field.
func (e *Engine) ValidateField(field schema.FieldDescriptor, value schema.Value) string {
	if field.IsRequired && value.IsBlank() {
		return e.message(field, field.Label+" is required")
	}
	if value.IsBlank() {
		return ""
	}

	raw := strings.TrimSpace(value.String())

	if field.ValidationRegex != "" {
		if re := e.pattern(field.ValidationRegex); re != nil && !re.MatchString(raw) {
			return e.message(field, field.Label+" format is invalid")
		}
	}

	switch field.FieldType {
	case schema.FieldEmail:
		if !emailPattern.MatchString(raw) {
			return e.message(field, field.Label+" must be a valid email address")
		}
	case schema.FieldTel:
		if !telPattern.MatchString(stripPhoneSeparators(raw)) {
			return e.message(field, field.Label+" must be a valid phone number")
		}
	case schema.FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return e.message(field, field.Label+" must be a number")
		}
	case schema.FieldDate:
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return e.message(field, field.Label+" must be a valid date (YYYY-MM-DD)")
		}
		if isBirthDateField(field.FieldName) {
			now := e.Now()
			if parsed.After(now) {
				return e.message(field, field.Label+" cannot be in the future")
			}
			if parsed.Before(now.AddDate(-maxAgeYears, 0, 0)) {
				return e.message(field, field.Label+" is not a plausible date of birth")
			}
		}
	}

	return ""
}

// ValidateAll applies ValidateField to every descriptor in the form, in
// ascending sort order, and returns the accumulated error map. Fields with
// no error are omitted. Pure: no side effects beyond the pattern cache.
func (e *Engine) ValidateAll(form schema.Form, values schema.ValueMap) Errors {
	errs := make(Errors)
	for _, field := range form.Fields {
		if msg := e.ValidateField(field, values[field.FieldName]); msg != "" {
			errs[field.FieldName] = msg
		}
	}
	return errs
}

func (e *Engine) message(field schema.FieldDescriptor, fallback string) string {
	if field.ErrorMessage != "" {
		return field.ErrorMessage
	}
	return fallback
}

// stripPhoneSeparators drops the punctuation people type into phone
// numbers so "+1 (555) 010-2030" validates against the digit rule.
func stripPhoneSeparators(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isBirthDateField reports whether a date field should get the
// date-of-birth plausibility checks.
func isBirthDateField(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "birth") || lower == "dob"
}
