// Package testutil provides compact builders for form schemas used
// across validation, UI, and flow tests.
package testutil

import (
	"github.com/seaswell/rollcall/internal/schema"
)

// FieldOpt configures a field descriptor during construction.
type FieldOpt func(*schema.FieldDescriptor)

// Field builds a descriptor with sensible defaults: optional, label equal
// to the field name, sort order zero.
func Field(name string, ft schema.FieldType, opts ...FieldOpt) schema.FieldDescriptor {
	field := schema.FieldDescriptor{
		ID:        "field-" + name,
		FieldName: name,
		FieldType: ft,
		Label:     name,
	}
	for _, opt := range opts {
		opt(&field)
	}
	return field
}

// Required marks the field as required.
func Required() FieldOpt {
	return func(f *schema.FieldDescriptor) { f.IsRequired = true }
}

// WithLabel sets the display label.
func WithLabel(label string) FieldOpt {
	return func(f *schema.FieldDescriptor) { f.Label = label }
}

// WithPlaceholder sets the placeholder text.
func WithPlaceholder(p string) FieldOpt {
	return func(f *schema.FieldDescriptor) { f.Placeholder = p }
}

// WithRegex sets the validation pattern.
func WithRegex(expr string) FieldOpt {
	return func(f *schema.FieldDescriptor) { f.ValidationRegex = expr }
}

// WithMessage sets the custom error message.
func WithMessage(msg string) FieldOpt {
	return func(f *schema.FieldDescriptor) { f.ErrorMessage = msg }
}

// WithSortOrder sets the explicit sort position.
func WithSortOrder(n int) FieldOpt {
	return func(f *schema.FieldDescriptor) { f.SortOrder = n }
}

// WithOptions sets choice options from value/label pairs:
// WithOptions("s", "Small", "m", "Medium").
func WithOptions(pairs ...string) FieldOpt {
	return func(f *schema.FieldDescriptor) {
		f.Options = f.Options[:0]
		for i := 0; i+1 < len(pairs); i += 2 {
			f.Options = append(f.Options, schema.Option{Value: pairs[i], Label: pairs[i+1]})
		}
	}
}

// FormOf assembles fields into a named form. Fields keep their given
// order unless sort orders say otherwise; call Normalize like production
// code does.
func FormOf(fields ...schema.FieldDescriptor) schema.Form {
	form := schema.Form{
		ID:     "form-test",
		Name:   "Test Form",
		Fields: fields,
	}
	if err := form.Normalize(); err != nil {
		panic("testutil.FormOf: " + err.Error())
	}
	return form
}
