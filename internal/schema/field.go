// Package schema defines the backend-supplied registration form schema:
// field descriptors, the form container, and the tagged field value union.
// Descriptors are owned by the backend and treated as read-only input once
// fetched for a program.
package schema

// FieldType identifies the input type of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldTextarea FieldType = "textarea"
)

// Known reports whether t is one of the field types this client renders.
func (t FieldType) Known() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldEmail, FieldTel,
		FieldSelect, FieldRadio, FieldCheckbox, FieldTextarea:
		return true
	}
	return false
}

// NeedsOptions reports whether the type requires an options list.
func (t FieldType) NeedsOptions() bool {
	return t == FieldSelect || t == FieldRadio
}

// Option is one selectable choice for a select or radio field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldDescriptor describes one form input and its constraints.
//
// FieldName is the unique key into the value map. ValidationRegex is an
// untrusted pattern matched against the raw string form of the value;
// ErrorMessage, when set, overrides the default message for any failure
// of this field. SortOrder defines render and validation order (ascending,
// ties broken by declaration order).
type FieldDescriptor struct {
	ID              string    `json:"id"`
	FieldName       string    `json:"field_name"`
	FieldType       FieldType `json:"field_type"`
	Label           string    `json:"label"`
	Placeholder     string    `json:"placeholder,omitempty"`
	IsRequired      bool      `json:"is_required"`
	ValidationRegex string    `json:"validation_regex,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	Options         []Option  `json:"options,omitempty"`
	SortOrder       int       `json:"sort_order"`
}
