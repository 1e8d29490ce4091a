package schema

import (
	"fmt"
	"sort"
)

// Form is a registration form schema for one program: an ordered list of
// field descriptors. Fetched once per program selection and never mutated
// by the client.
type Form struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDescriptor `json:"fields"`
}

// Empty reports whether the form has no fields to collect.
func (f Form) Empty() bool {
	return len(f.Fields) == 0
}

// Field returns the descriptor with the given field_name, if present.
func (f Form) Field(name string) (FieldDescriptor, bool) {
	for _, field := range f.Fields {
		if field.FieldName == name {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// Normalize orders fields by ascending sort_order (stable, so equal orders
// keep declaration order) and rejects structurally broken schemas:
// duplicate field names, and select/radio fields without options.
func (f *Form) Normalize() error {
	seen := make(map[string]struct{}, len(f.Fields))
	for _, field := range f.Fields {
		if field.FieldName == "" {
			return fmt.Errorf("schema: form %q has a field with no field_name", f.ID)
		}
		if _, dup := seen[field.FieldName]; dup {
			return fmt.Errorf("schema: form %q has duplicate field %q", f.ID, field.FieldName)
		}
		seen[field.FieldName] = struct{}{}
		if field.FieldType.NeedsOptions() && len(field.Options) == 0 {
			return fmt.Errorf("schema: field %q is %s but has no options", field.FieldName, field.FieldType)
		}
	}
	sort.SliceStable(f.Fields, func(i, j int) bool {
		return f.Fields[i].SortOrder < f.Fields[j].SortOrder
	})
	return nil
}
