package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the value union.
type Kind int

const (
	// KindText holds the raw string form of text-like inputs
	// (text, number, date, email, tel, select, radio, textarea).
	KindText Kind = iota
	// KindFlag holds a checkbox state.
	KindFlag
	// KindNumeric holds a number that arrived as a JSON number
	// (restored drafts, normalized form_data from the backend).
	KindNumeric
)

// Value is the tagged field value union: Text(string) | Flag(bool) |
// Numeric(float64). Inputs collect Text and Flag; Numeric only appears on
// values decoded from the wire. The zero Value is Text("").
type Value struct {
	kind Kind
	text string
	flag bool
	num  float64
}

// Text wraps a string value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Flag wraps a checkbox value.
func Flag(b bool) Value { return Value{kind: KindFlag, flag: b} }

// Numeric wraps a number value.
func Numeric(f float64) Value { return Value{kind: KindNumeric, num: f} }

// Kind returns the union tag.
func (v Value) Kind() Kind { return v.kind }

// String returns the raw string form of the value, the form validation
// patterns are matched against.
func (v Value) String() string {
	switch v.kind {
	case KindFlag:
		return strconv.FormatBool(v.flag)
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return v.text
	}
}

// Bool returns the flag state. Non-flag values are never truthy.
func (v Value) Bool() bool {
	return v.kind == KindFlag && v.flag
}

// IsBlank reports whether the value counts as empty for required-ness:
// whitespace-only text, an unchecked flag. A numeric is always present.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindFlag:
		return !v.flag
	case KindNumeric:
		return false
	default:
		return strings.TrimSpace(v.text) == ""
	}
}

// MarshalJSON encodes the value in its wire form: string, bool, or number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindFlag:
		return json.Marshal(v.flag)
	case KindNumeric:
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.text)
	}
}

// UnmarshalJSON decodes a wire value by its JSON type.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Text("")
	case string:
		*v = Text(t)
	case bool:
		*v = Flag(t)
	case float64:
		*v = Numeric(t)
	default:
		return fmt.Errorf("schema: unsupported value type %T", raw)
	}
	return nil
}

// ValueMap maps field_name to the field's current value.
type ValueMap map[string]Value

// Defaults seeds a value map with type-appropriate defaults for every field
// in the form: false for checkboxes, "" for everything else.
func Defaults(form Form) ValueMap {
	values := make(ValueMap, len(form.Fields))
	for _, field := range form.Fields {
		if field.FieldType == FieldCheckbox {
			values[field.FieldName] = Flag(false)
		} else {
			values[field.FieldName] = Text("")
		}
	}
	return values
}

// Overlay applies prior values on top of m, keeping m's entries for keys
// absent from prior. Used to restore answers on back-navigation.
func (m ValueMap) Overlay(prior ValueMap) ValueMap {
	for name, value := range prior {
		if _, ok := m[name]; ok {
			m[name] = value
		}
	}
	return m
}

// Clone returns a shallow copy of the map.
func (m ValueMap) Clone() ValueMap {
	out := make(ValueMap, len(m))
	for name, value := range m {
		out[name] = value
	}
	return out
}
