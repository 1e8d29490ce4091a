package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_StringForms(t *testing.T) {
	require.Equal(t, "hello", Text("hello").String())
	require.Equal(t, "true", Flag(true).String())
	require.Equal(t, "false", Flag(false).String())
	require.Equal(t, "42.5", Numeric(42.5).String())
}

func TestValue_IsBlank(t *testing.T) {
	require.True(t, Text("").IsBlank())
	require.True(t, Text("   ").IsBlank(), "whitespace-only text is blank")
	require.False(t, Text("x").IsBlank())
	require.True(t, Flag(false).IsBlank(), "unchecked flag is blank")
	require.False(t, Flag(true).IsBlank())
	require.False(t, Numeric(0).IsBlank(), "a numeric value is always present")
}

func TestValueMap_WireDecoding(t *testing.T) {
	var values ValueMap
	raw := `{"first_name":"Ada","waiver":true,"jersey_number":7}`
	require.NoError(t, json.Unmarshal([]byte(raw), &values))

	require.Equal(t, KindText, values["first_name"].Kind())
	require.Equal(t, "Ada", values["first_name"].String())
	require.True(t, values["waiver"].Bool())
	require.Equal(t, KindNumeric, values["jersey_number"].Kind())
	require.Equal(t, "7", values["jersey_number"].String())
}

func TestDefaults_TypeAppropriate(t *testing.T) {
	form := Form{Fields: []FieldDescriptor{
		{FieldName: "first_name", FieldType: FieldText},
		{FieldName: "waiver", FieldType: FieldCheckbox},
	}}
	values := Defaults(form)

	require.Equal(t, Text(""), values["first_name"])
	require.Equal(t, Flag(false), values["waiver"])
}

func TestOverlay_RestoresPriorAnswers(t *testing.T) {
	form := Form{Fields: []FieldDescriptor{
		{FieldName: "first_name", FieldType: FieldText},
		{FieldName: "email", FieldType: FieldEmail},
	}}
	prior := ValueMap{
		"first_name": Text("Ada"),
		"stale_key":  Text("dropped"), // not in the schema anymore
	}

	values := Defaults(form).Overlay(prior)

	require.Equal(t, "Ada", values["first_name"].String())
	require.Equal(t, "", values["email"].String())
	_, ok := values["stale_key"]
	require.False(t, ok, "keys absent from the schema are not resurrected")
}

func TestNormalize_SortsBySortOrder(t *testing.T) {
	form := Form{ID: "f1", Fields: []FieldDescriptor{
		{FieldName: "c", FieldType: FieldText, SortOrder: 30},
		{FieldName: "a", FieldType: FieldText, SortOrder: 10},
		{FieldName: "b1", FieldType: FieldText, SortOrder: 20},
		{FieldName: "b2", FieldType: FieldText, SortOrder: 20},
	}}
	require.NoError(t, form.Normalize())

	names := make([]string, 0, len(form.Fields))
	for _, f := range form.Fields {
		names = append(names, f.FieldName)
	}
	require.Equal(t, []string{"a", "b1", "b2", "c"}, names,
		"ascending sort_order, ties keep declaration order")
}

func TestNormalize_RejectsDuplicateNames(t *testing.T) {
	form := Form{ID: "f1", Fields: []FieldDescriptor{
		{FieldName: "email", FieldType: FieldEmail},
		{FieldName: "email", FieldType: FieldText},
	}}
	err := form.Normalize()
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate field")
}

func TestNormalize_RejectsSelectWithoutOptions(t *testing.T) {
	form := Form{ID: "f1", Fields: []FieldDescriptor{
		{FieldName: "division", FieldType: FieldSelect},
	}}
	require.Error(t, form.Normalize())
}
