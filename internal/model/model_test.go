package model

import (
	"encoding/json"
	"testing"
)

func TestRecord_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"id": 12,
		"table": 3,
		"table_name": "Projet",
		"custom_id": "PRJ-0012",
		"nom": "Alpha",
		"values": [
			{"field_slug": "statut", "value": "ouvert"},
			{"field_slug": "budget", "value": 1500}
		]
	}`)

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if r.ID != 12 {
		t.Errorf("ID = %d, want 12", r.ID)
	}
	if r.TableID != 3 {
		t.Errorf("TableID = %d, want 3", r.TableID)
	}
	if got := r.Attrs["nom"]; got != "Alpha" {
		t.Errorf("Attrs[nom] = %v, want Alpha", got)
	}
	if got := r.Attrs["custom_id"]; got != "PRJ-0012" {
		t.Errorf("Attrs[custom_id] = %v, want PRJ-0012", got)
	}
	if len(r.Values) != 2 {
		t.Fatalf("len(Values) = %d, want 2", len(r.Values))
	}
	v, ok := r.Value("statut")
	if !ok || v != "ouvert" {
		t.Errorf("Value(statut) = %v, %v; want ouvert, true", v, ok)
	}
	if _, ok := r.Value("absent"); ok {
		t.Error("Value(absent) reported present")
	}
}

func TestRecord_MarshalRoundTrip(t *testing.T) {
	in := Record{
		ID:      7,
		TableID: 2,
		Attrs:   map[string]any{"nom": "Beta"},
		Values:  []FieldValue{{FieldSlug: "statut", Value: "clos"}},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.ID != in.ID || out.TableID != in.TableID {
		t.Errorf("round trip ids = (%d, %d), want (%d, %d)", out.ID, out.TableID, in.ID, in.TableID)
	}
	if got := out.Attrs["nom"]; got != "Beta" {
		t.Errorf("Attrs[nom] = %v, want Beta", got)
	}
	if v, ok := out.Value("statut"); !ok || v != "clos" {
		t.Errorf("Value(statut) = %v, %v; want clos, true", v, ok)
	}
}

func TestIsSystemAttribute(t *testing.T) {
	for _, key := range []string{
		"id", "custom_id", "primary_identifier", "custom_id_field_name",
		"created_at", "updated_at", "created_by", "updated_by",
		"is_active", "table", "table_name",
	} {
		if !IsSystemAttribute(key) {
			t.Errorf("IsSystemAttribute(%q) = false, want true", key)
		}
	}
	if IsSystemAttribute("nom") {
		t.Error("IsSystemAttribute(nom) = true, want false")
	}
}

func TestIsStrippedAttribute_KeepsActiveToggle(t *testing.T) {
	if IsStrippedAttribute("is_active") {
		t.Error("is_active must survive into value payloads")
	}
	if !IsStrippedAttribute("created_at") {
		t.Error("created_at must be stripped")
	}
}

func TestIsExcludedKey(t *testing.T) {
	cases := []struct {
		key  string
		want bool
	}{
		{"id_externe", true},
		{"contact_principal_id", true},
		{"nom", false},
		{"identite", false},
		{"idempotent_key", false},
	}
	for _, tc := range cases {
		if got := IsExcludedKey(tc.key); got != tc.want {
			t.Errorf("IsExcludedKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestLinkageName(t *testing.T) {
	if got := LinkageName("contact_principal_id"); got != "contact_principal" {
		t.Errorf("LinkageName = %q, want contact_principal", got)
	}
}

func TestField_IsForeignKeyTo(t *testing.T) {
	projet := &Table{ID: 1, Name: "Projet", Slug: "projet"}
	cases := []struct {
		name string
		f    Field
		want bool
	}{
		{"by id", Field{FieldType: FieldTypeForeignKey, RelatedTableID: 1}, true},
		{"by name", Field{FieldType: FieldTypeForeignKey, RelatedTableName: "projet"}, true},
		{"other table", Field{FieldType: FieldTypeForeignKey, RelatedTableID: 9}, false},
		{"not a fk", Field{FieldType: FieldTypeText, RelatedTableID: 1}, false},
	}
	for _, tc := range cases {
		if got := tc.f.IsForeignKeyTo(projet); got != tc.want {
			t.Errorf("%s: IsForeignKeyTo = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDetailsTableName(t *testing.T) {
	if got := DetailsTableName("Prestation"); got != "PrestationDetails" {
		t.Errorf("DetailsTableName = %q, want PrestationDetails", got)
	}
}

func TestFilter_HasValue(t *testing.T) {
	minVal := 2.0
	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"nil", Filter{Value: nil}, false},
		{"empty string", Filter{Value: ""}, false},
		{"string", Filter{Value: "open"}, true},
		{"empty slice", Filter{Value: []string{}}, false},
		{"slice", Filter{Value: []string{"a"}}, true},
		{"empty range", Filter{Value: DateRange{}}, false},
		{"half range", Filter{Value: DateRange{Start: "2024-01-01"}}, true},
		{"empty numbers", Filter{Value: NumberRange{}}, false},
		{"min only", Filter{Value: NumberRange{Min: &minVal}}, true},
		{"nil bool", Filter{Value: (*bool)(nil)}, false},
		{"bool", Filter{Value: true}, true},
	}
	for _, tc := range cases {
		if got := tc.f.HasValue(); got != tc.want {
			t.Errorf("%s: HasValue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDefaultOperator(t *testing.T) {
	if got := DefaultOperator(FilterText); got != OpContains {
		t.Errorf("DefaultOperator(text) = %v, want CONTAINS", got)
	}
	if got := DefaultOperator(FilterNumberRange); got != OpEquals {
		t.Errorf("DefaultOperator(number_range) = %v, want EQUALS", got)
	}
	if got := DefaultOperator(FilterType("bogus")); got != OpEquals {
		t.Errorf("DefaultOperator(bogus) = %v, want EQUALS", got)
	}
}

func TestValidateValues(t *testing.T) {
	fields := []Field{
		{Slug: "nom", FieldType: FieldTypeText, IsRequired: true},
		{Slug: "budget", FieldType: FieldTypeNumber},
		{Slug: "debut", FieldType: FieldTypeDate},
		{Slug: "statut", FieldType: FieldTypeChoice, Options: []string{"ouvert", "clos"}},
	}

	if err := ValidateValues(map[string]any{"nom": "X", "budget": "12", "debut": "2024-03-01", "statut": "ouvert"}, fields); err != nil {
		t.Fatalf("valid values rejected: %v", err)
	}

	err := ValidateValues(map[string]any{"budget": "douze", "debut": "hier", "statut": "autre"}, fields)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(ve.Errors) != 4 {
		t.Errorf("len(Errors) = %d, want 4 (%v)", len(ve.Errors), ve)
	}
}
