package main

import (
	"testing"

	"github.com/veillard/tabulaire/internal/model"
)

func TestParseWhere(t *testing.T) {
	f, err := parseWhere("statut=ouvert")
	if err != nil {
		t.Fatalf("parseWhere: %v", err)
	}
	if f.Field != "statut" || f.Op != model.OpContains || f.Value != "ouvert" {
		t.Errorf("filter = %+v", f)
	}

	f, err = parseWhere("montant:gt=100")
	if err != nil {
		t.Fatalf("parseWhere: %v", err)
	}
	if f.Type != model.FilterComparison || f.Op != model.OpGreaterThan {
		t.Errorf("filter = %+v", f)
	}

	if _, err := parseWhere("statut"); err == nil {
		t.Error("missing value should fail")
	}
	if _, err := parseWhere("statut:bogus=x"); err == nil {
		t.Error("unknown operator should fail")
	}
}

func TestParseSort(t *testing.T) {
	key, err := parseSort("nom", 0)
	if err != nil {
		t.Fatalf("parseSort: %v", err)
	}
	if key.Field != "nom" || key.Direction != model.Asc {
		t.Errorf("key = %+v", key)
	}

	key, err = parseSort("created_at:desc", 1)
	if err != nil {
		t.Fatalf("parseSort: %v", err)
	}
	if key.Direction != model.Desc || key.Priority != 1 {
		t.Errorf("key = %+v", key)
	}

	if _, err := parseSort("nom:sideways", 0); err == nil {
		t.Error("invalid direction should fail")
	}
}

func TestParseSetFlags(t *testing.T) {
	input, err := parseSetFlags([]string{"nom=Chantier A", "is_active=true", "contact_principal_id=7"})
	if err != nil {
		t.Fatalf("parseSetFlags: %v", err)
	}
	if input["nom"] != "Chantier A" {
		t.Errorf("nom = %v", input["nom"])
	}
	if input["is_active"] != true {
		t.Errorf("is_active = %v", input["is_active"])
	}
	if input["contact_principal_id"] != "7" {
		t.Errorf("contact_principal_id = %v", input["contact_principal_id"])
	}

	if _, err := parseSetFlags([]string{"=x"}); err == nil {
		t.Error("empty key should fail")
	}
}

func TestParseColumn(t *testing.T) {
	col, err := parseColumn("Sous type:choice")
	if err != nil {
		t.Fatalf("parseColumn: %v", err)
	}
	if col.Name != "Sous type" || col.FieldType != model.FieldTypeChoice {
		t.Errorf("col = %+v", col)
	}

	col, err = parseColumn("Nom")
	if err != nil {
		t.Fatalf("parseColumn: %v", err)
	}
	if col.FieldType != model.FieldTypeText {
		t.Errorf("col = %+v", col)
	}

	if _, err := parseColumn("Nom:dropdown"); err == nil {
		t.Error("unknown type should fail")
	}
}
