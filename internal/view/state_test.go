package view

import (
	"testing"

	"github.com/veillard/tabulaire/internal/model"
)

func TestAddFilter_Defaults(t *testing.T) {
	s := NewState(nil)
	f := s.AddFilter(model.Filter{Field: "statut"})

	if f.ID == "" {
		t.Error("AddFilter must assign an id")
	}
	if f.Type != model.FilterText {
		t.Errorf("Type = %v, want text", f.Type)
	}
	if f.Op != model.OpContains {
		t.Errorf("Op = %v, want CONTAINS", f.Op)
	}
	if f.Value != nil {
		t.Errorf("Value = %v, want nil", f.Value)
	}

	g := s.AddFilter(model.Filter{Field: "autre"})
	if g.ID == f.ID {
		t.Error("filter ids must be unique within a session")
	}
}

func TestUpdateFilter_MergesPatch(t *testing.T) {
	s := NewState(nil)
	f := s.AddFilter(model.Filter{Field: "statut"})

	op := model.OpEquals
	s.UpdateFilter(f.ID, FilterPatch{Op: &op, Value: "ouvert", SetValue: true})

	got := s.Filters()[0]
	if got.Op != model.OpEquals || got.Value != "ouvert" {
		t.Errorf("filter = %+v, want EQUALS/ouvert", got)
	}
}

func TestUpdateFilter_FieldChangeResets(t *testing.T) {
	s := NewState(nil)
	f := s.AddFilter(model.Filter{Field: "statut"})
	op := model.OpEquals
	s.UpdateFilter(f.ID, FilterPatch{Op: &op, Value: "ouvert", SetValue: true})

	field := "nom"
	s.UpdateFilter(f.ID, FilterPatch{Field: &field})

	got := s.Filters()[0]
	if got.Field != "nom" {
		t.Errorf("Field = %q, want nom", got.Field)
	}
	if got.Value != nil {
		t.Errorf("Value = %v, want reset to nil", got.Value)
	}
	if got.Op != model.OpContains {
		t.Errorf("Op = %v, want reset to CONTAINS", got.Op)
	}
}

func TestUpdateFilter_TypeChangeResets(t *testing.T) {
	s := NewState(nil)
	f := s.AddFilter(model.Filter{Field: "budget"})
	s.UpdateFilter(f.ID, FilterPatch{Value: "12", SetValue: true})

	typ := model.FilterNumberRange
	s.UpdateFilter(f.ID, FilterPatch{Type: &typ})

	got := s.Filters()[0]
	if got.Type != model.FilterNumberRange {
		t.Errorf("Type = %v, want number_range", got.Type)
	}
	if _, ok := got.Value.(model.NumberRange); !ok {
		t.Errorf("Value = %#v, want empty NumberRange sentinel", got.Value)
	}
	if got.Op != model.OpEquals {
		t.Errorf("Op = %v, want EQUALS", got.Op)
	}
}

func TestRemoveFilter(t *testing.T) {
	s := NewState(nil)
	f := s.AddFilter(model.Filter{Field: "a"})
	s.AddFilter(model.Filter{Field: "b"})

	s.RemoveFilter(f.ID)
	got := s.Filters()
	if len(got) != 1 || got[0].Field != "b" {
		t.Errorf("filters = %+v, want just b", got)
	}
	s.RemoveFilter("unknown") // no-op
	if len(s.Filters()) != 1 {
		t.Error("removing unknown id must be a no-op")
	}
}

func TestClearFilters_KeepsColumns(t *testing.T) {
	s := NewState(nil)
	s.AddFilter(model.Filter{Field: "a"})
	s.SetVisibleColumns([]string{"nom", "statut"})

	s.ClearFilters()
	if len(s.Filters()) != 0 {
		t.Error("filters not cleared")
	}
	if cols := s.VisibleColumns(); len(cols) != 2 {
		t.Errorf("columns = %v, want untouched", cols)
	}
}

func TestAddSort(t *testing.T) {
	s := NewState(nil)
	s.AddSort("date", model.Desc)
	s.AddSort("nom", model.Asc)

	keys := s.SortKeys()
	if len(keys) != 2 {
		t.Fatalf("len = %d, want 2", len(keys))
	}
	if keys[0].Priority != 0 || keys[1].Priority != 1 {
		t.Errorf("priorities = %d, %d; want 0, 1", keys[0].Priority, keys[1].Priority)
	}

	// Existing field: direction updates in place, no new key.
	s.AddSort("date", model.Asc)
	keys = s.SortKeys()
	if len(keys) != 2 {
		t.Fatalf("len = %d after re-add, want 2", len(keys))
	}
	if keys[0].Field != "date" || keys[0].Direction != model.Asc || keys[0].Priority != 0 {
		t.Errorf("keys[0] = %+v, want date/asc/0", keys[0])
	}
}

func TestRemoveSort_RepacksPriorities(t *testing.T) {
	s := NewState(nil)
	s.AddSort("a", model.Asc)
	s.AddSort("b", model.Asc)
	s.AddSort("c", model.Asc)

	s.RemoveSort("b")
	keys := s.SortKeys()
	if len(keys) != 2 {
		t.Fatalf("len = %d, want 2", len(keys))
	}
	if keys[0].Field != "a" || keys[0].Priority != 0 {
		t.Errorf("keys[0] = %+v, want a/0", keys[0])
	}
	if keys[1].Field != "c" || keys[1].Priority != 1 {
		t.Errorf("keys[1] = %+v, want c/1", keys[1])
	}
}

func TestClearSorting_KeepsColumns(t *testing.T) {
	s := NewState(nil)
	s.AddSort("a", model.Asc)
	s.SetVisibleColumns([]string{"nom"})

	s.ClearSorting()
	if len(s.SortKeys()) != 0 {
		t.Error("sorting not cleared")
	}
	if len(s.VisibleColumns()) != 1 {
		t.Error("columns must be untouched")
	}
}

func TestHasActiveFilter(t *testing.T) {
	s := NewState(nil)
	if s.HasActiveFilter() {
		t.Error("empty state has no active filter")
	}
	f := s.AddFilter(model.Filter{Field: "statut"})
	if s.HasActiveFilter() {
		t.Error("a filter without a value is not active")
	}
	s.UpdateFilter(f.ID, FilterPatch{Value: "ouvert", SetValue: true})
	if !s.HasActiveFilter() {
		t.Error("a filter with a value is active")
	}
}

func TestLoadPreset_ReplacesEverything(t *testing.T) {
	s := NewState(nil)
	s.AddFilter(model.Filter{Field: "old"})
	s.AddSort("old", model.Asc)
	s.SetVisibleColumns([]string{"old"})

	p := model.Preset{
		Filters:  []model.Filter{{ID: "p1", Field: "statut", Type: model.FilterText, Op: model.OpEquals, Value: "ouvert"}},
		SortKeys: []model.SortKey{{Field: "date", Direction: model.Desc, Priority: 0}},
		Columns:  []string{"nom", "date"},
	}
	s.LoadPreset(p)

	if got := s.Filters(); len(got) != 1 || got[0].Field != "statut" {
		t.Errorf("filters = %+v", got)
	}
	if got := s.SortKeys(); len(got) != 1 || got[0].Field != "date" {
		t.Errorf("sorts = %+v", got)
	}
	if got := s.VisibleColumns(); len(got) != 2 || got[0] != "nom" {
		t.Errorf("columns = %v", got)
	}
}
