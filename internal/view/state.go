// Package view holds the client-side view state of a record table: the
// current filter set, sort keys, and visible columns, plus named presets
// persisted across sessions.
package view

import (
	"fmt"
	"sync"

	"github.com/veillard/tabulaire/internal/idgen"
	"github.com/veillard/tabulaire/internal/model"
)

// State is the filter/sort/columns state machine. All operations are total:
// edits on unknown ids are no-ops.
type State struct {
	mu      sync.Mutex
	filters []model.Filter
	sorts   []model.SortKey
	columns []string
	presets *PresetStore
}

// NewState returns an empty view state. presets may be nil when preset
// persistence is not wired (e.g. one-shot CLI invocations).
func NewState(presets *PresetStore) *State {
	return &State{presets: presets}
}

// AddFilter registers a new filter, assigning a fresh id and filling
// defaults (text type, CONTAINS operator, no value) for anything the
// partial leaves unset. It returns the stored filter.
func (s *State) AddFilter(partial model.Filter) model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := partial
	id, err := idgen.GenerateWithPrefix("flt-")
	if err != nil {
		// nanoid only fails on a broken entropy source; fall back to a
		// session-unique counter so the edit still lands.
		id = fmt.Sprintf("flt-%d", len(s.filters)+1)
	}
	f.ID = id
	if f.Type == "" {
		f.Type = model.FilterText
	}
	if f.Op == "" {
		f.Op = model.DefaultOperator(f.Type)
	}
	s.filters = append(s.filters, f)
	return f
}

// FilterPatch describes a partial update to a filter. Nil fields are left
// untouched; Value is applied only when SetValue is true so callers can
// distinguish "clear the value" from "no change".
type FilterPatch struct {
	Field    *string
	Type     *model.FilterType
	Op       *model.Operator
	Value    any
	SetValue bool
	Label    *string
}

// UpdateFilter merges the patch into the identified filter. Changing the
// target field resets the value to the type's empty sentinel and the
// operator to the type default; changing the type resets both.
func (s *State) UpdateFilter(id string, patch FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.filters {
		f := &s.filters[i]
		if f.ID != id {
			continue
		}
		if patch.Type != nil && *patch.Type != f.Type {
			f.Type = *patch.Type
			f.Op = model.DefaultOperator(f.Type)
			f.Value = model.EmptyValue(f.Type)
		}
		if patch.Field != nil && *patch.Field != f.Field {
			f.Field = *patch.Field
			f.Op = model.DefaultOperator(f.Type)
			f.Value = model.EmptyValue(f.Type)
		}
		if patch.Op != nil {
			f.Op = *patch.Op
		}
		if patch.SetValue {
			f.Value = patch.Value
		}
		if patch.Label != nil {
			f.Label = *patch.Label
		}
		return
	}
}

// RemoveFilter drops the filter with the given id.
func (s *State) RemoveFilter(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.filters {
		if s.filters[i].ID == id {
			s.filters = append(s.filters[:i], s.filters[i+1:]...)
			return
		}
	}
}

// ClearFilters empties the filter set. Visible columns are untouched.
func (s *State) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = nil
}

// AddSort adds a sort key for field, or updates the direction in place
// when the field is already sorted. New keys append at the lowest priority.
func (s *State) AddSort(field string, dir model.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sorts {
		if s.sorts[i].Field == field {
			s.sorts[i].Direction = dir
			return
		}
	}
	s.sorts = append(s.sorts, model.SortKey{Field: field, Direction: dir, Priority: len(s.sorts)})
}

// RemoveSort drops the sort key for field and repacks the remaining
// priorities to cover 0..n-1.
func (s *State) RemoveSort(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sorts {
		if s.sorts[i].Field == field {
			s.sorts = append(s.sorts[:i], s.sorts[i+1:]...)
			break
		}
	}
	for i := range s.sorts {
		s.sorts[i].Priority = i
	}
}

// ClearSorting empties the sort keys. Visible columns are untouched.
func (s *State) ClearSorting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sorts = nil
}

// SetVisibleColumns replaces the visible column list.
func (s *State) SetVisibleColumns(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = append([]string(nil), ids...)
}

// Filters returns a copy of the current filter set.
func (s *State) Filters() []model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Filter(nil), s.filters...)
}

// SortKeys returns a copy of the current sort keys.
func (s *State) SortKeys() []model.SortKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SortKey(nil), s.sorts...)
}

// VisibleColumns returns a copy of the visible column list.
func (s *State) VisibleColumns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.columns...)
}

// HasActiveFilter reports whether at least one filter carries a non-empty
// value.
func (s *State) HasActiveFilter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.filters {
		if s.filters[i].HasValue() {
			return true
		}
	}
	return false
}

// LoadPreset replaces filters, sort keys, and visible columns with the
// preset's captured state.
func (s *State) LoadPreset(p model.Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append([]model.Filter(nil), p.Filters...)
	s.sorts = append([]model.SortKey(nil), p.SortKeys...)
	s.columns = append([]string(nil), p.Columns...)
}

// SavePreset captures the current state under the given name. Saving is
// rejected when no filter is active.
func (s *State) SavePreset(name, description string) (model.Preset, error) {
	if s.presets == nil {
		return model.Preset{}, fmt.Errorf("no preset store configured")
	}
	if !s.HasActiveFilter() {
		return model.Preset{}, ErrNoActiveFilter
	}
	s.mu.Lock()
	filters := append([]model.Filter(nil), s.filters...)
	sorts := append([]model.SortKey(nil), s.sorts...)
	columns := append([]string(nil), s.columns...)
	s.mu.Unlock()

	return s.presets.Save(name, description, filters, sorts, columns)
}

// DeletePreset removes a preset by id.
func (s *State) DeletePreset(id string) error {
	if s.presets == nil {
		return nil
	}
	return s.presets.Delete(id)
}

// LoadPresetsFromStorage rehydrates the preset list from local storage.
func (s *State) LoadPresetsFromStorage() ([]model.Preset, error) {
	if s.presets == nil {
		return nil, nil
	}
	return s.presets.Load()
}
