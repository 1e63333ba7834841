package query

import (
	"reflect"
	"sync"

	"github.com/veillard/tabulaire/internal/model"
)

// Engine applies filters then sort keys to a record sequence and memoizes
// the last projection: repeated calls with structurally unchanged inputs
// return the cached slice without recomputing.
type Engine struct {
	mu sync.Mutex

	lastRecords []*model.Record
	lastFilters []model.Filter
	lastKeys    []model.SortKey
	lastResult  []*model.Record
	valid       bool
}

// NewEngine returns an empty projection engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Project filters records through the conjunction of all filters, then
// sorts by the given keys. The input slice is never modified.
func (e *Engine) Project(records []*model.Record, filters []model.Filter, keys []model.SortKey) []*model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid && sameRecords(e.lastRecords, records) &&
		reflect.DeepEqual(e.lastFilters, filters) &&
		reflect.DeepEqual(e.lastKeys, keys) {
		return e.lastResult
	}

	filtered := make([]*model.Record, 0, len(records))
	for _, r := range records {
		if matchesAll(filters, r) {
			filtered = append(filtered, r)
		}
	}
	result := Sort(filtered, keys)

	e.lastRecords = records
	e.lastFilters = cloneFilters(filters)
	e.lastKeys = cloneKeys(keys)
	e.lastResult = result
	e.valid = true
	return result
}

// Invalidate drops the memoized projection.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.valid = false
	e.lastRecords = nil
	e.lastResult = nil
}

func matchesAll(filters []model.Filter, r *model.Record) bool {
	for _, f := range filters {
		if !Matches(f, r) {
			return false
		}
	}
	return true
}

// sameRecords compares record sequences by identity: same length and the
// same record pointers in the same order.
func sameRecords(a, b []*model.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneFilters(filters []model.Filter) []model.Filter {
	out := make([]model.Filter, len(filters))
	copy(out, filters)
	return out
}

func cloneKeys(keys []model.SortKey) []model.SortKey {
	out := make([]model.SortKey, len(keys))
	copy(out, keys)
	return out
}
