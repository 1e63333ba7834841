package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/veillard/tabulaire/internal/model"
)

// collator compares non-numeric values as locale-aware strings. The data
// set is French-accented, so the French collation order is used.
var collator = collate.New(language.French, collate.Loose)

// Sort returns a new slice ordered by the given keys, lowest priority
// number first. Equal records keep their input order. The input slice is
// not modified.
func Sort(records []*model.Record, keys []model.SortKey) []*model.Record {
	out := make([]*model.Record, len(records))
	copy(out, records)
	if len(keys) == 0 {
		return out
	}

	ordered := make([]model.SortKey, len(keys))
	copy(ordered, keys)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], ordered) < 0
	})
	return out
}

// Compare evaluates the sort keys in priority order and returns the first
// nonzero comparison; keys must already be ordered by ascending priority.
func Compare(a, b *model.Record, keys []model.SortKey) int {
	for _, key := range keys {
		va := Resolve(a, key.Field)
		vb := Resolve(b, key.Field)

		c := compareValues(va, vb)
		if key.Direction == model.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// SortStrings orders values in place using the collator.
func SortStrings(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return collator.CompareString(values[i], values[j]) < 0
	})
}

// compareValues compares numerically when both sides parse as finite
// numbers, otherwise by collated string order.
func compareValues(a, b string) int {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil && !math.IsInf(na, 0) && !math.IsInf(nb, 0) {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return collator.CompareString(a, b)
}
