package query

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/veillard/tabulaire/internal/model"
)

// Matches evaluates one filter against one record. Filters with no value or
// no target field pass vacuously, as do filters of an unknown type: a
// misconfigured filter must never hide data.
func Matches(f model.Filter, r *model.Record) bool {
	if f.Field == "" || !f.HasValue() {
		return true
	}

	resolved := Resolve(r, f.Field)
	value := model.NormalizeValue(f.Type, f.Value)

	switch f.Type {
	case model.FilterText:
		s, _ := value.(string)
		return matchText(f.Op, resolved, s)
	case model.FilterSelectMultiple:
		opts, _ := value.([]string)
		return matchSelect(opts, resolved)
	case model.FilterDateRange:
		rng, _ := value.(model.DateRange)
		return matchDateRange(rng, resolved)
	case model.FilterNumberRange:
		rng, _ := value.(model.NumberRange)
		return matchNumberRange(rng, resolved)
	case model.FilterBoolean:
		want, _ := value.(*bool)
		return matchBoolean(want, resolved)
	case model.FilterComparison:
		s, _ := value.(string)
		return matchComparison(f.Op, resolved, s)
	default:
		slog.Warn("unknown filter type, passing record through", "type", f.Type, "filter", f.ID)
		return true
	}
}

func matchText(op model.Operator, resolved, want string) bool {
	a := strings.ToLower(resolved)
	b := strings.ToLower(want)
	switch op {
	case model.OpEquals:
		return a == b
	case model.OpNotEquals:
		return a != b
	case model.OpContains:
		return strings.Contains(a, b)
	case model.OpNotContains:
		return !strings.Contains(a, b)
	case model.OpStartsWith:
		return strings.HasPrefix(a, b)
	case model.OpEndsWith:
		return strings.HasSuffix(a, b)
	default:
		return strings.Contains(a, b)
	}
}

// matchSelect passes when the option list is empty or includes the
// resolved value.
func matchSelect(opts []string, resolved string) bool {
	if len(opts) == 0 {
		return true
	}
	for _, o := range opts {
		if o == resolved {
			return true
		}
	}
	return false
}

func matchDateRange(rng model.DateRange, resolved string) bool {
	d, ok := parseDate(resolved)
	if !ok {
		return false
	}
	if rng.Start != "" {
		if start, ok := parseDate(rng.Start); ok && d.Before(start) {
			return false
		}
	}
	if rng.End != "" {
		if end, ok := parseDate(rng.End); ok && d.After(end) {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

func matchNumberRange(rng model.NumberRange, resolved string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(resolved), 64)
	if err != nil {
		return false
	}
	if rng.Min != nil && n < *rng.Min {
		return false
	}
	if rng.Max != nil && n > *rng.Max {
		return false
	}
	return true
}

func matchBoolean(want *bool, resolved string) bool {
	if want == nil {
		return true
	}
	return truthy(resolved) == *want
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no", "non":
		return false
	}
	return true
}

func matchComparison(op model.Operator, resolved, want string) bool {
	switch op {
	case model.OpEquals:
		return resolved == want
	case model.OpNotEquals:
		return resolved != want
	}

	a, errA := strconv.ParseFloat(strings.TrimSpace(resolved), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(want), 64)
	if errA != nil || errB != nil {
		return false
	}
	switch op {
	case model.OpGreaterThan:
		return a > b
	case model.OpLessThan:
		return a < b
	case model.OpGreaterEqual:
		return a >= b
	case model.OpLessEqual:
		return a <= b
	default:
		return false
	}
}
