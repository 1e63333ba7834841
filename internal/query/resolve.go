// Package query holds the pure in-memory query pipeline: field-value
// resolution, filter predicates, multi-key sorting, and the memoizing
// projection engine. Nothing in this package performs I/O.
package query

import (
	"fmt"
	"strconv"

	"github.com/veillard/tabulaire/internal/model"
)

// Resolver overrides the default field lookup for a single candidate key.
// It returns the raw value and whether the key resolved. A custom resolver
// is consulted exactly once, and only when one candidate key is supplied;
// its answer is final.
type Resolver func(r *model.Record, key string) (any, bool)

// Resolve returns the first non-empty value found for the candidate keys:
// first each candidate as a flat attribute of the record, then each
// candidate against the typed value list. Misses resolve to "".
func Resolve(r *model.Record, keys ...string) string {
	if r == nil {
		return ""
	}
	for _, key := range keys {
		if v, ok := r.Attrs[key]; ok {
			if s := Stringify(v); s != "" {
				return s
			}
		}
	}
	for _, key := range keys {
		if v, ok := r.Value(key); ok {
			if s := Stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// ResolveWith resolves like Resolve but defers to the custom resolver when
// exactly one candidate key is given.
func ResolveWith(res Resolver, r *model.Record, keys ...string) string {
	if res != nil && len(keys) == 1 {
		if v, ok := res(r, keys[0]); ok {
			return Stringify(v)
		}
		return ""
	}
	return Resolve(r, keys...)
}

// Stringify renders a resolved value as a string: booleans become
// "true"/"false", integral floats drop the fraction, nil is empty.
func Stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		if vv {
			return "true"
		}
		return "false"
	case float64:
		if vv == float64(int64(vv)) {
			return strconv.FormatInt(int64(vv), 10)
		}
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case float32:
		return Stringify(float64(vv))
	case int:
		return strconv.Itoa(vv)
	case int64:
		return strconv.FormatInt(vv, 10)
	default:
		return fmt.Sprint(vv)
	}
}
