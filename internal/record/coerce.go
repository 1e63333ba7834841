// Package record moves rows between in-memory form state and the backend.
// It owns the outbound payload coercion rules and a per-table cache of
// fetched rows that mutations keep coherent.
package record

import (
	"strconv"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/query"
)

// BuildPayload coerces a flat field map into the create_with_values wire
// shape. Backend-owned attributes are stripped (except the user-editable
// active toggle), identifier-pattern keys are excluded, and "_id"-suffixed
// keys carrying a numeric value become scalar linkage fields named without
// the suffix. Every remaining value travels as a string; booleans as
// "true"/"false".
func BuildPayload(tableID int64, input map[string]any) *client.CreateRecordRequest {
	values, links := coerce(input)
	return &client.CreateRecordRequest{TableID: tableID, Values: values, Links: links}
}

// BuildUpdatePayload is BuildPayload for update_with_values bodies.
func BuildUpdatePayload(input map[string]any) *client.UpdateRecordRequest {
	values, links := coerce(input)
	return &client.UpdateRecordRequest{Values: values, Links: links}
}

func coerce(input map[string]any) (map[string]string, map[string]int64) {
	values := make(map[string]string)
	var links map[string]int64

	for key, v := range input {
		if v == nil || model.IsStrippedAttribute(key) {
			continue
		}
		if model.IsLinkageKey(key) {
			if id, ok := linkageID(v); ok {
				if links == nil {
					links = make(map[string]int64)
				}
				links[model.LinkageName(key)] = id
			}
			continue
		}
		if model.IsExcludedKey(key) {
			continue
		}
		values[key] = query.Stringify(v)
	}
	return values, links
}

// linkageID extracts the numeric foreign-key value of a linkage field.
// Forms pass these around as strings, JSON decodes them as float64.
func linkageID(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
