package model

import (
	"encoding/json"
	"regexp"
)

// FieldValue is one typed value attached to a record, keyed by field slug.
type FieldValue struct {
	FieldSlug string `json:"field_slug"`
	Value     any    `json:"value"`
}

// Record is a row of a user-defined table. The backend serves records as a
// flat JSON object carrying system attributes alongside a "values" list of
// typed field values; both halves are kept and accessed through the
// query.Resolve accessor rather than spread into callers directly.
type Record struct {
	ID      int64
	TableID int64

	// Attrs holds every flat attribute of the record as received,
	// including system attributes such as custom_id and created_at.
	Attrs map[string]any

	// Values is the typed field/value side list.
	Values []FieldValue
}

// Value returns the typed value for the given field slug and whether an
// entry exists.
func (r *Record) Value(slug string) (any, bool) {
	for i := range r.Values {
		if r.Values[i].FieldSlug == slug {
			return r.Values[i].Value, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes the backend's flat record shape: "id", "table" and
// "values" are pulled out, every other key lands in Attrs.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Attrs = make(map[string]any, len(raw))
	for key, msg := range raw {
		switch key {
		case "id":
			if err := json.Unmarshal(msg, &r.ID); err != nil {
				return err
			}
			r.Attrs[key] = r.ID
		case "table":
			if err := json.Unmarshal(msg, &r.TableID); err != nil {
				return err
			}
			r.Attrs[key] = r.TableID
		case "values":
			if err := json.Unmarshal(msg, &r.Values); err != nil {
				return err
			}
		default:
			var v any
			if err := json.Unmarshal(msg, &v); err != nil {
				return err
			}
			r.Attrs[key] = v
		}
	}
	return nil
}

// MarshalJSON re-encodes the record in the backend's flat shape.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attrs)+3)
	for k, v := range r.Attrs {
		out[k] = v
	}
	out["id"] = r.ID
	out["table"] = r.TableID
	if r.Values != nil {
		out["values"] = r.Values
	}
	return json.Marshal(out)
}

// SystemAttributes are record keys owned by the backend. They are never
// included in value-update payloads.
var SystemAttributes = map[string]struct{}{
	"id":                   {},
	"custom_id":            {},
	"primary_identifier":   {},
	"custom_id_field_name": {},
	"created_at":           {},
	"updated_at":           {},
	"created_by":           {},
	"updated_by":           {},
	"is_active":            {},
	"table":                {},
	"table_name":           {},
}

// IsSystemAttribute reports whether key is a backend-owned record attribute.
func IsSystemAttribute(key string) bool {
	_, ok := SystemAttributes[key]
	return ok
}

// IsStrippedAttribute reports whether key must be removed from value
// payloads before a create or update. The active toggle is user-editable,
// so "is_active" is not stripped; it travels as the string "true"/"false"
// like any other boolean.
func IsStrippedAttribute(key string) bool {
	if key == "is_active" {
		return false
	}
	return IsSystemAttribute(key)
}

var (
	idPrefixPattern = regexp.MustCompile(`^id_\w+$`)
	idSuffixPattern = regexp.MustCompile(`^\w+_id$`)
)

// IsExcludedKey reports whether key matches one of the identifier patterns
// excluded from value payloads (^id_\w+$ or ^\w+_id$). Keys matching the
// suffix pattern may still travel as scalar linkage fields when they carry
// a user-chosen foreign key; see record.BuildPayload.
func IsExcludedKey(key string) bool {
	return idPrefixPattern.MatchString(key) || idSuffixPattern.MatchString(key)
}

// IsLinkageKey reports whether key looks like a foreign-key reference
// ("contact_principal_id"). The linkage field name is the key without the
// "_id" suffix.
func IsLinkageKey(key string) bool {
	return idSuffixPattern.MatchString(key)
}

// LinkageName strips the trailing "_id" from a linkage key.
func LinkageName(key string) string {
	return key[:len(key)-len("_id")]
}
