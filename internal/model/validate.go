package model

import (
	"strconv"
	"strings"
	"time"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateValues checks user-entered values against a table's field
// definitions: required fields must be present and non-empty, and values
// must match the field type's shape. Unknown keys are left to the backend.
// Returns *ValidationError on failure, nil on success.
func ValidateValues(values map[string]any, fields []Field) error {
	var ve ValidationError

	for i := range fields {
		f := &fields[i]
		val, present := values[f.Slug]
		if !present && f.FieldType == FieldTypeForeignKey {
			// Foreign keys commonly arrive under the "<slug>_id" key that
			// the payload coercion later lifts into linkage.
			val, present = values[f.Slug+"_id"]
		}
		if !present || val == nil || val == "" {
			if f.IsRequired {
				ve.Errors = append(ve.Errors, FieldError{Field: f.Slug, Message: "is required"})
			}
			continue
		}
		if msg := checkShape(f, val); msg != "" {
			ve.Errors = append(ve.Errors, FieldError{Field: f.Slug, Message: msg})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func checkShape(f *Field, val any) string {
	s, isString := val.(string)
	switch f.FieldType {
	case FieldTypeNumber:
		if isString {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				return "must be an integer"
			}
			return ""
		}
		switch n := val.(type) {
		case int, int64:
			return ""
		case float64:
			if n != float64(int64(n)) {
				return "must be an integer"
			}
			return ""
		}
		return "must be an integer"
	case FieldTypeDecimal:
		if isString {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return "must be a number"
			}
			return ""
		}
		switch val.(type) {
		case int, int64, float64:
			return ""
		}
		return "must be a number"
	case FieldTypeBoolean:
		if _, ok := val.(bool); ok {
			return ""
		}
		if isString && (s == "true" || s == "false") {
			return ""
		}
		return "must be a boolean"
	case FieldTypeDate:
		if !isString {
			return "must be a date (YYYY-MM-DD)"
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return "must be a date (YYYY-MM-DD)"
		}
	case FieldTypeDateTime:
		if !isString {
			return "must be a datetime (RFC 3339)"
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return "must be a datetime (RFC 3339)"
		}
	case FieldTypeChoice:
		if len(f.Options) == 0 {
			return ""
		}
		if !isString {
			return "must be one of the configured options"
		}
		for _, opt := range f.Options {
			if opt == s {
				return ""
			}
		}
		return "must be one of the configured options"
	case FieldTypeForeignKey:
		switch n := val.(type) {
		case int, int64:
			return ""
		case float64:
			if n != float64(int64(n)) {
				return "must be a record id"
			}
			return ""
		case string:
			if _, err := strconv.ParseInt(n, 10, 64); err != nil {
				return "must be a record id"
			}
			return ""
		}
		return "must be a record id"
	}
	return ""
}
