package model

// FilterType identifies the kind of predicate a filter applies.
type FilterType string

const (
	FilterText           FilterType = "text"
	FilterSelectMultiple FilterType = "select_multiple"
	FilterDateRange      FilterType = "date_range"
	FilterNumberRange    FilterType = "number_range"
	FilterBoolean        FilterType = "boolean"
	FilterComparison     FilterType = "comparison"
)

// String returns the string representation of the filter type.
func (t FilterType) String() string {
	return string(t)
}

// IsValid checks whether the filter type is a known value.
func (t FilterType) IsValid() bool {
	switch t {
	case FilterText, FilterSelectMultiple, FilterDateRange,
		FilterNumberRange, FilterBoolean, FilterComparison:
		return true
	}
	return false
}

// Operator selects the comparison a filter performs.
type Operator string

const (
	OpEquals       Operator = "EQUALS"
	OpNotEquals    Operator = "NOT_EQUALS"
	OpContains     Operator = "CONTAINS"
	OpNotContains  Operator = "NOT_CONTAINS"
	OpStartsWith   Operator = "STARTS_WITH"
	OpEndsWith     Operator = "ENDS_WITH"
	OpGreaterThan  Operator = "GREATER_THAN"
	OpLessThan     Operator = "LESS_THAN"
	OpGreaterEqual Operator = "GREATER_EQUAL"
	OpLessEqual    Operator = "LESS_EQUAL"
)

// DateRange is the value payload of a date_range filter. Zero-value bounds
// are open ends. Bounds are ISO calendar dates ("2006-01-02").
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// NumberRange is the value payload of a number_range filter. Nil bounds are
// open ends.
type NumberRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Filter is one predicate over a record field. Value's shape depends on
// Type: string for text/comparison, []string for select_multiple,
// DateRange / NumberRange for the range kinds, and *bool for boolean
// (nil meaning "no constraint").
type Filter struct {
	ID    string     `json:"id"`
	Field string     `json:"field"`
	Type  FilterType `json:"type"`
	Op    Operator   `json:"operator"`
	Value any        `json:"value"`
	Label string     `json:"label,omitempty"`
}

// defaultOperators maps each filter type to the operator a fresh filter of
// that type starts with.
var defaultOperators = map[FilterType]Operator{
	FilterText:           OpContains,
	FilterSelectMultiple: OpEquals,
	FilterDateRange:      OpEquals,
	FilterNumberRange:    OpEquals,
	FilterBoolean:        OpEquals,
	FilterComparison:     OpEquals,
}

// DefaultOperator returns the starting operator for a filter type.
func DefaultOperator(t FilterType) Operator {
	if op, ok := defaultOperators[t]; ok {
		return op
	}
	return OpEquals
}

// EmptyValue returns the type-appropriate empty sentinel for a filter type:
// the value a filter resets to when its field or type changes.
func EmptyValue(t FilterType) any {
	switch t {
	case FilterSelectMultiple:
		return []string{}
	case FilterDateRange:
		return DateRange{}
	case FilterNumberRange:
		return NumberRange{}
	case FilterBoolean:
		return (*bool)(nil)
	default:
		return nil
	}
}

// NormalizeValue coerces a filter value that went through a JSON round
// trip (map[string]any, []any, float64) back into the typed payload the
// filter type expects. Values already in typed form pass through.
func NormalizeValue(t FilterType, v any) any {
	switch t {
	case FilterSelectMultiple:
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, e := range vv {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	case FilterDateRange:
		if m, ok := v.(map[string]any); ok {
			var r DateRange
			r.Start, _ = m["start"].(string)
			r.End, _ = m["end"].(string)
			return r
		}
	case FilterNumberRange:
		if m, ok := v.(map[string]any); ok {
			var r NumberRange
			if n, ok := m["min"].(float64); ok {
				r.Min = &n
			}
			if n, ok := m["max"].(float64); ok {
				r.Max = &n
			}
			return r
		}
	case FilterBoolean:
		if b, ok := v.(bool); ok {
			return &b
		}
	}
	return v
}

// HasValue reports whether the filter carries a non-empty value. Nonzero-
// length slices count as non-empty; a boolean constraint counts once set.
func (f *Filter) HasValue() bool {
	switch v := f.Value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case DateRange:
		return v.Start != "" || v.End != ""
	case *DateRange:
		return v != nil && (v.Start != "" || v.End != "")
	case NumberRange:
		return v.Min != nil || v.Max != nil
	case *NumberRange:
		return v != nil && (v.Min != nil || v.Max != nil)
	case *bool:
		return v != nil
	case bool:
		return true
	default:
		return true
	}
}
