package model

// Direction orders a sort key ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKey is one key of a multi-key sort. Lower priority numbers dominate.
// No two keys of a sort share a field slug, and priorities cover 0..n-1.
type SortKey struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
	Priority  int       `json:"priority"`
}
