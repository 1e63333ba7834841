package model

import "time"

// PresetNameMaxLen bounds preset names.
const PresetNameMaxLen = 50

// Preset is a named snapshot of the filter/sort/columns view state,
// reusable across sessions.
type Preset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Filters     []Filter  `json:"filters"`
	SortKeys    []SortKey `json:"sort_keys"`
	Columns     []string  `json:"columns"`
	CreatedAt   time.Time `json:"created_at"`
}
