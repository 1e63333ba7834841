package model

import "strings"

// FieldType identifies the data type of a user-defined field.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeLongText   FieldType = "long_text"
	FieldTypeNumber     FieldType = "number"
	FieldTypeDecimal    FieldType = "decimal"
	FieldTypeDate       FieldType = "date"
	FieldTypeDateTime   FieldType = "datetime"
	FieldTypeBoolean    FieldType = "boolean"
	FieldTypeChoice     FieldType = "choice"
	FieldTypeForeignKey FieldType = "foreign_key"
	FieldTypeFile       FieldType = "file"
	FieldTypeImage      FieldType = "image"
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// IsValid checks whether the field type is a known value.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeLongText, FieldTypeNumber, FieldTypeDecimal,
		FieldTypeDate, FieldTypeDateTime, FieldTypeBoolean, FieldTypeChoice,
		FieldTypeForeignKey, FieldTypeFile, FieldTypeImage:
		return true
	}
	return false
}

// Field describes a single user-defined field on a table.
type Field struct {
	ID           int64     `json:"id"`
	TableID      int64     `json:"table_id,omitempty"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	FieldType    FieldType `json:"field_type"`
	Order        int       `json:"order"`
	IsRequired   bool      `json:"is_required,omitempty"`
	IsUnique     bool      `json:"is_unique,omitempty"`
	IsSearchable bool      `json:"is_searchable,omitempty"`
	DefaultValue string    `json:"default_value,omitempty"`

	// Options holds the static option list for choice fields, one value
	// per entry.
	Options []string `json:"options,omitempty"`

	// RelatedTableID and RelatedTableName identify the target table of a
	// foreign_key field. RelatedFieldSlug names the display column on the
	// related table, when the schema pins one down.
	RelatedTableID   int64  `json:"related_table,omitempty"`
	RelatedTableName string `json:"related_table_name,omitempty"`
	RelatedFieldSlug string `json:"related_field,omitempty"`
}

// IsForeignKeyTo reports whether the field is a foreign key referencing the
// given table, matched by id, name, or slug.
func (f *Field) IsForeignKeyTo(t *Table) bool {
	if f.FieldType != FieldTypeForeignKey || t == nil {
		return false
	}
	if f.RelatedTableID != 0 && f.RelatedTableID == t.ID {
		return true
	}
	if f.RelatedTableName == "" {
		return false
	}
	return strings.EqualFold(f.RelatedTableName, t.Name) ||
		strings.EqualFold(f.RelatedTableName, t.Slug)
}

// Table describes a user-defined table: identity plus its ordered fields.
type Table struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Slug   string  `json:"slug"`
	Fields []Field `json:"fields,omitempty"`
}

// FieldBySlug returns the field with the given slug, or nil.
func (t *Table) FieldBySlug(slug string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Slug == slug {
			return &t.Fields[i]
		}
	}
	return nil
}

// TableSpec holds parameters for creating a table.
type TableSpec struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// FieldSpec holds parameters for creating or replacing a field.
type FieldSpec struct {
	Name             string    `json:"name"`
	Slug             string    `json:"slug,omitempty"`
	FieldType        FieldType `json:"field_type"`
	Order            int       `json:"order,omitempty"`
	IsRequired       bool      `json:"is_required,omitempty"`
	IsUnique         bool      `json:"is_unique,omitempty"`
	IsSearchable     bool      `json:"is_searchable,omitempty"`
	DefaultValue     string    `json:"default_value,omitempty"`
	Options          []string  `json:"options,omitempty"`
	RelatedTableID   int64     `json:"related_table,omitempty"`
	RelatedFieldSlug string    `json:"related_field,omitempty"`
}

// FieldOrder is one entry of a field reorder request.
type FieldOrder struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}

// DetailsSuffix is appended to a type name to derive the name of its
// details table ("Prestation" -> "PrestationDetails").
const DetailsSuffix = "Details"

// DetailsTableName returns the conventional details-table name for a type.
func DetailsTableName(typeName string) string {
	return typeName + DetailsSuffix
}
