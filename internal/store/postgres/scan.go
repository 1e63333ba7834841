package postgres

import (
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/veillard/tabulaire/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanField scans a single row into a model.Field.
// The row must contain columns in the order defined by fieldColumns.
func scanField(row scannable) (*model.Field, error) {
	var f model.Field
	var (
		defaultValue sql.NullString
		options      []byte
		relatedTable sql.NullInt64
		relatedField sql.NullString
	)

	err := row.Scan(
		&f.ID,
		&f.TableID,
		&f.Name,
		&f.Slug,
		&f.FieldType,
		&f.Order,
		&f.IsRequired,
		&f.IsUnique,
		&f.IsSearchable,
		&defaultValue,
		&options,
		&relatedTable,
		&relatedField,
	)
	if err != nil {
		return nil, err
	}

	f.DefaultValue = defaultValue.String
	f.RelatedTableID = relatedTable.Int64
	f.RelatedFieldSlug = relatedField.String
	if len(options) > 0 {
		if err := json.Unmarshal(options, &f.Options); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// scanFields scans multiple rows into a slice of model.Field values.
func scanFields(rows *sql.Rows) ([]model.Field, error) {
	var fields []model.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// scanRecord scans a single row into a model.Record, rebuilding the flat
// attribute map (stored links plus system attributes) and the typed value
// list. The row must contain columns in the order defined by recordColumns.
func scanRecord(row scannable) (*model.Record, error) {
	var (
		rec       model.Record
		customID  sql.NullString
		attrs     []byte
		vals      []byte
		isActive  bool
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&rec.ID,
		&rec.TableID,
		&customID,
		&attrs,
		&vals,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Attrs = make(map[string]any)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &rec.Attrs); err != nil {
			return nil, err
		}
	}
	rec.Attrs["id"] = rec.ID
	rec.Attrs["table"] = rec.TableID
	rec.Attrs["is_active"] = isActive
	rec.Attrs["created_at"] = createdAt.UTC().Format(time.RFC3339)
	rec.Attrs["updated_at"] = updatedAt.UTC().Format(time.RFC3339)
	if customID.Valid {
		rec.Attrs["custom_id"] = customID.String
	}

	var values map[string]string
	if len(vals) > 0 {
		if err := json.Unmarshal(vals, &values); err != nil {
			return nil, err
		}
	}
	slugs := make([]string, 0, len(values))
	for slug := range values {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		rec.Values = append(rec.Values, model.FieldValue{FieldSlug: slug, Value: values[slug]})
	}

	return &rec, nil
}

// scanRecords scans multiple rows into a slice of model.Record pointers.
func scanRecords(rows *sql.Rows) ([]*model.Record, error) {
	var records []*model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt64 converts an int64 to sql.NullInt64; zero is null.
func nullInt64(n int64) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
