package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/store"
)

// fieldColumns is the column list used for SELECT statements on the fields table.
const fieldColumns = `id, table_id, name, slug, field_type, ord,
	is_required, is_unique, is_searchable, default_value, options,
	related_table, related_field`

// recordColumns is the column list used for SELECT statements on the records table.
const recordColumns = `id, table_id, custom_id, attrs, vals, is_active, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// --- Tables ---

func queryCreateTable(ctx context.Context, db executor, spec model.TableSpec) (*model.Table, error) {
	slug := spec.Slug
	if slug == "" {
		slug = slugify(spec.Name)
	}
	var t model.Table
	err := db.QueryRowContext(ctx, `
		INSERT INTO tables (name, slug) VALUES ($1, $2)
		RETURNING id, name, slug`,
		spec.Name, slug,
	).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryGetTable(ctx context.Context, db executor, id int64) (*model.Table, error) {
	var t model.Table
	err := db.QueryRowContext(ctx, `SELECT id, name, slug FROM tables WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	fields, err := queryListFields(ctx, db, id)
	if err != nil {
		return nil, err
	}
	t.Fields = fields
	return &t, nil
}

func queryGetTableByName(ctx context.Context, db executor, name string) (*model.Table, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`SELECT id FROM tables WHERE lower(name) = lower($1)`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return queryGetTable(ctx, db, id)
}

func queryListTables(ctx context.Context, db executor) ([]*model.Table, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, slug FROM tables ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []*model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tables = append(tables, &t)
	}
	return tables, rows.Err()
}

func queryUpdateTable(ctx context.Context, db executor, id int64, name, slug *string) (*model.Table, error) {
	var (
		sets   []string
		args   []any
		argIdx int
	)
	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if name != nil {
		sets = append(sets, "name = "+nextArg())
		args = append(args, *name)
	}
	if slug != nil {
		sets = append(sets, "slug = "+nextArg())
		args = append(args, *slug)
	}
	if len(sets) == 0 {
		return queryGetTable(ctx, db, id)
	}

	args = append(args, id)
	res, err := db.ExecContext(ctx,
		`UPDATE tables SET `+strings.Join(sets, ", ")+` WHERE id = `+nextArg(), args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("table %d: %w", id, store.ErrNotFound)
	}
	return queryGetTable(ctx, db, id)
}

func queryDeleteTable(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM tables WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("table %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// --- Fields ---

func queryAddField(ctx context.Context, db executor, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	slug := spec.Slug
	if slug == "" {
		slug = slugify(spec.Name)
	}
	order := spec.Order
	if order == 0 {
		// Append to the end unless the caller pinned a position.
		err := db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(ord) + 1, 0) FROM fields WHERE table_id = $1`, tableID).Scan(&order)
		if err != nil {
			return nil, err
		}
	}

	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO fields (
			table_id, name, slug, field_type, ord,
			is_required, is_unique, is_searchable, default_value, options,
			related_table, related_field
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		tableID,
		spec.Name,
		slug,
		string(spec.FieldType),
		order,
		spec.IsRequired,
		spec.IsUnique,
		spec.IsSearchable,
		nullString(spec.DefaultValue),
		optionsJSON(spec.Options),
		nullInt64(spec.RelatedTableID),
		nullString(spec.RelatedFieldSlug),
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return queryGetField(ctx, db, id)
}

func queryGetField(ctx context.Context, db executor, id int64) (*model.Field, error) {
	row := db.QueryRowContext(ctx, `SELECT `+fieldColumns+` FROM fields WHERE id = $1`, id)
	f, err := scanField(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("field %d: %w", id, store.ErrNotFound)
	}
	return f, err
}

func queryListFields(ctx context.Context, db executor, tableID int64) ([]model.Field, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+fieldColumns+` FROM fields WHERE table_id = $1 ORDER BY ord, id`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFields(rows)
}

func queryUpdateField(ctx context.Context, db executor, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	slug := spec.Slug
	if slug == "" {
		slug = slugify(spec.Name)
	}
	res, err := db.ExecContext(ctx, `
		UPDATE fields SET
			name = $1, slug = $2, field_type = $3,
			is_required = $4, is_unique = $5, is_searchable = $6,
			default_value = $7, options = $8, related_table = $9, related_field = $10
		WHERE id = $11`,
		spec.Name,
		slug,
		string(spec.FieldType),
		spec.IsRequired,
		spec.IsUnique,
		spec.IsSearchable,
		nullString(spec.DefaultValue),
		optionsJSON(spec.Options),
		nullInt64(spec.RelatedTableID),
		nullString(spec.RelatedFieldSlug),
		fieldID,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("field %d: %w", fieldID, store.ErrNotFound)
	}
	return queryGetField(ctx, db, fieldID)
}

func queryDeleteField(ctx context.Context, db executor, fieldID int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM fields WHERE id = $1`, fieldID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("field %d: %w", fieldID, store.ErrNotFound)
	}
	return nil
}

func queryReorderFields(ctx context.Context, db executor, tableID int64, orders []model.FieldOrder) error {
	for _, o := range orders {
		res, err := db.ExecContext(ctx,
			`UPDATE fields SET ord = $1 WHERE id = $2 AND table_id = $3`,
			o.Order, o.ID, tableID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("field %d in table %d: %w", o.ID, tableID, store.ErrNotFound)
		}
	}
	return nil
}

// --- Records ---

func queryCreateRecord(ctx context.Context, db executor, tableID int64, customID string, values map[string]string, links map[string]int64) (*model.Record, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO records (table_id, custom_id, attrs, vals)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		tableID,
		nullString(customID),
		linksJSON(links),
		valuesJSON(values),
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return queryGetRecord(ctx, db, id)
}

func queryGetRecord(ctx context.Context, db executor, id int64) (*model.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %d: %w", id, store.ErrNotFound)
	}
	return rec, err
}

func queryGetRecordByCustomID(ctx context.Context, db executor, tableID int64, customID string) (*model.Record, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE table_id = $1 AND custom_id = $2`,
		tableID, customID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %q in table %d: %w", customID, tableID, store.ErrNotFound)
	}
	return rec, err
}

func queryListRecords(ctx context.Context, db executor, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	where := []string{"table_id = $1"}
	args := []any{tableID}
	argIdx := 1

	// Stable clause order keeps the query deterministic for a given filter set.
	slugs := make([]string, 0, len(fieldFilters))
	for slug := range fieldFilters {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		sp := fmt.Sprintf("$%d", argIdx+1)
		vp := fmt.Sprintf("$%d", argIdx+2)
		argIdx += 2
		where = append(where, fmt.Sprintf("vals ->> %s = %s", sp, vp))
		args = append(args, slug, fieldFilters[slug])
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE `+strings.Join(where, " AND ")+` ORDER BY id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func queryUpdateRecordValues(ctx context.Context, db executor, recordID int64, values map[string]string, links map[string]int64) (*model.Record, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE records SET
			vals = vals || $1::jsonb,
			attrs = attrs || $2::jsonb,
			is_active = COALESCE(($1::jsonb ->> 'is_active')::boolean, is_active),
			updated_at = now()
		WHERE id = $3`,
		valuesJSON(values),
		linksJSON(links),
		recordID,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("record %d: %w", recordID, store.ErrNotFound)
	}
	return queryGetRecord(ctx, db, recordID)
}

func queryDeleteRecord(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// --- helpers ---

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	return strings.Trim(slug, "_")
}

func valuesJSON(values map[string]string) []byte {
	if values == nil {
		values = map[string]string{}
	}
	data, _ := json.Marshal(values)
	return data
}

func linksJSON(links map[string]int64) []byte {
	if links == nil {
		links = map[string]int64{}
	}
	data, _ := json.Marshal(links)
	return data
}

func optionsJSON(options []string) []byte {
	if options == nil {
		return nil
	}
	data, _ := json.Marshal(options)
	return data
}
