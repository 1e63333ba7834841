package store

import (
	"context"
	"errors"

	"github.com/veillard/tabulaire/internal/model"
)

// ErrNotFound is returned when a table, field, or record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for user-defined tables and their
// records.
type Store interface {
	// Tables
	CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error)
	GetTable(ctx context.Context, id int64) (*model.Table, error)
	GetTableByName(ctx context.Context, name string) (*model.Table, error)
	ListTables(ctx context.Context) ([]*model.Table, error)
	UpdateTable(ctx context.Context, id int64, name, slug *string) (*model.Table, error)
	DeleteTable(ctx context.Context, id int64) error

	// Fields
	AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error)
	UpdateField(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error)
	DeleteField(ctx context.Context, fieldID int64) error
	ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) error

	// Records. Values are the coerced string values keyed by field slug;
	// links are scalar foreign-key attributes stored alongside them.
	CreateRecord(ctx context.Context, tableID int64, customID string, values map[string]string, links map[string]int64) (*model.Record, error)
	GetRecord(ctx context.Context, id int64) (*model.Record, error)
	GetRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error)
	ListRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error)
	UpdateRecordValues(ctx context.Context, recordID int64, values map[string]string, links map[string]int64) (*model.Record, error)
	DeleteRecord(ctx context.Context, id int64) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
