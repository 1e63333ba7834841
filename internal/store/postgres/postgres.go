// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error) {
	return queryCreateTable(ctx, s.db, spec)
}

func (s *PostgresStore) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	return queryGetTable(ctx, s.db, id)
}

func (s *PostgresStore) GetTableByName(ctx context.Context, name string) (*model.Table, error) {
	return queryGetTableByName(ctx, s.db, name)
}

func (s *PostgresStore) ListTables(ctx context.Context) ([]*model.Table, error) {
	return queryListTables(ctx, s.db)
}

func (s *PostgresStore) UpdateTable(ctx context.Context, id int64, name, slug *string) (*model.Table, error) {
	return queryUpdateTable(ctx, s.db, id, name, slug)
}

func (s *PostgresStore) DeleteTable(ctx context.Context, id int64) error {
	return queryDeleteTable(ctx, s.db, id)
}

func (s *PostgresStore) AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	return queryAddField(ctx, s.db, tableID, spec)
}

func (s *PostgresStore) UpdateField(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	return queryUpdateField(ctx, s.db, fieldID, spec)
}

func (s *PostgresStore) DeleteField(ctx context.Context, fieldID int64) error {
	return queryDeleteField(ctx, s.db, fieldID)
}

func (s *PostgresStore) ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) error {
	return queryReorderFields(ctx, s.db, tableID, orders)
}

func (s *PostgresStore) CreateRecord(ctx context.Context, tableID int64, customID string, values map[string]string, links map[string]int64) (*model.Record, error) {
	return queryCreateRecord(ctx, s.db, tableID, customID, values, links)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	return queryGetRecord(ctx, s.db, id)
}

func (s *PostgresStore) GetRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error) {
	return queryGetRecordByCustomID(ctx, s.db, tableID, customID)
}

func (s *PostgresStore) ListRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	return queryListRecords(ctx, s.db, tableID, fieldFilters)
}

func (s *PostgresStore) UpdateRecordValues(ctx context.Context, recordID int64, values map[string]string, links map[string]int64) (*model.Record, error) {
	return queryUpdateRecordValues(ctx, s.db, recordID, values, links)
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, id int64) error {
	return queryDeleteRecord(ctx, s.db, id)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateTable(ctx context.Context, spec model.TableSpec) (*model.Table, error) {
	return queryCreateTable(ctx, s.tx, spec)
}

func (s *txStore) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	return queryGetTable(ctx, s.tx, id)
}

func (s *txStore) GetTableByName(ctx context.Context, name string) (*model.Table, error) {
	return queryGetTableByName(ctx, s.tx, name)
}

func (s *txStore) ListTables(ctx context.Context) ([]*model.Table, error) {
	return queryListTables(ctx, s.tx)
}

func (s *txStore) UpdateTable(ctx context.Context, id int64, name, slug *string) (*model.Table, error) {
	return queryUpdateTable(ctx, s.tx, id, name, slug)
}

func (s *txStore) DeleteTable(ctx context.Context, id int64) error {
	return queryDeleteTable(ctx, s.tx, id)
}

func (s *txStore) AddField(ctx context.Context, tableID int64, spec model.FieldSpec) (*model.Field, error) {
	return queryAddField(ctx, s.tx, tableID, spec)
}

func (s *txStore) UpdateField(ctx context.Context, fieldID int64, spec model.FieldSpec) (*model.Field, error) {
	return queryUpdateField(ctx, s.tx, fieldID, spec)
}

func (s *txStore) DeleteField(ctx context.Context, fieldID int64) error {
	return queryDeleteField(ctx, s.tx, fieldID)
}

func (s *txStore) ReorderFields(ctx context.Context, tableID int64, orders []model.FieldOrder) error {
	return queryReorderFields(ctx, s.tx, tableID, orders)
}

func (s *txStore) CreateRecord(ctx context.Context, tableID int64, customID string, values map[string]string, links map[string]int64) (*model.Record, error) {
	return queryCreateRecord(ctx, s.tx, tableID, customID, values, links)
}

func (s *txStore) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	return queryGetRecord(ctx, s.tx, id)
}

func (s *txStore) GetRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error) {
	return queryGetRecordByCustomID(ctx, s.tx, tableID, customID)
}

func (s *txStore) ListRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	return queryListRecords(ctx, s.tx, tableID, fieldFilters)
}

func (s *txStore) UpdateRecordValues(ctx context.Context, recordID int64, values map[string]string, links map[string]int64) (*model.Record, error) {
	return queryUpdateRecordValues(ctx, s.tx, recordID, values, links)
}

func (s *txStore) DeleteRecord(ctx context.Context, id int64) error {
	return queryDeleteRecord(ctx, s.tx, id)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
