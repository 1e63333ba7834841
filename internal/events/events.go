package events

import (
	"context"

	"github.com/veillard/tabulaire/internal/model"
)

// Event topic constants
const (
	TopicTableCreated    = "tabulaire.table.created"
	TopicTableUpdated    = "tabulaire.table.updated"
	TopicTableDeleted    = "tabulaire.table.deleted"
	TopicFieldAdded      = "tabulaire.field.added"
	TopicFieldUpdated    = "tabulaire.field.updated"
	TopicFieldDeleted    = "tabulaire.field.deleted"
	TopicFieldsReordered = "tabulaire.field.reordered"
	TopicRecordCreated   = "tabulaire.record.created"
	TopicRecordUpdated   = "tabulaire.record.updated"
	TopicRecordDeleted   = "tabulaire.record.deleted"

	// Orchestrated multi-table mutations
	TopicTypeCreated    = "tabulaire.type.created"
	TopicProjectCreated = "tabulaire.project.created"
	TopicProjectUpdated = "tabulaire.project.updated"
)

// Event types

type TableCreated struct {
	Table *model.Table `json:"table"`
}

type TableUpdated struct {
	Table *model.Table `json:"table"`
}

type TableDeleted struct {
	TableID int64 `json:"table_id"`
}

type FieldAdded struct {
	TableID int64        `json:"table_id"`
	Field   *model.Field `json:"field"`
}

type FieldUpdated struct {
	TableID int64        `json:"table_id"`
	Field   *model.Field `json:"field"`
}

type FieldDeleted struct {
	TableID int64 `json:"table_id"`
	FieldID int64 `json:"field_id"`
}

type FieldsReordered struct {
	TableID int64              `json:"table_id"`
	Orders  []model.FieldOrder `json:"orders"`
}

type RecordCreated struct {
	Record *model.Record `json:"record"`
}

type RecordUpdated struct {
	Record *model.Record     `json:"record"`
	Values map[string]string `json:"values,omitempty"`
}

type RecordDeleted struct {
	RecordID int64 `json:"record_id"`
	TableID  int64 `json:"table_id"`
}

type TypeCreated struct {
	TypeRecord   *model.Record `json:"type_record"`
	DetailsTable *model.Table  `json:"details_table"`
}

type ProjectCreated struct {
	Project *model.Record `json:"project"`
	Details *model.Record `json:"details"`
}

type ProjectUpdated struct {
	Project *model.Record `json:"project"`
	Details *model.Record `json:"details"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
