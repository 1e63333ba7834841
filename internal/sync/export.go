package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	TableCount  int       `json:"table_count"`
	RecordCount int       `json:"record_count"`
}

// line wraps a single JSONL line with a type discriminator.
type line struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every table definition and every record from the store
// as JSONL to w. Tables are sorted by ID and carry their full field lists;
// records follow their table, sorted by ID.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].ID < tables[j].ID
	})

	recordsByTable := make(map[int64][]*model.Record, len(tables))
	recordCount := 0
	for _, t := range tables {
		records, err := s.ListRecords(ctx, t.ID, nil)
		if err != nil {
			return fmt.Errorf("list records for %s: %w", t.Name, err)
		}
		sort.Slice(records, func(i, j int) bool {
			return records[i].ID < records[j].ID
		})
		recordsByTable[t.ID] = records
		recordCount += len(records)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		TableCount:  len(tables),
		RecordCount: recordCount,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, t := range tables {
		if err := enc.Encode(line{Type: "table", Data: t}); err != nil {
			return fmt.Errorf("encode table %s: %w", t.Name, err)
		}
		for _, rec := range recordsByTable[t.ID] {
			if err := enc.Encode(line{Type: "record", Data: rec}); err != nil {
				return fmt.Errorf("encode record %d: %w", rec.ID, err)
			}
		}
	}

	return nil
}
