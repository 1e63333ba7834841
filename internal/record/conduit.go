package record

import (
	"context"
	"sync"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/schema"
)

// Conduit fetches and mutates records through the backend client, keeping a
// per-table cache of unfiltered row lists. Like the schema registry it
// guards the cache with per-table request tickets so an invalidation
// discards any fetch already in flight.
type Conduit struct {
	client client.Client
	schema *schema.Registry

	mu     sync.Mutex
	tables map[int64][]*model.Record
	seq    map[int64]uint64
}

// NewConduit returns an empty conduit. The registry may be nil when no
// schema cache sits alongside; mutations then skip schema invalidation.
func NewConduit(c client.Client, reg *schema.Registry) *Conduit {
	return &Conduit{
		client: c,
		schema: reg,
		tables: make(map[int64][]*model.Record),
		seq:    make(map[int64]uint64),
	}
}

// FetchRecords returns the rows of a table. Unfiltered fetches are cached;
// passing field filters always goes to the backend and leaves the cache
// untouched, since a filtered subset cannot serve later unfiltered reads.
func (c *Conduit) FetchRecords(ctx context.Context, tableID int64, fieldFilters map[string]string) ([]*model.Record, error) {
	if len(fieldFilters) > 0 {
		return c.client.ListRecords(ctx, tableID, fieldFilters)
	}

	c.mu.Lock()
	if rows, ok := c.tables[tableID]; ok {
		c.mu.Unlock()
		return rows, nil
	}
	c.seq[tableID]++
	ticket := c.seq[tableID]
	c.mu.Unlock()

	rows, err := c.client.ListRecords(ctx, tableID, nil)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.seq[tableID] == ticket {
		c.tables[tableID] = rows
	}
	c.mu.Unlock()
	return rows, nil
}

// FetchRecordByID fetches a single record by backend id, bypassing the cache.
func (c *Conduit) FetchRecordByID(ctx context.Context, id int64) (*model.Record, error) {
	return c.client.GetRecord(ctx, id)
}

// FetchRecordByCustomID fetches a record by its user-facing identifier.
func (c *Conduit) FetchRecordByCustomID(ctx context.Context, tableID int64, customID string) (*model.Record, error) {
	return c.client.GetRecordByCustomID(ctx, tableID, customID)
}

// CreateRecord validates input against the table's field definitions,
// coerces it into the wire payload, submits it, and drops the table's
// cached rows on success.
func (c *Conduit) CreateRecord(ctx context.Context, tableID int64, input map[string]any) (*model.Record, error) {
	if err := c.validate(ctx, tableID, input, false); err != nil {
		return nil, err
	}
	rec, err := c.client.CreateRecord(ctx, BuildPayload(tableID, input))
	if err != nil {
		return nil, err
	}
	c.Invalidate(tableID)
	return rec, nil
}

// UpdateRecord validates the touched fields, coerces input into the wire
// payload, and patches the record.
func (c *Conduit) UpdateRecord(ctx context.Context, tableID, recordID int64, input map[string]any) (*model.Record, error) {
	if err := c.validate(ctx, tableID, input, true); err != nil {
		return nil, err
	}
	rec, err := c.client.UpdateRecord(ctx, recordID, BuildUpdatePayload(input))
	if err != nil {
		return nil, err
	}
	c.Invalidate(tableID)
	return rec, nil
}

// validate checks input against the table's field definitions so bad
// values are rejected per field before anything reaches the wire. Partial
// updates only check the fields they touch. Without a schema registry
// there is no descriptor to check against and the backend has the last
// word.
func (c *Conduit) validate(ctx context.Context, tableID int64, input map[string]any, partial bool) error {
	if c.schema == nil {
		return nil
	}
	table, err := c.schema.TableWithFields(ctx, tableID)
	if err != nil {
		return err
	}
	fields := table.Fields
	if partial {
		var touched []model.Field
		for _, f := range table.Fields {
			if _, ok := input[f.Slug]; ok {
				touched = append(touched, f)
			} else if f.FieldType == model.FieldTypeForeignKey {
				if _, ok := input[f.Slug+"_id"]; ok {
					touched = append(touched, f)
				}
			}
		}
		fields = touched
	}
	return model.ValidateValues(input, fields)
}

// DeleteRecord deletes a record and drops the table's cached rows.
func (c *Conduit) DeleteRecord(ctx context.Context, tableID, recordID int64) error {
	if err := c.client.DeleteRecord(ctx, recordID); err != nil {
		return err
	}
	c.Invalidate(tableID)
	return nil
}

// Invalidate drops the cached rows for a table and discards any fetch in
// flight for it. The table's schema descriptor is invalidated too: a row
// mutation can be the first sign that fields changed underneath us.
func (c *Conduit) Invalidate(tableID int64) {
	c.mu.Lock()
	delete(c.tables, tableID)
	c.seq[tableID]++
	c.mu.Unlock()

	if c.schema != nil {
		c.schema.Invalidate(tableID)
	}
}
