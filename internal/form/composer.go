// Package form derives type-dependent form definitions from the schema and
// persists in-progress form entries across reloads.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/query"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
)

// ErrStale is returned by a composition that was superseded by a newer one
// before it finished. Callers drop the result and keep the newer one.
var ErrStale = errors.New("form: composition superseded")

// ErrTypeNotFound is returned when the type discriminator matches no record
// of the type table.
var ErrTypeNotFound = errors.New("form: type not found")

// typeNameKeys are the candidate display-name attributes of a type record,
// tried in order.
var typeNameKeys = []string{"nom", "name", "title", "titre", "label"}

// optionKeys are the candidate display-value attributes of a related
// table's records, tried in order when loading foreign-key options.
var optionKeys = []string{"nom", "name", "label", "title", "value"}

// TypeRef selects a type record by id or, when ID is zero, by display name.
type TypeRef struct {
	ID   int64
	Name string
}

// FormField is one derived entry of a composed form.
type FormField struct {
	Slug         string
	Label        string
	FieldType    model.FieldType
	Required     bool
	RelatedTable int64
	Options      []string
	CurrentValue string
}

// Composition is the output of a successful derivation: the ordered
// conditional fields plus the merged current-values map used to populate
// the form.
type Composition struct {
	TypeID   int64
	TypeName string
	Details  *model.Table
	Fields   []FormField
	Values   map[string]string
}

// Composer derives the conditional fields of a chosen project type from its
// details table. Derivations are restartable: starting a new one supersedes
// any still in flight, which then returns ErrStale instead of a result.
type Composer struct {
	schema  *schema.Registry
	records *record.Conduit

	// parentName is the name of the parent table whose foreign keys are
	// pruned from details fields to prevent cycles.
	parentName string

	mu  sync.Mutex
	gen uint64
}

// NewComposer returns a composer pruning foreign keys back to the table
// named parentName ("Projet" in the stock schema).
func NewComposer(reg *schema.Registry, rc *record.Conduit, parentName string) *Composer {
	return &Composer{schema: reg, records: rc, parentName: parentName}
}

// Compose derives the form for the type selected by ref out of the records
// of typeTableID. current may be nil; when set, its values seed the
// CurrentValue of each derived field.
func (c *Composer) Compose(ctx context.Context, typeTableID int64, ref TypeRef, current *model.Record) (*Composition, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	typeRec, typeName, err := c.findType(ctx, typeTableID, ref)
	if err != nil {
		return nil, err
	}

	details, err := c.detailsTable(ctx, typeName)
	if err != nil {
		return nil, err
	}

	parent, err := c.parentTable(ctx)
	if err != nil {
		return nil, err
	}

	comp := &Composition{
		TypeID:   typeRec.ID,
		TypeName: typeName,
		Details:  details,
		Values:   make(map[string]string),
	}
	for i := range details.Fields {
		f := &details.Fields[i]
		if excluded(f, parent) {
			continue
		}

		ff := FormField{
			Slug:         f.Slug,
			Label:        f.Name,
			FieldType:    f.FieldType,
			Required:     f.IsRequired,
			RelatedTable: f.RelatedTableID,
		}
		switch f.FieldType {
		case model.FieldTypeForeignKey:
			opts, err := c.loadOptions(ctx, f, typeName)
			if err != nil {
				return nil, fmt.Errorf("loading options for %s: %w", f.Slug, err)
			}
			ff.Options = opts
		case model.FieldTypeChoice:
			ff.Options = append([]string(nil), f.Options...)
		}
		if current != nil {
			ff.CurrentValue = query.Resolve(current, f.Slug)
		}
		if ff.CurrentValue != "" {
			comp.Values[f.Slug] = ff.CurrentValue
		}
		comp.Fields = append(comp.Fields, ff)
	}

	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if stale {
		return nil, ErrStale
	}
	return comp, nil
}

// findType locates the type record by id or by display name across the
// candidate name attributes.
func (c *Composer) findType(ctx context.Context, typeTableID int64, ref TypeRef) (*model.Record, string, error) {
	rows, err := c.records.FetchRecords(ctx, typeTableID, nil)
	if err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		name := query.Resolve(row, typeNameKeys...)
		if ref.ID != 0 {
			if row.ID == ref.ID {
				return row, name, nil
			}
			continue
		}
		if strings.EqualFold(name, ref.Name) {
			return row, name, nil
		}
	}
	if ref.ID != 0 {
		return nil, "", fmt.Errorf("%w: id %d", ErrTypeNotFound, ref.ID)
	}
	return nil, "", fmt.Errorf("%w: %q", ErrTypeNotFound, ref.Name)
}

// detailsTable resolves the "{TypeName}Details" table, case-insensitively.
func (c *Composer) detailsTable(ctx context.Context, typeName string) (*model.Table, error) {
	return c.schema.TableByName(ctx, model.DetailsTableName(typeName))
}

// parentTable resolves the parent table descriptor; a missing parent is
// tolerated, cycle pruning then falls back to name matching alone.
func (c *Composer) parentTable(ctx context.Context) (*model.Table, error) {
	t, err := c.schema.TableByName(ctx, c.parentName)
	if errors.Is(err, schema.ErrTableNotFound) {
		return nil, nil
	}
	return t, err
}

// excluded implements the cycle-prevention rules: drop any foreign key back
// to the parent table, and any field whose slug or name mentions the
// parent project.
func excluded(f *model.Field, parent *model.Table) bool {
	if f.IsForeignKeyTo(parent) {
		return true
	}
	slug := strings.ToLower(f.Slug)
	name := strings.ToLower(f.Name)
	for _, needle := range []string{"projet", "project"} {
		if strings.Contains(slug, needle) || strings.Contains(name, needle) {
			return true
		}
	}
	return false
}

// loadOptions fetches the related table's records and extracts a distinct,
// collated list of display values. When the ordered key list yields
// nothing, heuristic column names derived from the field and type are
// tried ("sous_type" under "Prestation" probes "sous_type_prestation").
func (c *Composer) loadOptions(ctx context.Context, f *model.Field, typeName string) ([]string, error) {
	if f.RelatedTableID == 0 {
		return nil, nil
	}
	rows, err := c.records.FetchRecords(ctx, f.RelatedTableID, nil)
	if err != nil {
		return nil, err
	}

	keys := optionKeys
	if f.RelatedFieldSlug != "" {
		keys = append([]string{f.RelatedFieldSlug}, keys...)
	}

	seen := make(map[string]struct{})
	var opts []string
	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		opts = append(opts, v)
	}

	for _, row := range rows {
		add(query.Resolve(row, keys...))
	}
	if len(opts) == 0 {
		fallback := []string{
			f.Slug + "_" + strings.ToLower(typeName),
			strings.ToLower(f.Name) + "_" + strings.ToLower(typeName),
		}
		for _, row := range rows {
			add(query.Resolve(row, fallback...))
		}
	}

	query.SortStrings(opts)
	return opts, nil
}
