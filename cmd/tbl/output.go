package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/query"
	"github.com/veillard/tabulaire/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTableList(tables []*model.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG\tFIELDS")
	for _, t := range tables {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", t.ID, t.Name, t.Slug, len(t.Fields))
	}
	w.Flush()
	fmt.Printf("\n%d tables\n", len(tables))
}

func printTableDetail(t *model.Table) {
	fmt.Printf("%s %s\n", ui.RenderAccent(t.Name), ui.RenderMuted(fmt.Sprintf("(#%d, %s)", t.ID, t.Slug)))
	if len(t.Fields) == 0 {
		fmt.Println(ui.RenderMuted("no fields"))
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tORDER\tNAME\tSLUG\tTYPE\tDETAILS")
	for _, f := range t.Fields {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			f.ID, f.Order, f.Name, f.Slug, f.FieldType, fieldDetails(&f))
	}
	w.Flush()
}

func fieldDetails(f *model.Field) string {
	switch f.FieldType {
	case model.FieldTypeChoice:
		return fmt.Sprintf("%d options", len(f.Options))
	case model.FieldTypeForeignKey:
		if f.RelatedTableName != "" {
			return "-> " + f.RelatedTableName
		}
		if f.RelatedTableID != 0 {
			return fmt.Sprintf("-> table %d", f.RelatedTableID)
		}
	}
	return ""
}

// printRecordList renders records as a table with one column per slug in
// columns. Empty columns falls back to the slugs present on the first
// record.
func printRecordList(records []*model.Record, columns []string) {
	if len(records) == 0 {
		fmt.Println("no records")
		return
	}
	if len(columns) == 0 {
		for _, fv := range records[0].Values {
			columns = append(columns, fv.FieldSlug)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	head := "ID\tCUSTOM_ID"
	for _, col := range columns {
		head += "\t" + col
	}
	fmt.Fprintln(w, head)
	for _, r := range records {
		row := fmt.Sprintf("%d\t%s", r.ID, query.Resolve(r, "custom_id"))
		for _, col := range columns {
			cell := query.Resolve(r, col)
			if len(cell) > 40 {
				cell = cell[:37] + "..."
			}
			row += "\t" + cell
		}
		fmt.Fprintln(w, row)
	}
	w.Flush()
	fmt.Printf("\n%d records\n", len(records))
}

func printRecordDetail(r *model.Record) {
	fmt.Printf("Record %s\n", ui.RenderAccent(fmt.Sprintf("#%d", r.ID)))
	if cid := query.Resolve(r, "custom_id"); cid != "" {
		fmt.Printf("Custom ID:  %s\n", cid)
	}
	fmt.Printf("Table:      %d\n", r.TableID)
	fmt.Printf("Active:     %s\n", query.Resolve(r, "is_active"))
	for _, fv := range r.Values {
		fmt.Printf("%s%s\n", pad(fv.FieldSlug+":", 12), query.Stringify(fv.Value))
	}
}

func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
