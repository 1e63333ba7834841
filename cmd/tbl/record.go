package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/query"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
	"github.com/veillard/tabulaire/internal/view"
)

var recordCmd = &cobra.Command{
	Use:     "record",
	Short:   "Manage records",
	GroupID: "records",
}

// filterOperators maps the --where operator shorthand to filter operators.
var filterOperators = map[string]model.Operator{
	"contains": model.OpContains,
	"equals":   model.OpEquals,
	"ne":       model.OpNotEquals,
	"starts":   model.OpStartsWith,
	"ends":     model.OpEndsWith,
	"gt":       model.OpGreaterThan,
	"lt":       model.OpLessThan,
	"ge":       model.OpGreaterEqual,
	"le":       model.OpLessEqual,
}

// parseWhere parses "field=value" or "field:op=value" into a filter.
// Comparison operators get the comparison filter type so numeric values
// compare numerically.
func parseWhere(spec string) (model.Filter, error) {
	expr, value, ok := strings.Cut(spec, "=")
	if !ok {
		return model.Filter{}, fmt.Errorf("invalid filter %q, want field[:op]=value", spec)
	}
	field, opName, hasOp := strings.Cut(expr, ":")
	f := model.Filter{Field: field, Type: model.FilterText, Op: model.OpContains, Value: value}
	if hasOp {
		op, ok := filterOperators[opName]
		if !ok {
			return model.Filter{}, fmt.Errorf("unknown filter operator %q", opName)
		}
		f.Op = op
		switch op {
		case model.OpGreaterThan, model.OpLessThan, model.OpGreaterEqual, model.OpLessEqual:
			f.Type = model.FilterComparison
		}
	}
	return f, nil
}

// parseSort parses "field" or "field:desc" into a sort key.
func parseSort(spec string, priority int) (model.SortKey, error) {
	field, dir, hasDir := strings.Cut(spec, ":")
	key := model.SortKey{Field: field, Direction: model.Asc, Priority: priority}
	if hasDir {
		switch dir {
		case "asc":
		case "desc":
			key.Direction = model.Desc
		default:
			return key, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return key, nil
}

var recordListCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "List records with client-side filtering and sorting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wheres, _ := cmd.Flags().GetStringArray("where")
		sorts, _ := cmd.Flags().GetStringArray("sort")
		columns, _ := cmd.Flags().GetStringSlice("columns")
		presetName, _ := cmd.Flags().GetString("preset")

		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}

		state := view.NewState(nil)
		if presetName != "" {
			kv, err := openKV()
			if err != nil {
				return err
			}
			defer kv.Close()
			presets := view.NewPresetStore(kv)
			if _, err := presets.Load(); err != nil {
				return err
			}
			p, ok := presets.ByName(presetName)
			if !ok {
				return fmt.Errorf("preset %q not found", presetName)
			}
			state = view.NewState(presets)
			state.LoadPreset(p)
		}
		for _, spec := range wheres {
			f, err := parseWhere(spec)
			if err != nil {
				return err
			}
			state.AddFilter(f)
		}
		for i, spec := range sorts {
			key, err := parseSort(spec, i)
			if err != nil {
				return err
			}
			state.AddSort(key.Field, key.Direction)
		}
		if len(columns) > 0 {
			state.SetVisibleColumns(columns)
		}

		conduit := record.NewConduit(api, schema.NewRegistry(api))
		records, err := conduit.FetchRecords(ctx, table.ID, nil)
		if err != nil {
			return err
		}

		engine := query.NewEngine()
		projected := engine.Project(records, state.Filters(), state.SortKeys())

		if jsonOutput {
			printJSON(projected)
		} else {
			printRecordList(projected, state.VisibleColumns())
		}
		return nil
	},
}

var recordShowCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := fetchRecordArg(context.Background(), cmd, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(rec)
		} else {
			printRecordDetail(rec)
		}
		return nil
	},
}

// fetchRecordArg resolves a record by numeric ID, or by custom ID when
// --table is set.
func fetchRecordArg(ctx context.Context, cmd *cobra.Command, ref string) (*model.Record, error) {
	tableRef, _ := cmd.Flags().GetString("table")
	if tableRef != "" {
		table, err := resolveTable(ctx, tableRef)
		if err != nil {
			return nil, err
		}
		return api.GetRecordByCustomID(ctx, table.ID, ref)
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q (use --table to look up by custom id)", ref)
	}
	return api.GetRecord(ctx, id)
}

// parseSetFlags turns repeated --set k=v pairs into a value map. The
// payload coercion downstream sorts out linkage keys and booleans.
func parseSetFlags(pairs []string) (map[string]any, error) {
	input := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", pair)
		}
		switch v {
		case "true":
			input[k] = true
		case "false":
			input[k] = false
		default:
			input[k] = v
		}
	}
	return input, nil
}

var recordCreateCmd = &cobra.Command{
	Use:   "create <table>",
	Short: "Create a record from --set key=value pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("set")
		input, err := parseSetFlags(pairs)
		if err != nil {
			return err
		}

		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}

		conduit := record.NewConduit(api, schema.NewRegistry(api))
		rec, err := conduit.CreateRecord(ctx, table.ID, input)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("record #%d created (%s)\n", rec.ID, query.Resolve(rec, "custom_id"))
		}
		return nil
	},
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update <table> <record-id>",
	Short: "Update record values from --set key=value pairs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("set")
		input, err := parseSetFlags(pairs)
		if err != nil {
			return err
		}
		if len(input) == 0 {
			return fmt.Errorf("nothing to update, pass --set key=value")
		}

		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}
		recordID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id %q", args[1])
		}

		conduit := record.NewConduit(api, schema.NewRegistry(api))
		rec, err := conduit.UpdateRecord(ctx, table.ID, recordID, input)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("record #%d updated\n", rec.ID)
		}
		return nil
	},
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete <table> <record-id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}
		recordID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id %q", args[1])
		}

		conduit := record.NewConduit(api, schema.NewRegistry(api))
		if err := conduit.DeleteRecord(ctx, table.ID, recordID); err != nil {
			return err
		}
		fmt.Printf("record #%d deleted\n", recordID)
		return nil
	},
}

func init() {
	recordListCmd.Flags().StringArray("where", nil, "filter records, field[:op]=value (repeatable)")
	recordListCmd.Flags().StringArray("sort", nil, "sort key, field[:asc|desc] (repeatable)")
	recordListCmd.Flags().StringSlice("columns", nil, "columns to display")
	recordListCmd.Flags().String("preset", "", "apply a saved view preset")

	recordShowCmd.Flags().String("table", "", "look the record up by custom id in this table")
	recordCreateCmd.Flags().StringArray("set", nil, "field value, key=value (repeatable)")
	recordUpdateCmd.Flags().StringArray("set", nil, "field value, key=value (repeatable)")

	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordShowCmd)
	recordCmd.AddCommand(recordCreateCmd)
	recordCmd.AddCommand(recordUpdateCmd)
	recordCmd.AddCommand(recordDeleteCmd)
}
