package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/kvstore"
	"github.com/veillard/tabulaire/internal/query"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
	"github.com/veillard/tabulaire/internal/view"
)

// openKV opens the local key-value store holding presets and form drafts.
func openKV() (*kvstore.Store, error) {
	path, err := kvStorePath()
	if err != nil {
		return nil, err
	}
	return kvstore.Open(path)
}

// loadPresets opens the kv store and loads the persisted preset list.
// The caller owns closing the returned store.
func loadPresets() (*kvstore.Store, *view.PresetStore, error) {
	kv, err := openKV()
	if err != nil {
		return nil, nil, err
	}
	presets := view.NewPresetStore(kv)
	if _, err := presets.Load(); err != nil {
		kv.Close()
		return nil, nil, err
	}
	return kv, presets, nil
}

var presetCmd = &cobra.Command{
	Use:     "preset",
	Short:   "Manage saved view presets",
	GroupID: "views",
}

// Presets are local state; everything except apply skips the server
// connection.
var presetLocalPreRun = func(cmd *cobra.Command, args []string) error { return nil }

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given filters and sorts as a named preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wheres, _ := cmd.Flags().GetStringArray("where")
		sorts, _ := cmd.Flags().GetStringArray("sort")
		columns, _ := cmd.Flags().GetStringSlice("columns")
		description, _ := cmd.Flags().GetString("description")

		kv, presets, err := loadPresets()
		if err != nil {
			return err
		}
		defer kv.Close()

		state := view.NewState(presets)
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

		p, err := state.SavePreset(args[0], description)
		if err != nil {
			return err
		}
		fmt.Printf("preset %q saved (%s)\n", p.Name, p.ID)
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, presets, err := loadPresets()
		if err != nil {
			return err
		}
		defer kv.Close()

		all := presets.All()
		if jsonOutput {
			printJSON(all)
			return nil
		}
		if len(all) == 0 {
			fmt.Println("no presets saved")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFILTERS\tSORTS\tCREATED")
		for _, p := range all {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				p.ID, p.Name, len(p.Filters), len(p.SortKeys), p.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a preset's filters and sorts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, presets, err := loadPresets()
		if err != nil {
			return err
		}
		defer kv.Close()

		p, ok := presets.ByName(args[0])
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}
		if jsonOutput {
			printJSON(p)
			return nil
		}
		fmt.Printf("%s (%s)\n", p.Name, p.ID)
		if p.Description != "" {
			fmt.Println(p.Description)
		}
		for _, f := range p.Filters {
			fmt.Printf("  where %s %s %s\n", f.Field, f.Op, query.Stringify(f.Value))
		}
		for _, k := range p.SortKeys {
			fmt.Printf("  sort %s %s\n", k.Field, k.Direction)
		}
		if len(p.Columns) > 0 {
			fmt.Printf("  columns %s\n", strings.Join(p.Columns, ", "))
		}
		return nil
	},
}

var presetApplyCmd = &cobra.Command{
	Use:   "apply <name> <table>",
	Short: "List a table's records with a preset's view applied",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, presets, err := loadPresets()
		if err != nil {
			return err
		}
		defer kv.Close()

		p, ok := presets.ByName(args[0])
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}

		ctx := context.Background()
		table, err := resolveTable(ctx, args[1])
		if err != nil {
			return err
		}

		state := view.NewState(presets)
		state.LoadPreset(p)

		conduit := record.NewConduit(api, schema.NewRegistry(api))
		records, err := conduit.FetchRecords(ctx, table.ID, nil)
		if err != nil {
			return err
		}
		projected := query.NewEngine().Project(records, state.Filters(), state.SortKeys())

		if jsonOutput {
			printJSON(projected)
		} else {
			printRecordList(projected, state.VisibleColumns())
		}
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, presets, err := loadPresets()
		if err != nil {
			return err
		}
		defer kv.Close()

		p, ok := presets.ByName(args[0])
		if !ok {
			return fmt.Errorf("preset %q not found", args[0])
		}
		if err := presets.Delete(p.ID); err != nil {
			return err
		}
		fmt.Printf("preset %q deleted\n", p.Name)
		return nil
	},
}

func init() {
	presetSaveCmd.Flags().StringArray("where", nil, "filter, field[:op]=value (repeatable)")
	presetSaveCmd.Flags().StringArray("sort", nil, "sort key, field[:asc|desc] (repeatable)")
	presetSaveCmd.Flags().StringSlice("columns", nil, "visible columns")
	presetSaveCmd.Flags().String("description", "", "preset description")

	for _, c := range []*cobra.Command{presetSaveCmd, presetListCmd, presetShowCmd, presetDeleteCmd} {
		c.PersistentPreRunE = presetLocalPreRun
	}

	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetApplyCmd)
	presetCmd.AddCommand(presetDeleteCmd)
}
