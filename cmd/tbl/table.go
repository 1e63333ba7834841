package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/schema"
)

// resolveTable accepts a numeric table ID or a table name and returns the
// table with its fields loaded.
func resolveTable(ctx context.Context, ref string) (*model.Table, error) {
	reg := schema.NewRegistry(api)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return reg.TableWithFields(ctx, id)
	}
	return reg.TableByName(ctx, ref)
}

var tableCmd = &cobra.Command{
	Use:     "table",
	Short:   "Manage user-defined tables",
	GroupID: "schema",
}

var tableListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := api.ListTables(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(tables)
		} else {
			printTableList(tables)
		}
		return nil
	},
}

var tableShowCmd = &cobra.Command{
	Use:   "show <table>",
	Short: "Show a table and its fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := resolveTable(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(table)
		} else {
			printTableDetail(table)
		}
		return nil
	},
}

var tableCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, _ := cmd.Flags().GetString("slug")
		table, err := api.CreateTable(context.Background(), model.TableSpec{Name: args[0], Slug: slug})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(table)
		} else {
			fmt.Printf("table %q created (#%d)\n", table.Name, table.ID)
		}
		return nil
	},
}

var tableRenameCmd = &cobra.Command{
	Use:   "rename <table> <new-name>",
	Short: "Rename a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}
		name := args[1]
		updated, err := api.UpdateTable(ctx, table.ID, client.TablePatch{Name: &name})
		if err != nil {
			return err
		}
		fmt.Printf("table #%d renamed to %q\n", updated.ID, updated.Name)
		return nil
	},
}

var tableDeleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete a table and all its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}
		if err := api.DeleteTable(ctx, table.ID); err != nil {
			return err
		}
		fmt.Printf("table %q deleted\n", table.Name)
		return nil
	},
}

func init() {
	tableCreateCmd.Flags().String("slug", "", "explicit slug (defaults to a slugified name)")

	tableCmd.AddCommand(tableListCmd)
	tableCmd.AddCommand(tableShowCmd)
	tableCmd.AddCommand(tableCreateCmd)
	tableCmd.AddCommand(tableRenameCmd)
	tableCmd.AddCommand(tableDeleteCmd)
}
