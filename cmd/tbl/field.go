package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/model"
)

var fieldCmd = &cobra.Command{
	Use:     "field",
	Short:   "Manage table fields",
	GroupID: "schema",
}

func fieldSpecFromFlags(cmd *cobra.Command, name string) (model.FieldSpec, error) {
	fieldType, _ := cmd.Flags().GetString("type")
	slug, _ := cmd.Flags().GetString("slug")
	required, _ := cmd.Flags().GetBool("required")
	options, _ := cmd.Flags().GetStringSlice("option")
	relatedTable, _ := cmd.Flags().GetInt64("related-table")
	relatedField, _ := cmd.Flags().GetString("related-field")

	spec := model.FieldSpec{
		Name:             name,
		Slug:             slug,
		FieldType:        model.FieldType(fieldType),
		IsRequired:       required,
		Options:          options,
		RelatedTableID:   relatedTable,
		RelatedFieldSlug: relatedField,
	}
	if spec.FieldType != "" && !spec.FieldType.IsValid() {
		return spec, fmt.Errorf("unknown field type %q", fieldType)
	}
	if spec.FieldType == model.FieldTypeForeignKey && relatedTable == 0 {
		return spec, fmt.Errorf("foreign_key fields need --related-table")
	}
	return spec, nil
}

var fieldAddCmd = &cobra.Command{
	Use:   "add <table> <name>",
	Short: "Add a field to a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}
		spec, err := fieldSpecFromFlags(cmd, args[1])
		if err != nil {
			return err
		}
		if spec.FieldType == "" {
			spec.FieldType = model.FieldTypeText
		}

		field, err := api.AddField(ctx, table.ID, spec)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(field)
		} else {
			fmt.Printf("field %q (%s) added to %q\n", field.Name, field.FieldType, table.Name)
		}
		return nil
	},
}

var fieldUpdateCmd = &cobra.Command{
	Use:   "update <field-id> <name>",
	Short: "Replace a field definition",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fieldID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid field id %q", args[0])
		}
		spec, err := fieldSpecFromFlags(cmd, args[1])
		if err != nil {
			return err
		}

		field, err := api.UpdateField(context.Background(), fieldID, spec)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(field)
		} else {
			fmt.Printf("field #%d updated\n", field.ID)
		}
		return nil
	},
}

var fieldDeleteCmd = &cobra.Command{
	Use:   "delete <field-id>",
	Short: "Delete a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fieldID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid field id %q", args[0])
		}
		if err := api.DeleteField(context.Background(), fieldID); err != nil {
			return err
		}
		fmt.Printf("field #%d deleted\n", fieldID)
		return nil
	},
}

var fieldReorderCmd = &cobra.Command{
	Use:   "reorder <table> <field-id>...",
	Short: "Reorder fields (listed IDs get positions 0, 1, 2, ...)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		table, err := resolveTable(ctx, args[0])
		if err != nil {
			return err
		}

		var orders []model.FieldOrder
		for i, raw := range args[1:] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid field id %q", raw)
			}
			orders = append(orders, model.FieldOrder{ID: id, Order: i})
		}

		if err := api.ReorderFields(ctx, table.ID, orders); err != nil {
			return err
		}
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = strconv.FormatInt(o.ID, 10)
		}
		fmt.Printf("fields of %q reordered: %s\n", table.Name, strings.Join(ids, ", "))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{fieldAddCmd, fieldUpdateCmd} {
		c.Flags().String("type", "", "field type (text, number, date, boolean, choice, foreign_key, ...)")
		c.Flags().String("slug", "", "explicit slug")
		c.Flags().Bool("required", false, "mark the field required")
		c.Flags().StringSlice("option", nil, "choice option (repeatable)")
		c.Flags().Int64("related-table", 0, "target table ID for foreign_key fields")
		c.Flags().String("related-field", "", "display column slug on the related table")
	}

	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldUpdateCmd)
	fieldCmd.AddCommand(fieldDeleteCmd)
	fieldCmd.AddCommand(fieldReorderCmd)
}
