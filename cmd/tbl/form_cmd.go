package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/form"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
)

var formCmd = &cobra.Command{
	Use:     "form <type>",
	Short:   "Show the conditional form for a project type",
	GroupID: "views",
	Long: "Derives the conditional detail fields for a project type from its\n" +
		"details table, the way the project form renders them: parent foreign\n" +
		"keys pruned, choice and foreign-key options resolved.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentName, _ := cmd.Flags().GetString("parent")
		recordRef, _ := cmd.Flags().GetString("record")

		ctx := context.Background()
		reg := schema.NewRegistry(api)
		conduit := record.NewConduit(api, reg)
		composer := form.NewComposer(reg, conduit, parentName)

		registry, err := reg.TableByName(ctx, "TableNames")
		if err != nil {
			return fmt.Errorf("no type registry table: %w", err)
		}

		ref := form.TypeRef{Name: args[0]}
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			ref = form.TypeRef{ID: id}
		}

		composition, err := composer.Compose(ctx, registry.ID, ref, nil)
		if err != nil {
			return err
		}

		// Seed current values from an existing details row when requested.
		if recordRef != "" {
			id, err := strconv.ParseInt(recordRef, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", recordRef)
			}
			current, err := api.GetRecord(ctx, id)
			if err != nil {
				return err
			}
			composition, err = composer.Compose(ctx, registry.ID, ref, current)
			if err != nil {
				return err
			}
		}

		if jsonOutput {
			printJSON(composition)
			return nil
		}

		fmt.Printf("form for type %q (details table #%d)\n", composition.TypeName, composition.Details.ID)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tLABEL\tTYPE\tREQUIRED\tOPTIONS\tCURRENT")
		for _, f := range composition.Fields {
			options := ""
			if n := len(f.Options); n > 0 {
				options = fmt.Sprintf("%d", n)
			}
			required := ""
			if f.Required {
				required = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				f.Slug, f.Label, f.FieldType, required, options, f.CurrentValue)
		}
		return w.Flush()
	},
}

func init() {
	formCmd.Flags().String("parent", "Projet", "parent table whose foreign keys are pruned")
	formCmd.Flags().String("record", "", "details record ID to seed current values from")
}
