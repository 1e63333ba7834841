package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/model"
	"github.com/veillard/tabulaire/internal/orchestrate"
	"github.com/veillard/tabulaire/internal/query"
	"github.com/veillard/tabulaire/internal/record"
	"github.com/veillard/tabulaire/internal/schema"
)

func newOrchestrator() *orchestrate.Orchestrator {
	reg := schema.NewRegistry(api)
	return orchestrate.New(api, reg, record.NewConduit(api, reg))
}

// orchestrateErr reports an orchestrated call's failure. JSON consumers
// get the {success:false, error} result shape on stdout; the error still
// propagates for the exit code.
func orchestrateErr(err error) error {
	if jsonOutput {
		printJSON(orchestrate.Failure(err))
	}
	return err
}

// parseColumn parses "Name:type" into a field spec. The type defaults to
// text when omitted.
func parseColumn(spec string) (model.FieldSpec, error) {
	name, fieldType, hasType := strings.Cut(spec, ":")
	if name == "" {
		return model.FieldSpec{}, fmt.Errorf("invalid column %q, want name[:type]", spec)
	}
	col := model.FieldSpec{Name: name, FieldType: model.FieldTypeText}
	if hasType {
		col.FieldType = model.FieldType(fieldType)
		if !col.FieldType.IsValid() {
			return model.FieldSpec{}, fmt.Errorf("unknown field type %q", fieldType)
		}
	}
	return col, nil
}

var typeCmd = &cobra.Command{
	Use:     "type",
	Short:   "Manage project types",
	GroupID: "schema",
}

var typeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project type and its details table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columnSpecs, _ := cmd.Flags().GetStringArray("column")
		var columns []model.FieldSpec
		for _, spec := range columnSpecs {
			col, err := parseColumn(spec)
			if err != nil {
				return err
			}
			columns = append(columns, col)
		}

		result, err := newOrchestrator().CreateNewType(context.Background(), args[0], columns)
		if err != nil {
			return orchestrateErr(err)
		}
		if jsonOutput {
			printJSON(result)
		} else {
			fmt.Printf("type %q created, details table %q (#%d)\n",
				args[0], result.DetailsTable.Name, result.DetailsTable.ID)
		}
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:     "project",
	Short:   "Manage projects and their conditional details",
	GroupID: "records",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project with its details row in one call",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeID, _ := cmd.Flags().GetInt64("type")
		dataPairs, _ := cmd.Flags().GetStringArray("set")
		detailPairs, _ := cmd.Flags().GetStringArray("detail")
		if typeID == 0 {
			return fmt.Errorf("--type is required")
		}

		projectData, err := parseSetFlags(dataPairs)
		if err != nil {
			return err
		}
		conditional, err := parseSetFlags(detailPairs)
		if err != nil {
			return err
		}

		result, err := newOrchestrator().CreateProjectWithDetails(
			context.Background(), projectData, conditional, typeID)
		if err != nil {
			return orchestrateErr(err)
		}
		if jsonOutput {
			printJSON(result)
		} else {
			fmt.Printf("project #%d created (%s)\n",
				result.Project.ID, query.Resolve(result.Project, "custom_id"))
			if result.Details != nil {
				fmt.Printf("details row #%d\n", result.Details.ID)
			}
		}
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project-id>",
	Short: "Update a project and its details row in one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		typeID, _ := cmd.Flags().GetInt64("type")
		dataPairs, _ := cmd.Flags().GetStringArray("set")
		detailPairs, _ := cmd.Flags().GetStringArray("detail")
		if typeID == 0 {
			return fmt.Errorf("--type is required")
		}

		projectData, err := parseSetFlags(dataPairs)
		if err != nil {
			return err
		}
		conditional, err := parseSetFlags(detailPairs)
		if err != nil {
			return err
		}

		result, err := newOrchestrator().UpdateProjectWithDetails(
			context.Background(), projectID, projectData, conditional, typeID)
		if err != nil {
			return orchestrateErr(err)
		}
		if jsonOutput {
			printJSON(result)
		} else {
			fmt.Printf("project #%d updated\n", result.Project.ID)
		}
		return nil
	},
}

func init() {
	typeCreateCmd.Flags().StringArray("column", nil, "details column, name[:type] (repeatable)")
	typeCmd.AddCommand(typeCreateCmd)

	for _, c := range []*cobra.Command{projectCreateCmd, projectUpdateCmd} {
		c.Flags().Int64("type", 0, "project type record ID")
		c.Flags().StringArray("set", nil, "project field, key=value (repeatable)")
		c.Flags().StringArray("detail", nil, "conditional detail field, key=value (repeatable)")
	}
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectUpdateCmd)
}
