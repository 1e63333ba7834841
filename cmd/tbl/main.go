package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/veillard/tabulaire/internal/client"
	"github.com/veillard/tabulaire/internal/ui"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	noColor    bool

	api *client.HTTPClient
)

func defaultServer() string {
	if s := os.Getenv("TABULAIRE_URL"); s != "" {
		return s
	}
	if s := activeRemoteURL(); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if t := os.Getenv("TABULAIRE_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "tbl",
	Short: "CLI client for the tabulaire service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		api = client.NewHTTPClient(serverURL, authToken)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "server base URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "schema", Title: "Schema commands:"},
		&cobra.Group{ID: "records", Title: "Record commands:"},
		&cobra.Group{ID: "views", Title: "View commands:"},
		&cobra.Group{ID: "system", Title: "System commands:"},
	)

	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(fieldCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
