package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the planning graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the planning stages and their routes. With --session the run's next stage is highlighted.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")

		var app *cli.App
		if sessionID != "" {
			app = openApp(cmd)
			defer app.Close()
		}

		if err := cli.WriteGraph(cmd.Context(), app, sessionID, os.Stdout); err != nil {
			os.Exit(cli.Report(os.Stdout, err))
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight where this run stopped")
}
