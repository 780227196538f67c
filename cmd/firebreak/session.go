package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak/internal/cli"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored runs",
	Long:  `List, inspect, and remove the checkpoints of planning interviews.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored runs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp(cmd)
		defer app.Close()

		if err := cli.ListRuns(cmd.Context(), app, os.Stdout); err != nil {
			app.Close()
			os.Exit(cli.Report(os.Stdout, err))
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Print the checkpoint of a run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp(cmd)
		defer app.Close()

		if err := cli.InspectRun(cmd.Context(), app, os.Stdout, args[0]); err != nil {
			app.Close()
			os.Exit(cli.Report(os.Stdout, err))
		}
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more runs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp(cmd)
		defer app.Close()

		if err := cli.RemoveRuns(cmd.Context(), app, os.Stdout, args); err != nil {
			app.Close()
			os.Exit(cli.Report(os.Stdout, err))
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
