package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak/internal/cli"
	"github.com/aretw0/firebreak/internal/presentation/tui"
)

var rootCmd = &cobra.Command{
	Use:   "firebreak",
	Short: "Firebreak builds a bushfire survival plan through a guided interview",
	Long: `Firebreak assesses your bushfire risk and your capacity to defend, then drafts
a leave-early or stay-and-defend plan. Every answer is checkpointed, so an
interrupted interview can be resumed later.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default firebreak.yaml if present)")
	rootCmd.PersistentFlags().Bool("offline", false, "Use the scripted offline assistant instead of a model")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().String("store", "", "Checkpoint store: file, memory, redis or sqlite")
}

// flagsFrom collects the persistent flags.
func flagsFrom(cmd *cobra.Command) cli.Flags {
	configPath, _ := cmd.Flags().GetString("config")
	offline, _ := cmd.Flags().GetBool("offline")
	debug, _ := cmd.Flags().GetBool("debug")
	store, _ := cmd.Flags().GetString("store")

	maxVisits := -1
	if f := cmd.Flags().Lookup("max-visits"); f != nil && f.Changed {
		maxVisits, _ = cmd.Flags().GetInt("max-visits")
	}

	return cli.Flags{
		ConfigPath: configPath,
		Offline:    offline,
		Debug:      debug,
		Store:      store,
		MaxVisits:  maxVisits,
	}
}

// openApp opens the app for a store-only command or exits.
func openApp(cmd *cobra.Command) *cli.App {
	flags := flagsFrom(cmd)
	flags.StoreOnly = true
	app, err := cli.OpenApp(flags)
	if err != nil {
		os.Exit(cli.Report(os.Stdout, err))
	}
	return app
}

func styled() bool {
	return tui.IsTerminal(os.Stdout) && tui.IsTerminal(os.Stdin)
}
