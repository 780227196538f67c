package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak/internal/cli"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Continue a suspended or failed interview",
	Long:  `Loads the last checkpoint of a run and continues at the stage it stopped at. A failed stage is retried.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		metrics, _ := cmd.Flags().GetBool("metrics")

		err := cli.Resume(cli.RunOptions{
			Flags:   flagsFrom(cmd),
			RunID:   args[0],
			Metrics: metrics,
			Styled:  styled(),
			In:      os.Stdin,
			Out:     os.Stdout,
		})
		if code := cli.Report(os.Stdout, err); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.Flags().Int("max-visits", 25, "Maximum executions of one stage per invocation (0 is unbounded)")
	resumeCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on the configured address during the run")
}
