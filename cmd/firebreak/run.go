package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a new planning interview",
	Long:  `Asks why you want a plan, then walks through the risk and defence assessments and drafts your plan.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		metrics, _ := cmd.Flags().GetBool("metrics")

		err := cli.Run(cli.RunOptions{
			Flags:   flagsFrom(cmd),
			RunID:   sessionID,
			Fresh:   fresh,
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
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("session", "s", "", "Run ID to checkpoint under (default conversation_<unix-millis>)")
	runCmd.Flags().Bool("fresh", false, "Discard a stored run with the same ID first")
	runCmd.Flags().Int("max-visits", 25, "Maximum executions of one stage per invocation (0 is unbounded)")
	runCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on the configured address during the run")
}
