package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of firebreak",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("firebreak version %s\n", strings.TrimSpace(firebreak.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
