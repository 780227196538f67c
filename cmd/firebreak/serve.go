package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/firebreak/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only inspection server",
	Long:  `Exposes stored runs, the planning graph and Prometheus metrics as a JSON API over HTTP.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err := cli.Serve(ctx, cli.ServeOptions{
			Flags:           flagsFrom(cmd),
			Addr:            ":" + port,
			ShutdownTimeout: 5 * time.Second,
		}, os.Stdout)
		if code := cli.Report(os.Stdout, err); code != 0 {
			stop()
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
