package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "partstream",
		Short: "Streaming multipart upload server",
		Long: `Partstream is a standalone server for bounded, streaming file uploads.

It accepts multipart POST requests, streams each file part to disk under a
configurable size ceiling with conflict-safe naming, and exposes Prometheus
metrics for the upload pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
