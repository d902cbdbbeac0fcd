// staticmock CLI - local static file mock server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "staticmock",
	Short: "staticmock serves local directories as a mock static file server",
	Long: `staticmock maps virtual URL paths to local directories and serves them
over HTTP for frontend development against static fixtures.

Mappings and server settings persist in a local SQLite database and are
managed through a loopback control API while the server runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
