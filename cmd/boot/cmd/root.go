// Package cmd implements the boot command line: running an application
// through its lifecycle and stopping a running one by name.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// OsExit is swapped out in tests.
var OsExit = os.Exit

// NewRootCommand creates the root command for the boot CLI
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Boot - run and stop lifecycle-managed applications",
		Long: `Boot runs an application through its lifecycle: bootstrap, environment,
context, refresh, started and finally stopped or failed.`,
		Version:       PrintVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewStopCommand())
	return cmd
}

// PrintVersion returns version information
func PrintVersion() string {
	return fmt.Sprintf("Boot CLI v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
