package cmd

import (
	"github.com/grovetools/core/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for agview.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"agview",
		"Agent transcript viewer with live follow",
	)
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newTailCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newFollowCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
