// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dashstarter",
	Short: "dashstarter is a server-rendered admin/user dashboard starter",
	Long: `dashstarter is a server-rendered admin/user dashboard starter
that provides sign-up/sign-in pages, profile management with avatar upload,
and an admin panel for managing users and their role assignments.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
