package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command for the kana-auth CLI.
// Without a subcommand it runs the server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kana-auth",
		Short: "kana-auth - session service for the kana learning app",
		Long: `kana-auth handles captcha-gated registration, password login,
rotating refresh sessions and profile updates for the kana learning app.`,
		RunE:         runServe,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file to read")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
