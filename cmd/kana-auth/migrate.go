package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/layer-3/kana-auth/adapters/postgres"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply or roll back the embedded PostgreSQL schema migrations.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, (*postgres.Migrator).Up)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations (drops all tables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd, (*postgres.Migrator).Down)
		},
	})

	return cmd
}

func runMigration(cmd *cobra.Command, apply func(*postgres.Migrator) error) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	migrator, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("failed to close migrator:", closeErr)
		}
	}()

	cmd.Println("Running migrations...")
	if err := apply(migrator); err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Migrations completed (version %d, dirty %t)\n", version, dirty)
	return nil
}

// databaseURLFromEnv reads DATABASE_URL from the environment or the env file.
// Migrations need no other settings, so the full config is not validated.
func databaseURLFromEnv() (string, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore missing file
	}
	v.AutomaticEnv()

	url := v.GetString("DATABASE_URL")
	if url == "" {
		return "", oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL is required")
	}
	return url, nil
}
