package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bellhop/bellhop/internal/config"
	"github.com/bellhop/bellhop/internal/db"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Bellhop database",
		Long:  "Migrates all chatbot tables and seeds the account's settings row.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.yaml", "path to Bellhop config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config for account %q from %s\n", cfg.Account, configPath)

	gormDB, err := db.Connect(cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Database.Database, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedSettings(gormDB, cfg.Account); err != nil {
		return err
	}
	fmt.Fprintf(out, "Settings seeded for account %q\n", cfg.Account)

	fmt.Fprintln(out, "\nBellhop database initialized successfully.")
	return nil
}
