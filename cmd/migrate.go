package cmd

import (
	"context"
	"fmt"
	"sort"

	"commerce-sync/core/config"
	"commerce-sync/core/logger"
	"commerce-sync/core/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCheck bool

// migrateCmd creates or updates the schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema",
	Long: `Creates or updates all tables. With --check nothing is changed; the
live columns are compared with the models instead.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateCheck, "check", false, "Only report missing columns")
	RootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	s, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	if !migrateCheck {
		if err := s.Migrate(ctx); err != nil {
			return err
		}
		l.Info("Schema migrated", zap.String("driver", cfg.Database.Driver))
		return nil
	}

	report, err := s.CheckSchema(ctx)
	if err != nil {
		return err
	}
	if len(report) == 0 {
		l.Info("Schema is up to date")
		return nil
	}

	tables := make([]string, 0, len(report))
	for table := range report {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		l.Warn("Missing columns", zap.String("table", table), zap.Strings("columns", report[table]))
	}
	return fmt.Errorf("schema check failed: %d tables out of date", len(report))
}
