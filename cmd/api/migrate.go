package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/observability"
	"github.com/devsanbid/bravo-test-sub001/internal/persistence"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if ctx == nil {
		ctx = context.Background()
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
}
