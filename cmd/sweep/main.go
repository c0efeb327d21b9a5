// Command sweep runs one retention cycle against the configured database
// and exits. Useful for cron-style deployments and for forcing a purge
// after lowering a retention window.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kofiapi/internal/adapter/repo"
	"kofiapi/internal/infra"
	"kofiapi/internal/service"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweep: db connection failed")
	}
	defer pool.Close()

	if err := infra.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("sweep: failed to apply schema")
	}

	sweeper := service.NewSweeper(
		repo.NewUserRepository(pool),
		repo.NewTransactionRepository(pool),
		cfg,
		&service.Maintenance{},
		logger,
	)

	report := sweeper.Sweep(ctx)
	if report.Errors > 0 {
		os.Exit(1)
	}
}
