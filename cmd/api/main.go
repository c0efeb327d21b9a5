package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kofiapi/internal/adapter/repo"
	"kofiapi/internal/currency"
	httpapi "kofiapi/internal/http"
	"kofiapi/internal/http/handlers"
	"kofiapi/internal/infra"
	"kofiapi/internal/service"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.InsecureAdminSecret() {
		logger.Warn().Msg("ADMIN_SECRET_KEY is the placeholder value; fine for local use, never deploy like this")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	if err := infra.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	users := repo.NewUserRepository(pool)
	txns := repo.NewTransactionRepository(pool)
	guard := &service.Maintenance{}

	app := &handlers.App{
		Cfg:      cfg,
		Logger:   logger,
		Users:    users,
		Txns:     txns,
		Ingestor: service.NewIngestor(repo.NewIngestStore(pool), logger),
		Amounts:  service.NewAmounts(users, txns, currency.NewConverter(), logger),
		Backup:   service.NewBackup(repo.NewSnapshotStore(pool), guard, cfg.ProjectName, logger),
	}

	sweeper := service.NewSweeper(users, txns, cfg, guard, logger)
	go sweeper.Run(ctx)

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Msgf("%s listening on :%s", cfg.ProjectName, cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
