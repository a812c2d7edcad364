package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/foliotrack/foliotrack-backend/internal/adapter/httpapi"
	"github.com/foliotrack/foliotrack-backend/internal/adapter/marketdata"
	"github.com/foliotrack/foliotrack-backend/internal/adapter/repository/postgres"
	"github.com/foliotrack/foliotrack-backend/internal/config"
	"github.com/foliotrack/foliotrack-backend/internal/domain"
	"github.com/foliotrack/foliotrack-backend/internal/usecase/backfill"
	"github.com/foliotrack/foliotrack-backend/internal/usecase/ledger"
	"github.com/foliotrack/foliotrack-backend/internal/usecase/valuation"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	// 1. Database
	db, err := postgres.NewDB(cfg.DatabaseConnStr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// 2. Repositories
	transactionRepo := postgres.NewTransactionRepository(db)
	priceRepo := postgres.NewPriceRepository(db)
	instrumentRepo := postgres.NewInstrumentRepository(db)

	// 3. Usecases
	sourceFactory := marketdata.NewSourceFactory(cfg.MarketDataBaseURL, cfg.MarketDataAPIKey)
	coordinator := backfill.NewCoordinator(instrumentRepo, priceRepo, sourceFactory, log)
	valuationService := valuation.NewService(transactionRepo, priceRepo, instrumentRepo, coordinator, log)
	ledgerService := ledger.NewService(transactionRepo, instrumentRepo, log)

	// 4. Nightly price refresh for the whole instrument catalogue
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RefreshCron, func() {
		refreshPrices(instrumentRepo, coordinator, log)
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.RefreshCron).Msg("invalid price refresh cron spec")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 5. HTTP server
	handler := httpapi.NewHandler(valuationService, ledgerService, instrumentRepo, log)
	server := httpapi.NewServer(cfg.Port, cfg.APIToken, handler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(server, log)
}

// refreshPrices backfills every known instrument up to today
func refreshPrices(instrumentRepo domain.InstrumentRepository, coordinator *backfill.Coordinator, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	instruments, err := instrumentRepo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("price refresh: failed to list instruments")
		return
	}
	if len(instruments) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(instruments))
	for _, instrument := range instruments {
		ids = append(ids, instrument.ID)
	}

	today := domain.Day(time.Now())
	if err := coordinator.Ensure(ctx, ids, today.AddDate(0, -1, 0), today); err != nil {
		log.Error().Err(err).Msg("price refresh failed")
		return
	}
	log.Info().Int("instruments", len(ids)).Msg("price refresh completed")
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *httpapi.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}
