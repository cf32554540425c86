package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"MarketSignals/config"
	"MarketSignals/internal/handlers"
	"MarketSignals/internal/models"
	"MarketSignals/internal/operations/backtest"
	"MarketSignals/internal/operations/price"
	signalop "MarketSignals/internal/operations/signal"
	"MarketSignals/internal/repositories"
	"MarketSignals/internal/services/indicators"
	"MarketSignals/internal/services/scoring"
	"MarketSignals/internal/services/strategy"
	"MarketSignals/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	log.Info().Msg("Starting MarketSignals")

	// Setup database
	db := setupDatabase(cfg.Database, log)

	// Initialize repositories
	barRepo := repositories.NewBarRepository(db)
	signalRepo := repositories.NewSignalRepository(db)
	backtestRepo := repositories.NewBacktestRepository(db)

	// Build the strategy registry once from explicit configuration
	registry, err := strategy.NewRegistry(strategy.Config{
		InstrumentStrategies: cfg.Strategy.InstrumentStrategies,
		InstrumentClasses:    cfg.Strategy.InstrumentClasses,
		AssetClassDefaults:   cfg.Strategy.AssetClassDefaults,
		RSIOversold:          cfg.Strategy.RSIOversold,
		RSIOverbought:        cfg.Strategy.RSIOverbought,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid strategy configuration")
	}

	// Engine components
	indicatorSvc := indicators.NewService()
	indicatorCfg := indicators.DefaultConfig()
	scorer := scoring.NewScorer()
	generator := signalop.NewGenerator(indicatorSvc, indicatorCfg, registry, scorer, signalRepo, log)
	replayEngine := backtest.NewReplayEngine(indicatorSvc, indicatorCfg, registry, scorer, log)

	// Market data plumbing
	binanceClient := binance.NewClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey)
	fetcher := price.NewFetcher(binanceClient, log)
	recorder := price.NewRecorder(fetcher, barRepo, cfg.Instruments, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backfill history, replay it, and evaluate the latest bars once at startup
	backfillBars(ctx, fetcher, barRepo, cfg.Instruments, cfg.Engine.BackfillDays, log)
	replayAll(replayEngine, barRepo, backtestRepo, cfg.Instruments, fmt.Sprintf("%dd", cfg.Engine.BackfillDays), log)
	generateAll(generator, barRepo, cfg.Instruments, cfg.Engine.NotifyMinStrength, log)

	// Keep recording the latest daily bar
	go recorder.Start(ctx, time.Hour)

	// Scheduled live generation
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Engine.GenerateSchedule, func() {
		generateAll(generator, barRepo, cfg.Instruments, cfg.Engine.NotifyMinStrength, log)
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Engine.GenerateSchedule).Msg("Invalid generation schedule")
	}
	scheduler.Start()
	log.Info().Str("schedule", cfg.Engine.GenerateSchedule).Msg("Signal generation scheduled")

	// HTTP API
	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
	router.Mount("/signals", handlers.NewSignalHandler(signalRepo, log).Routes())
	router.Mount("/backtests", handlers.NewBacktestHandler(backtestRepo, log).Routes())
	router.Mount("/bars", handlers.NewBarHandler(barRepo, log).Routes())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Handle shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down...")
	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig, log zerolog.Logger) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	err = db.AutoMigrate(&models.Bar{}, &models.Signal{}, &models.BacktestSummary{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return db
}

func backfillBars(ctx context.Context, fetcher *price.Fetcher, barRepo *repositories.BarRepository, instruments []string, days int, log zerolog.Logger) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	for _, instrumentID := range instruments {
		bars, err := fetcher.FetchDaily(ctx, instrumentID, start, end)
		if err != nil {
			log.Error().Err(err).Str("instrument", instrumentID).Msg("Backfill fetch failed")
			continue
		}
		if err := barRepo.SaveBatch(bars); err != nil {
			log.Error().Err(err).Str("instrument", instrumentID).Msg("Backfill save failed")
			continue
		}
		log.Info().Str("instrument", instrumentID).Int("bars", len(bars)).Msg("Backfilled history")
	}
}

func replayAll(engine *backtest.ReplayEngine, barRepo *repositories.BarRepository, backtestRepo *repositories.BacktestRepository, instruments []string, rangeLabel string, log zerolog.Logger) {
	for _, instrumentID := range instruments {
		bars, err := barRepo.GetAll(instrumentID)
		if err != nil {
			log.Error().Err(err).Str("instrument", instrumentID).Msg("Replay load failed")
			continue
		}
		if len(bars) == 0 {
			continue
		}
		summary, err := engine.RunAndStore(instrumentID, bars, rangeLabel, backtestRepo)
		if err != nil {
			log.Error().Err(err).Str("instrument", instrumentID).Msg("Replay failed")
			continue
		}
		log.Info().
			Str("instrument", instrumentID).
			Int("trades", summary.Trades).
			Float64("win_rate", summary.WinRate).
			Float64("total_return", summary.TotalReturn).
			Msg("Backtest summary stored")
	}
}

func generateAll(generator *signalop.Generator, barRepo *repositories.BarRepository, instruments []string, notifyMinStrength int, log zerolog.Logger) {
	barsByInstrument := make(map[string][]models.Bar)
	for _, instrumentID := range instruments {
		bars, err := barRepo.GetAll(instrumentID)
		if err != nil {
			log.Error().Err(err).Str("instrument", instrumentID).Msg("Bar load failed")
			continue
		}
		if len(bars) == 0 {
			continue
		}
		barsByInstrument[instrumentID] = bars
	}

	results, failures := generator.GenerateBatch(barsByInstrument)
	for instrumentID, err := range failures {
		log.Error().Err(err).Str("instrument", instrumentID).Msg("Generation failed")
	}

	// Surface strong signals for the external notifier; delivery itself is
	// not this service's job.
	for _, result := range results {
		sig := result.Signal
		if sig.SignalType != models.SignalTypeHold && sig.Strength >= notifyMinStrength {
			log.Warn().
				Str("instrument", sig.InstrumentID).
				Str("signal", sig.SignalType).
				Int("strength", sig.Strength).
				Strs("reasoning", sig.Reasoning).
				Msg("Strong signal")
		}
	}
}
