package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsantori/tickerlens/internal/clients/yahoo"
	"github.com/jsantori/tickerlens/internal/config"
	"github.com/jsantori/tickerlens/internal/database"
	"github.com/jsantori/tickerlens/internal/modules/analysis"
	"github.com/jsantori/tickerlens/internal/modules/marketdata"
	"github.com/jsantori/tickerlens/internal/modules/prediction"
	"github.com/jsantori/tickerlens/internal/modules/workflows"
	"github.com/jsantori/tickerlens/internal/scheduler"
	"github.com/jsantori/tickerlens/internal/server"
	"github.com/jsantori/tickerlens/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootstrapLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting tickerlens")

	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create history directory")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Scoring configuration: built-in defaults unless a weights file is set
	scoringCfg := prediction.DefaultScoringConfig()
	if cfg.WeightsPath != "" {
		scoringCfg, err = prediction.LoadScoringConfig(cfg.WeightsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.WeightsPath).Msg("Failed to load scoring weights")
		}
		log.Info().Str("path", cfg.WeightsPath).Msg("Loaded scoring weights")
	}

	// Stores and services
	historyDB := marketdata.NewHistoryDB(cfg.HistoryDir, log)
	signalRepo := marketdata.NewSignalRepository(db.Conn(), log)
	analysisRepo := analysis.NewRepository(db.Conn(), log)
	workflowRepo := workflows.NewRepository(db.Conn(), log)

	predictionSvc := prediction.NewService(historyDB, signalRepo, scoringCfg, log)
	yahooClient := yahoo.NewClient(log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	priceSync := scheduler.NewPriceSyncJob(cfg.SyncSymbols, cfg.SyncPeriod, yahooClient, historyDB, log)
	if len(cfg.SyncSymbols) > 0 {
		if err := sched.AddJob(cfg.SyncSchedule, priceSync); err != nil {
			log.Fatal().Err(err).Msg("Failed to register price sync job")
		}
	}

	if err := registerWorkflowJobs(sched, workflowRepo, predictionSvc, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register workflow jobs")
	}

	// HTTP server
	srv := server.New(server.Deps{
		Config:     cfg,
		DB:         db,
		Log:        log,
		Prediction: prediction.NewHandlers(predictionSvc, log),
		Analysis:   analysis.NewHandlers(analysisRepo, predictionSvc, log),
		Workflows:  workflows.NewHandlers(workflowRepo, predictionSvc, log),
		MarketData: marketdata.NewHandlers(historyDB, signalRepo, log),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// registerWorkflowJobs schedules every enabled workflow that carries a
// cron expression. Workflows created after startup run via the manual
// run endpoint until the next restart.
func registerWorkflowJobs(
	sched *scheduler.Scheduler,
	repo *workflows.Repository,
	svc *prediction.Service,
	log zerolog.Logger,
) error {
	enabled, err := repo.ListEnabled()
	if err != nil {
		return err
	}

	for _, wf := range enabled {
		if wf.Schedule == "" {
			continue
		}
		job := workflows.NewJob(wf, repo, svc, log)
		if err := sched.AddJob(wf.Schedule, job); err != nil {
			log.Error().Err(err).Str("workflow", wf.Name).Str("schedule", wf.Schedule).
				Msg("Skipping workflow with invalid schedule")
		}
	}

	return nil
}
