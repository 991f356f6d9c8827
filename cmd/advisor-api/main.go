// Package main provides the entry point for the keiba advisor HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-advisor/internal/api"
	"github.com/yourusername/keiba-advisor/internal/config"
	"github.com/yourusername/keiba-advisor/internal/database"
	"github.com/yourusername/keiba-advisor/internal/datasource"
	"github.com/yourusername/keiba-advisor/internal/health"
	"github.com/yourusername/keiba-advisor/internal/logger"
	"github.com/yourusername/keiba-advisor/internal/metrics"
	"github.com/yourusername/keiba-advisor/internal/repository"
	"github.com/yourusername/keiba-advisor/internal/scheduler"
	"github.com/yourusername/keiba-advisor/internal/service"
	"github.com/yourusername/keiba-advisor/internal/strategy"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.ReloadFromEnv(cfg); err != nil {
		log.Fatalf("Failed to load config from %s_CONFIG_PATH: %v", config.EnvPrefix, err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Keiba advisor API starting")

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.WithError(err).Fatal("Keiba advisor API stopped with error")
	}
	appLog.Info("Keiba advisor API stopped")
}

func run(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) error {
	var (
		db    *database.DB
		repos *repository.Repositories
		err   error
	)

	if cfg.Database.Enabled {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		if repos, err = repository.NewRepositories(db); err != nil {
			return err
		}
		appLog.Info("Database connection established")
	} else {
		repos = repository.NewMemoryRepositories()
		appLog.Warn("Database disabled; purchase ledger is kept in memory")
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	source := datasource.NewPredictionSourceFromConfig(cfg.PredictionSource, appLog)
	engine := cfg.Strategy.Engine()
	recs := service.NewRecommendationService(
		strategy.NewRecommender(engine, strategy.NewRaceAnalyzer(), appLog),
		source,
		repos.Recommendation,
		service.NewRecommendationCache(cfg.CacheTTL(), cfg.Cache.MaxSize),
		cfg.Strategy.Defaults(),
		appLog,
	)
	ledger := service.NewPurchaseLedger(repos.Purchase, racingLocation(), appLog)

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Logger:      appLog,
		Source:      source,
	}
	if db != nil {
		healthCfg.DB = db
	}
	hc := health.NewHandler(healthCfg)

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(ledger, appLog)
		if err := sched.ScheduleLedgerRefresh(cfg.Scheduler.LedgerRefreshCron); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}
	if err := ledger.RefreshGauges(ctx); err != nil {
		appLog.WithError(err).Warn("Initial ledger refresh failed")
	}

	routerCfg := api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout(),
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.Metrics = metrics.Handler()
	}
	router := api.NewRouter(routerCfg, api.NewHandler(recs, ledger, engine, appLog), hc)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	hc.SetReady(true)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	}

	hc.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// racingLocation is the time zone purchase dates are recorded in
func racingLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}
