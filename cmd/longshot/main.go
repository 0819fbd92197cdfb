// Package main provides the entry point for the longshot estimation service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/longshot/internal/api"
	"github.com/yourusername/longshot/internal/cache"
	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/config"
	"github.com/yourusername/longshot/internal/engine"
	"github.com/yourusername/longshot/internal/fallback"
	"github.com/yourusername/longshot/internal/health"
	"github.com/yourusername/longshot/internal/logger"
	"github.com/yourusername/longshot/internal/metrics"
	"github.com/yourusername/longshot/internal/oddsfeed"
	"github.com/yourusername/longshot/internal/provider"
	"github.com/yourusername/longshot/internal/roster"
	"github.com/yourusername/longshot/internal/scheduler"
	"github.com/yourusername/longshot/internal/store"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "longshot",
	Short: "Calibrated betting-odds estimates for sports hypotheticals",
	Long: `Longshot turns free-text NFL hypotheticals into calibrated probability
estimates with American odds, using market anchors where a real market
exists and structured priors everywhere else.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate <prompt>",
	Short: "Price a single hypothetical and print the estimate as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(args[0])
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the estimation HTTP API with background refresh jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("longshot %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

// buildEngine wires the shared estimation pipeline. The returned feed and
// store may be nil when the corresponding config sections are absent.
func buildEngine(ctx context.Context) (*engine.Engine, *roster.Index, *oddsfeed.Feed, *store.DB, error) {
	httpClient := provider.NewRateLimitedHTTPClient(cfg.HTTP, appLog)

	rosterProvider := roster.NewProvider(cfg.Roster, httpClient, appLog)
	ix := roster.NewIndex(rosterProvider, appLog)
	if err := ix.Refresh(ctx); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("initial roster refresh failed: %w", err)
	}
	metrics.RosterLastRefresh.Set(float64(time.Now().Unix()))

	calib, err := calibration.Load(cfg.Calibration.Path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load calibration bundle: %w", err)
	}
	logger.NewAuditLogger(appLog).LogCalibrationLoad(calib.Version, calib.Signature(), cfg.Calibration.Path)

	cacheMgr := cache.NewManager(cfg.Cache, time.Now, appLog)

	opts := engine.Options{}

	var feed *oddsfeed.Feed
	if cfg.OddsFeed.APIKey != "" {
		feed = oddsfeed.NewFeed(cfg.OddsFeed, httpClient, appLog)
		if err := feed.Refresh(ctx); err != nil {
			appLog.WithError(err).Warn("Initial odds refresh failed; continuing without market anchors")
		} else {
			metrics.OddsLastRefresh.Set(float64(time.Now().Unix()))
		}
		opts.Markets = feed
	}

	if cfg.Fallback.Enabled {
		opts.Gateway = fallback.NewGateway(cfg.Fallback, httpClient, appLog)
	}

	var db *store.DB
	if cfg.Features.StablePersistenceEnabled {
		db, err = store.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		repo := store.NewStableRepository(db)
		entries, err := repo.LoadAll(ctx, 1000)
		if err != nil {
			appLog.WithError(err).Warn("Failed to load persisted stable estimates")
		} else {
			for _, entry := range entries {
				cacheMgr.SeedStable(entry)
			}
			appLog.WithField("entries", len(entries)).Info("Stable cache seeded from database")
		}
		opts.Store = repo
	}

	eng := engine.New(ix, calib, cacheMgr, appLog, opts)
	return eng, ix, feed, db, nil
}

func runEstimate(prompt string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eng, _, _, db, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	est := eng.Estimate(ctx, prompt)

	out, err := json.MarshalIndent(est, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode estimate: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runServe() error {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Longshot estimation service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, 2*time.Minute)
	eng, ix, feed, db, err := buildEngine(startCtx)
	startCancel()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Background refresh jobs
	sched := scheduler.NewScheduler(ix, feed, appLog)
	if err := sched.ScheduleRosterRefresh(cfg.Scheduler.RosterRefreshCron); err != nil {
		return err
	}
	if feed != nil {
		if err := sched.ScheduleOddsRefresh(cfg.Scheduler.OddsRefreshCron); err != nil {
			return err
		}
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// Health endpoints
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      appLog,
		DB:          dbPinger(db),
		Roster:      ix,
	})
	if err := healthSrv.Start(ctx); err != nil {
		return err
	}

	// Metrics endpoint
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	// Estimation API
	apiSrv := api.NewServer(cfg.Server.Address, eng, appLog)
	errCh := make(chan error, 1)
	go func() {
		errCh <- apiSrv.Start()
	}()

	healthSrv.SetReady(true)
	appLog.WithField("addr", cfg.Server.Address).Info("Longshot is serving estimates")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("API server failed")
		}
	}

	healthSrv.SetReady(false)
	cancel()

	shutdownSeconds := cfg.Server.ShutdownSeconds
	if shutdownSeconds <= 0 {
		shutdownSeconds = 10
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownSeconds)*time.Second)
	defer shutdownCancel()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Error during API shutdown")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error during metrics shutdown")
		}
	}

	appLog.Info("Longshot shut down successfully")
	return nil
}

// dbPinger converts a possibly-nil *store.DB into the health interface
// without tripping the typed-nil pitfall.
func dbPinger(db *store.DB) health.DatabasePinger {
	if db == nil {
		return nil
	}
	return db
}
