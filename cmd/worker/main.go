package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ncaam_v5/resolution/internal/cache"
	"ncaam_v5/resolution/internal/client"
	"ncaam_v5/resolution/internal/config"
	"ncaam_v5/resolution/internal/gate"
	"ncaam_v5/resolution/internal/metrics"
	"ncaam_v5/resolution/internal/repository"
	"ncaam_v5/resolution/internal/resolve"
	"ncaam_v5/resolution/internal/scheduler"
	"ncaam_v5/resolution/internal/seed"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NCAAM v5.0 Team Resolution Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("gate_timezone", cfg.GateTimezone).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize Barttorvik feed client
	torvik := client.NewTorvikClient(
		cfg.TorvikBaseURL,
		cfg.TorvikTimeout,
		cfg.TorvikMaxRetries,
	)
	log.Info().Msg("Barttorvik client initialized")

	// Initialize database connection
	dbConfig := repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize Redis client. Resolution works without it, just slower.
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		log.Info().Msg("Redis cache connected")
	}

	// Build the resolution service and load the in-memory index
	resolver := resolve.NewService(db, redisCache, time.Duration(cfg.CacheTTLResolution)*time.Second)
	if err := resolver.Rebuild(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to build resolution index")
	}

	// Readiness gate checker
	checker := gate.NewChecker(db, redisCache, cfg.GateLocation(), time.Duration(cfg.CacheTTLGate)*time.Second)

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))
	}

	// Update system uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				stat := db.Pool.Stat()
				metrics.UpdateDBConnectionStats(stat.AcquiredConns(), stat.IdleConns())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, torvik, db, resolver, checker, redisCache)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run initial ratings sync if enabled, so a cold registry is populated
	// before the first slate check.
	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial ratings sync...")
		if err := sched.SyncRatings(ctx); err != nil {
			log.Error().Err(err).Msg("Initial sync failed, continuing anyway...")
		} else {
			log.Info().Msg("Initial sync completed successfully")
		}
	}

	// Apply curated aliases after the sync so their canonical targets exist
	if cfg.SeedAliasesEnabled {
		log.Info().Str("source", cfg.SeedAliasSource).Msg("Applying curated alias seed...")
		if _, err := seed.Apply(ctx, db, resolver, cfg.SeedAliasSource); err != nil {
			log.Error().Err(err).Msg("Alias seeding failed, continuing anyway...")
		}
	}

	// One gate check at boot so the verdict for today is visible immediately
	if _, err := checker.Check(ctx, checker.Today()); err != nil {
		log.Warn().Err(err).Msg("Startup gate check failed")
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
