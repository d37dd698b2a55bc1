package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/data-reconciler-service/internal/cache"
	"github.com/cypherlabdev/data-reconciler-service/internal/combine"
	"github.com/cypherlabdev/data-reconciler-service/internal/config"
	"github.com/cypherlabdev/data-reconciler-service/internal/fetch"
	httpHandler "github.com/cypherlabdev/data-reconciler-service/internal/handler/http"
	"github.com/cypherlabdev/data-reconciler-service/internal/identity"
	"github.com/cypherlabdev/data-reconciler-service/internal/messaging"
	"github.com/cypherlabdev/data-reconciler-service/internal/provider"
	"github.com/cypherlabdev/data-reconciler-service/internal/provider/feed"
	"github.com/cypherlabdev/data-reconciler-service/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting data-reconciler-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load identity maps
	maps, err := identity.Load(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load identity maps")
	}

	// Create Redis game cache
	gameCache := cache.NewGameCache(
		cache.GameCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		},
		logger,
	)
	defer gameCache.Close()

	// Test Redis connection
	if err := gameCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	// Create persistent HTTP response cache
	responseStore, err := cache.NewResponseStore(cfg.Cache.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open response cache")
	}
	defer responseStore.Close()
	logger.Info().Str("path", cfg.Cache.Path).Msg("response cache ready")

	// Create fetch client over the proxy pool, with the feeds' cache-expiry
	// rules
	ttlRules, err := cfg.Pipeline.TTLRules()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid feed ttl rules")
	}
	fetchClient := fetch.NewClient(
		cfg.Fetch.ToFetchConfig(),
		responseStore,
		fetch.NewProxyPool(),
		ttlRules,
		logger,
	)

	// Create Kafka publisher
	publisher := messaging.NewKafkaPublisher(
		messaging.KafkaPublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		},
		logger,
	)
	defer publisher.Close()

	// Build the provider registry from configured feeds, in priority order
	registry := provider.NewRegistry()
	for _, f := range cfg.Pipeline.Feeds {
		registry.Register(feed.New(f.Name, f.URL, fetchClient, logger))
	}

	// Create reconciler service layer
	shutdown := &combine.Shutdown{}
	reconciler := service.NewReconcilerService(maps, gameCache, publisher, shutdown, logger)
	logger.Info().Int("feeds", registry.Len()).Msg("reconciler service initialized")

	// Initialize HTTP handler
	gamesHandler := httpHandler.NewGamesHandler(gameCache, logger)

	// Setup HTTP server routes
	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, gameCache)
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register API routes
	gamesHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Run the reconciliation pipeline in a goroutine
	pipelineErr := make(chan error, 1)
	go func() {
		pipelineErr <- runPipeline(ctx, cfg, registry, reconciler, logger)
	}()

	// Wait for interrupt signal or pipeline completion
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully...")
		shutdown.Request()
		cancel()
		if err := <-pipelineErr; err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("pipeline stopped with error")
			exitCode = 1
		}
	case err := <-pipelineErr:
		if err != nil {
			logger.Error().Err(err).Msg("pipeline failed")
			exitCode = 1
		} else {
			logger.Info().Msg("pipeline complete")
		}
	}

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
	return exitCode
}

// runPipeline reconciles every configured league over the configured season
// range. With no feeds or leagues configured the service stays up serving the
// read API only.
func runPipeline(
	ctx context.Context,
	cfg *config.Config,
	registry *provider.Registry,
	reconciler *service.ReconcilerService,
	logger zerolog.Logger,
) error {
	leagues, err := cfg.Pipeline.LeagueList()
	if err != nil {
		return err
	}
	years := cfg.Pipeline.YearList()

	if registry.Len() == 0 || len(leagues) == 0 || len(years) == 0 {
		logger.Warn().Msg("no pipeline workload configured, serving read API only")
		<-ctx.Done()
		return nil
	}

	jobs := make([]service.LeagueJob, 0, len(leagues))
	for _, league := range leagues {
		jobs = append(jobs, service.LeagueJob{
			League:   league,
			Years:    years,
			Registry: registry,
		})
	}

	return reconciler.Run(ctx, jobs)
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "data-reconciler").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, cache *cache.GameCache) {
	// Check Redis connection
	if err := cache.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Redis unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
