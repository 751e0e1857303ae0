package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/chironhq/chiron/internal/adapters/classifier"
	"github.com/chironhq/chiron/internal/adapters/http/api"
	"github.com/chironhq/chiron/internal/config"
	"github.com/chironhq/chiron/internal/domain/scoring"
	"github.com/chironhq/chiron/internal/engine"
	"github.com/chironhq/chiron/pkg/logger"
	"github.com/chironhq/chiron/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own custom system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	scorer, err := scoring.NewScorer(
		scoring.WithWeights(scoring.Weights{
			Subject:      cfg.SubjectWeight,
			Experience:   cfg.ExperienceWeight,
			Availability: cfg.AvailabilityWeight,
			Location:     cfg.LocationWeight,
			Workload:     cfg.WorkloadWeight,
		}),
		scoring.WithSubjectStrategy(scoring.SubjectStrategy(cfg.SubjectStrategy)),
		scoring.WithMaxExperienceDiff(cfg.MaxExperienceDiff),
		scoring.WithMaxWorkload(cfg.MaxWorkload),
	)
	if err != nil {
		os.Stderr.WriteString("failed to build scorer: " + err.Error() + "\n")
		return
	}

	// The Gemini classifier needs an API key; without one the static
	// keyword classifier keeps the service functional.
	cls, err := buildClassifier(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to build classifier: " + err.Error() + "\n")
		return
	}

	// Create and start the engine with configuration options
	eng := engine.New(
		engine.WithLogger(loggerInstance),
		engine.WithScorer(scorer),
		engine.WithClassifier(cls),
		engine.WithWorkerCount(cfg.WorkerCount),
		engine.WithQueueSize(cfg.ProfileQueueSize),
		engine.WithDedupeSize(cfg.DedupeSize),
		engine.WithMinCandidateScore(cfg.MinCandidateScore),
		engine.WithOfflineCandidateLimit(cfg.OfflineCandidateLimit),
		engine.WithCandidateCache(cfg.CandidateCacheSize, time.Duration(cfg.CandidateCacheTTLSeconds)*time.Second),
	)
	if err := eng.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		return
	}
	defer eng.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(eng).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildClassifier selects Gemini when an API key is configured, otherwise
// the static keyword classifier.
func buildClassifier(ctx context.Context, cfg *config.Config) (classifier.Classifier, error) {
	if cfg.GeminiAPIKey == "" {
		return classifier.NewStatic(nil), nil
	}
	return classifier.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
