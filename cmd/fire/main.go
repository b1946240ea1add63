package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/openflank/fire/internal/adapters/http/api"
	"github.com/openflank/fire/internal/adapters/repository"
	service "github.com/openflank/fire/internal/app"
	"github.com/openflank/fire/internal/config"
	"github.com/openflank/fire/internal/domain/composite"
	"github.com/openflank/fire/internal/domain/delta"
	"github.com/openflank/fire/internal/domain/eligibility"
	"github.com/openflank/fire/internal/domain/model"
	"github.com/openflank/fire/internal/domain/window"
	"github.com/openflank/fire/pkg/logger"
	"github.com/openflank/fire/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// we collect our own system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open fact store", logger.Error(err))
		return
	}
	defer func() {
		_ = store.Close()
	}()

	svc := service.New(store, store,
		service.WithLogger(log.Named("service")),
		service.WithAggregator(window.New(window.WithWindowWeeks(cfg.WindowWeeks))),
		service.WithClassifier(eligibility.New(
			eligibility.WithBaseThresholds(cfg.RBBaseThreshold, cfg.BaseThreshold),
			eligibility.WithFloors(cfg.RBThresholdFloor, cfg.ThresholdFloor),
			eligibility.WithHighConfidenceFactor(cfg.HighConfidenceFactor),
		)),
		service.WithScorer(composite.New(
			composite.WithPillarWeights(cfg.PillarWeights["opportunity"], cfg.PillarWeights["role"], cfg.PillarWeights["conversion"]),
			composite.WithQBPillarWeights(cfg.QBPillarWeights["opportunity"], cfg.QBPillarWeights["role"]),
			composite.WithRoleWeights(model.PositionRB, cfg.RoleWeightsRB),
			composite.WithRoleWeights(model.PositionWR, cfg.RoleWeightsReceiver),
			composite.WithRoleWeights(model.PositionQB, cfg.RoleWeightsQB),
			composite.WithDynastyEPWeights(cfg.DynastyPassEPWeight, cfg.DynastyRushEPWeight),
		)),
		service.WithDeltaGenerator(delta.New(
			delta.WithZCutoff(cfg.DeltaZCutoff),
			delta.WithPercentileCutoff(cfg.DeltaPctCutoff),
		)),
	)

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.MaxDeltaLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes system gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
