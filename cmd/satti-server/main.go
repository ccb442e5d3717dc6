package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/signalsfoundry/satti-simulator/internal/api"
	"github.com/signalsfoundry/satti-simulator/internal/artifact"
	"github.com/signalsfoundry/satti-simulator/internal/audit"
	"github.com/signalsfoundry/satti-simulator/internal/auth"
	"github.com/signalsfoundry/satti-simulator/internal/config"
	"github.com/signalsfoundry/satti-simulator/internal/events"
	"github.com/signalsfoundry/satti-simulator/internal/imagery"
	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/internal/observability"
	"github.com/signalsfoundry/satti-simulator/internal/registry"
	"github.com/signalsfoundry/satti-simulator/internal/tasking"
	"github.com/signalsfoundry/satti-simulator/timectrl"
	"github.com/signalsfoundry/satti-simulator/web"
)

func main() {
	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "failed to load configuration", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	reg := registry.New()
	if cfg.SeedOnBoot {
		sats := reg.SeedSatellites()
		stations := reg.SeedGroundStations()
		log.Info(ctx, "seeded registry presets",
			logging.Int("satellites", len(sats)),
			logging.Int("ground_stations", len(stations)),
		)
	}

	artifacts, err := artifact.NewStore(filepath.Join(cfg.DataDir, "images"))
	if err != nil {
		log.Error(ctx, "failed to open artifact store", logging.String("error", err.Error()))
		os.Exit(1)
	}

	var trail *audit.Trail
	if cfg.AuditDBPath != "" {
		trail, err = audit.Open(cfg.AuditDBPath, log)
		if err != nil {
			log.Error(ctx, "failed to open audit trail", logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer trail.Close()
	}

	var bus *events.Bus
	if cfg.EventsEnabled {
		bus, err = events.NewBus(cfg.NATSPort, log)
		if err != nil {
			log.Error(ctx, "failed to start event bus", logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer bus.Close()
	}

	tileClient := &http.Client{Timeout: cfg.TileTimeout}
	fetcher := imagery.NewTileFetcher(tileClient, cfg.TileURLTemplate)
	generator := imagery.NewDispatcher(imagery.NewOptical(nil), imagery.NewSAR(nil), fetcher)

	commands := tasking.NewStore(nil)
	opts := []tasking.EngineOption{tasking.WithMetrics(collector)}
	if bus != nil {
		opts = append(opts, tasking.WithEventSink(bus))
	}
	if trail != nil {
		opts = append(opts, tasking.WithEventSink(trail))
	}
	engine := tasking.NewEngine(
		commands,
		reg,
		artifacts,
		generator,
		tasking.NewSampler(nil),
		timectrl.System(),
		cfg.Timing,
		log,
		opts...,
	)

	serverOpts := api.Options{
		Log:             log,
		Registry:        reg,
		Engine:          engine,
		Commands:        commands,
		Gate:            tasking.NewGate(commands, artifacts),
		Artifacts:       artifacts,
		Preview:         fetcher,
		Auth:            auth.New(cfg.APIKey, cfg.JWTSecret),
		Metrics:         collector,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.AllowedOrigins,
		Console:         web.Handler(),
	}
	if bus != nil {
		serverOpts.Events = bus
	}
	if trail != nil {
		serverOpts.History = trail
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewServer(serverOpts).Handler(),
	}

	log.Info(ctx, "starting tasking simulator", logging.String("addr", cfg.ListenAddr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = engine.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
