// Package api exposes the tasking simulator over HTTP: registry CRUD, uplink
// submission, command status, product downloads and the operator console.
package api

import (
	"context"
	"net/http"

	"github.com/signalsfoundry/satti-simulator/internal/artifact"
	"github.com/signalsfoundry/satti-simulator/internal/audit"
	"github.com/signalsfoundry/satti-simulator/internal/auth"
	"github.com/signalsfoundry/satti-simulator/internal/imagery"
	"github.com/signalsfoundry/satti-simulator/internal/logging"
	"github.com/signalsfoundry/satti-simulator/internal/observability"
	"github.com/signalsfoundry/satti-simulator/internal/registry"
	"github.com/signalsfoundry/satti-simulator/internal/tasking"
	"github.com/signalsfoundry/satti-simulator/model"
)

// EventStream is the subset of the event bus the SSE endpoint needs. A nil
// stream disables the endpoint.
type EventStream interface {
	Subscribe(ctx context.Context) (<-chan model.CommandEvent, error)
}

// HistorySource reads the persisted transition log for one command. A nil
// source disables the history endpoint.
type HistorySource interface {
	History(ctx context.Context, commandID string) ([]audit.Entry, error)
}

// Options wires the server's collaborators. Registry, Engine, Commands, Gate,
// Artifacts and Auth are required; the rest degrade gracefully when absent.
type Options struct {
	Log       logging.Logger
	Registry  *registry.Registry
	Engine    *tasking.Engine
	Commands  *tasking.Store
	Gate      *tasking.Gate
	Artifacts *artifact.Store
	Preview   *imagery.TileFetcher
	Events    EventStream
	History   HistorySource
	Auth      *auth.Authenticator
	Metrics   *observability.Collector

	RateLimitPerMin int
	AllowedOrigins  []string

	// Console serves GET / and /static/. Nil falls back to a plain 404.
	Console http.Handler
}

// Server is the HTTP boundary of the simulator.
type Server struct {
	log       logging.Logger
	registry  *registry.Registry
	engine    *tasking.Engine
	commands  *tasking.Store
	gate      *tasking.Gate
	artifacts *artifact.Store
	preview   *imagery.TileFetcher
	events    EventStream
	history   HistorySource
	auth      *auth.Authenticator
	metrics   *observability.Collector
	console   http.Handler

	limiter        *ipLimiter
	allowedOrigins []string
}

// NewServer builds the server and its routing table.
func NewServer(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{
		log:            log,
		registry:       opts.Registry,
		engine:         opts.Engine,
		commands:       opts.Commands,
		gate:           opts.Gate,
		artifacts:      opts.Artifacts,
		preview:        opts.Preview,
		events:         opts.Events,
		history:        opts.History,
		auth:           opts.Auth,
		metrics:        opts.Metrics,
		console:        opts.Console,
		allowedOrigins: opts.AllowedOrigins,
	}
	if opts.RateLimitPerMin > 0 {
		s.limiter = newIPLimiter(opts.RateLimitPerMin)
	}
	return s
}

// Handler returns the complete middleware-wrapped routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	if s.console != nil {
		mux.Handle("GET /{$}", s.console)
		mux.Handle("GET /static/", s.console)
	}

	mux.HandleFunc("POST /satellites", s.handleCreateSatellite)
	mux.HandleFunc("GET /satellites", s.handleListSatellites)
	mux.HandleFunc("PATCH /satellites/{id}", s.handleUpdateSatellite)
	mux.HandleFunc("DELETE /satellites/{id}", s.handleDeleteSatellite)
	mux.HandleFunc("POST /seed/mock-satellites", s.handleSeedSatellites)
	mux.HandleFunc("GET /satellite-types", s.handleSatelliteTypes)

	mux.HandleFunc("POST /ground-stations", s.handleCreateGroundStation)
	mux.HandleFunc("GET /ground-stations", s.handleListGroundStations)
	mux.HandleFunc("PATCH /ground-stations/{id}", s.handleUpdateGroundStation)
	mux.HandleFunc("DELETE /ground-stations/{id}", s.handleDeleteGroundStation)
	mux.HandleFunc("POST /seed/mock-ground-stations", s.handleSeedGroundStations)

	mux.HandleFunc("POST /uplink", s.handleUplink)
	mux.HandleFunc("GET /commands", s.handleListCommands)
	mux.HandleFunc("GET /commands/{id}", s.handleGetCommand)
	mux.HandleFunc("POST /commands/{id}/rerun", s.handleRerunCommand)
	mux.HandleFunc("GET /commands/{id}/history", s.handleCommandHistory)

	mux.HandleFunc("GET /downloads/{id}", s.handleDownload)
	mux.HandleFunc("POST /downloads/{id}/save-local", s.handleSaveLocal)
	mux.HandleFunc("POST /images/clear", s.handleClearImages)

	mux.HandleFunc("GET /preview/external-map", s.handlePreview)
	mux.HandleFunc("GET /events", s.handleEvents)

	var h http.Handler = mux
	h = s.authMiddleware(h)
	h = s.rateLimitMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.logMiddleware(h)
	h = s.metrics.Middleware(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func errField(err error) logging.Field {
	return logging.String("error", err.Error())
}
