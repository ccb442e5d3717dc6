package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus metrics for the HTTP surface and the
// command lifecycle, and provides helpers to wire them into handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	CommandsSubmitted  prometheus.Counter
	CommandTransitions *prometheus.CounterVec
	CommandFailures    *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ActiveCommands     prometheus.Gauge
}

// NewCollector registers simulator Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satti_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"})
	requests, err := registerCounterVec(reg, requests, "satti_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "satti_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})
	durations, err = registerHistogramVec(reg, durations, "satti_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "satti_commands_submitted_total",
		Help: "Total number of accepted tasking commands.",
	})
	submitted, err = registerCounter(reg, submitted, "satti_commands_submitted_total")
	if err != nil {
		return nil, err
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satti_command_transitions_total",
		Help: "Total number of command state transitions, labeled by target state.",
	}, []string{"state"})
	transitions, err = registerCounterVec(reg, transitions, "satti_command_transitions_total")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satti_command_failures_total",
		Help: "Total number of failed commands, labeled by failure checkpoint.",
	}, []string{"checkpoint"})
	failures, err = registerCounterVec(reg, failures, "satti_command_failures_total")
	if err != nil {
		return nil, err
	}

	generation := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "satti_product_generation_duration_seconds",
		Help:    "Wall-clock time spent generating image products, labeled by product type.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"product_type"})
	generation, err = registerHistogramVec(reg, generation, "satti_product_generation_duration_seconds")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "satti_active_commands",
		Help: "Current number of commands in a non-terminal state.",
	}), "satti_active_commands")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:           gatherer,
		HTTPRequests:       requests,
		HTTPDurations:      durations,
		CommandsSubmitted:  submitted,
		CommandTransitions: transitions,
		CommandFailures:    failures,
		GenerationDuration: generation,
		ActiveCommands:     active,
	}, nil
}

// Middleware records request counts and durations for HTTP handlers. The
// route label comes from the matched pattern so per-resource IDs do not
// explode the label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c == nil {
			return
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(r.Method, route, fmt.Sprintf("%d", rec.code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordSubmission counts an accepted command and bumps the active gauge.
func (c *Collector) RecordSubmission() {
	if c == nil {
		return
	}
	if c.CommandsSubmitted != nil {
		c.CommandsSubmitted.Inc()
	}
	if c.ActiveCommands != nil {
		c.ActiveCommands.Inc()
	}
}

// RecordRerun bumps the active gauge for a failed command re-entering the
// pipeline. Reruns are not counted as new submissions.
func (c *Collector) RecordRerun() {
	if c == nil || c.ActiveCommands == nil {
		return
	}
	c.ActiveCommands.Inc()
}

// RecordTransition counts a state transition and keeps the active gauge in
// step when the command reaches a terminal state.
func (c *Collector) RecordTransition(state string, terminal bool) {
	if c == nil {
		return
	}
	if c.CommandTransitions != nil {
		c.CommandTransitions.WithLabelValues(state).Inc()
	}
	if terminal && c.ActiveCommands != nil {
		c.ActiveCommands.Dec()
	}
}

// RecordFailure counts a command failure at the named checkpoint.
func (c *Collector) RecordFailure(checkpoint string) {
	if c == nil || c.CommandFailures == nil {
		return
	}
	c.CommandFailures.WithLabelValues(checkpoint).Inc()
}

// ObserveGeneration records the wall-clock cost of producing an image product.
func (c *Collector) ObserveGeneration(productType string, d time.Duration) {
	if c == nil || c.GenerationDuration == nil {
		return
	}
	c.GenerationDuration.WithLabelValues(productType).Observe(d.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush passes through so streaming handlers behind the middleware keep
// working.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
