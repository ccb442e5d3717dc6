package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddlewareRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /satellites", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	handler := collector.Middleware(mux)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/satellites", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("GET", "GET /satellites", "200")); got != 1 {
		t.Fatalf("satti_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "satti_http_request_duration_seconds", map[string]string{
		"method": "GET",
		"route":  "GET /satellites",
	}); count != 1 {
		t.Fatalf("satti_http_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /uplink", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	handler := collector.Middleware(mux)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/uplink", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("POST", "POST /uplink", "422")); got != 1 {
		t.Fatalf("satti_http_requests_total error label = %v, want 1", got)
	}
}

func TestLifecycleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.RecordSubmission()
	collector.RecordSubmission()
	collector.RecordTransition("ACKED", false)
	collector.RecordTransition("DOWNLINK_READY", true)
	collector.RecordFailure("pre_capture")
	collector.ObserveGeneration("EO_OPTICAL", 120*time.Millisecond)

	if got := testutil.ToFloat64(collector.CommandsSubmitted); got != 2 {
		t.Fatalf("satti_commands_submitted_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.ActiveCommands); got != 1 {
		t.Fatalf("satti_active_commands = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CommandTransitions.WithLabelValues("ACKED")); got != 1 {
		t.Fatalf("satti_command_transitions_total{state=ACKED} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.CommandFailures.WithLabelValues("pre_capture")); got != 1 {
		t.Fatalf("satti_command_failures_total = %v, want 1", got)
	}

	collector.RecordRerun()
	if got := testutil.ToFloat64(collector.ActiveCommands); got != 2 {
		t.Fatalf("satti_active_commands after rerun = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.CommandsSubmitted); got != 2 {
		t.Fatalf("rerun must not count as a submission, got %v", got)
	}
	if count := histogramSampleCount(t, reg, "satti_product_generation_duration_seconds", map[string]string{
		"product_type": "EO_OPTICAL",
	}); count != 1 {
		t.Fatalf("satti_product_generation_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestMetricsHandlerExposesLifecycleSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	collector.RecordSubmission()
	collector.RecordTransition("CAPTURING", false)
	collector.HTTPRequests.WithLabelValues("GET", "GET /health", "200").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"satti_http_requests_total",
		"satti_commands_submitted_total",
		"satti_command_transitions_total",
		"satti_active_commands",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
