package observability

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// Metrics holds the service's counters. A nil *Metrics records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	transitions  *CounterVec
	submissions  *Counter
	quotes       *CounterVec
	savedQuotes  *Counter
	workspaces   *Gauge
	pricingFails *Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("enroll_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"enroll_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		apiInflight:  NewGauge("enroll_api_inflight_requests", "In-flight API requests."),
		transitions:  NewCounterVec("enroll_wizard_transitions_total", "Wizard transitions by action/outcome.", []string{"action", "outcome"}),
		submissions:  NewCounter("enroll_applications_submitted_total", "Applications accepted for submission."),
		quotes:       NewCounterVec("enroll_quotes_total", "Quotes computed by source/funding.", []string{"source", "funding"}),
		savedQuotes:  NewCounter("enroll_quotes_saved_total", "Quotes saved by clients."),
		workspaces:   NewGauge("enroll_workspaces_active", "Client workspaces held in memory."),
		pricingFails: NewCounter("enroll_pricing_configuration_errors_total", "Quotes that referenced a course missing from the catalog."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.transitions,
		m.submissions,
		m.quotes,
		m.savedQuotes,
		m.workspaces,
		m.pricingFails,
	}
	for _, c := range writers {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(strings.ToUpper(method), route, status)
	m.apiLatency.Observe(dur.Seconds(), strings.ToUpper(method), route, status)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// IncTransition counts a wizard action (advance, retreat, submit, reset) by
// whether it went through.
func (m *Metrics) IncTransition(action string, ok bool) {
	if m == nil {
		return
	}
	outcome := "blocked"
	if ok {
		outcome = "ok"
	}
	m.transitions.Inc(action, outcome)
}

func (m *Metrics) IncSubmission() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}

func (m *Metrics) IncQuote(source, funding string) {
	if m == nil {
		return
	}
	m.quotes.Inc(source, funding)
}

func (m *Metrics) IncSavedQuote() {
	if m == nil {
		return
	}
	m.savedQuotes.Inc()
}

func (m *Metrics) IncPricingConfigError() {
	if m == nil {
		return
	}
	m.pricingFails.Inc()
}

func (m *Metrics) SetWorkspaces(n int) {
	if m == nil {
		return
	}
	m.workspaces.Set(float64(n))
}
