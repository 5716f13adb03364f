package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	cyclesRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_cycles_total",
			Help: "Total number of agent cycles, by classified problem and urgency",
		},
		[]string{"problem", "urgency"},
	)

	cycleFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_cycle_failures_total",
			Help: "Total number of agent cycles that failed and returned the prior snapshot",
		},
	)

	planEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_plan_entries_total",
			Help: "Total number of plan entries produced, by action kind",
		},
		[]string{"kind"},
	)

	escalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_escalations_total",
			Help: "Total number of escalations raised by the reasoner",
		},
	)

	trendAlertsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_trend_alerts_active",
			Help: "Number of trend alerts emitted by the most recent cycle",
		},
	)

	notificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications dispatched, by channel and status",
		},
		[]string{"channel", "status"},
	)

	reordersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reorders_created_total",
			Help: "Total number of reorder requests created",
		},
	)
)

// RecordCycle records the outcome of an agent cycle
func RecordCycle(problem, urgency string, trendAlerts int, escalated bool) {
	cyclesRunTotal.WithLabelValues(problem, urgency).Inc()
	trendAlertsActive.Set(float64(trendAlerts))
	if escalated {
		escalationsTotal.Inc()
	}
}

// RecordCycleFailure records a cycle that returned the previous snapshot
func RecordCycleFailure() {
	cycleFailuresTotal.Inc()
}

// RecordPlanEntry records a plan entry by action kind
func RecordPlanEntry(kind string) {
	planEntriesTotal.WithLabelValues(kind).Inc()
}

// RecordNotification records a dispatched notification
func RecordNotification(channel, status string) {
	notificationsSentTotal.WithLabelValues(channel, status).Inc()
}

// RecordReorder records a created reorder request
func RecordReorder() {
	reordersCreatedTotal.Inc()
}

// Middleware instruments HTTP handlers with request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// Handler returns the Prometheus metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
