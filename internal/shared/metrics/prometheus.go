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
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_extractions_total",
			Help: "Total number of assessment extraction attempts",
		},
		[]string{"outcome"},
	)

	extractionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_extraction_confidence",
			Help:    "Field-fill confidence score of successful extractions",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	completionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_request_duration_seconds",
			Help:    "Completion backend request duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"purpose"},
	)

	redactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "name_redactions_total",
			Help: "Total number of personal-name spans redacted from display text",
		},
		[]string{"source"},
	)

	plansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_plans_generated_total",
			Help: "Total number of support plans generated",
		},
		[]string{"mode"},
	)

	planFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_plan_fallbacks_total",
			Help: "Total number of narrative-synthesis failures that fell back to deterministic assembly",
		},
	)

	subjectsEnrolled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subjects_enrolled_total",
			Help: "Total number of subjects enrolled",
		},
	)

	reimportedNotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reimported_notes_total",
			Help: "Total number of legacy consultation notes imported",
		},
		[]string{"outcome"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes URL paths for metrics to avoid cardinality explosion
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// RecordExtraction records an extraction attempt outcome
// ("ok", "empty_input", "unavailable", "malformed").
func RecordExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

// RecordExtractionConfidence records the confidence score of a successful extraction
func RecordExtractionConfidence(confidence int) {
	extractionConfidence.Observe(float64(confidence))
}

// RecordCompletionDuration records a completion backend round trip
func RecordCompletionDuration(purpose string, duration time.Duration) {
	completionDuration.WithLabelValues(purpose).Observe(duration.Seconds())
}

// RecordRedactions records redacted name spans by source surface
func RecordRedactions(source string, count int) {
	if count > 0 {
		redactionsTotal.WithLabelValues(source).Add(float64(count))
	}
}

// RecordPlanGenerated records a generated plan by mode ("deterministic", "narrative")
func RecordPlanGenerated(mode string) {
	plansGenerated.WithLabelValues(mode).Inc()
}

// RecordPlanFallback records a narrative-synthesis fallback
func RecordPlanFallback() {
	planFallbacks.Inc()
}

// RecordSubjectEnrolled records a subject enrollment
func RecordSubjectEnrolled() {
	subjectsEnrolled.Inc()
}

// RecordReimportedNote records a legacy note import outcome
func RecordReimportedNote(outcome string) {
	reimportedNotes.WithLabelValues(outcome).Inc()
}
