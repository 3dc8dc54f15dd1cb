package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	uploadsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_uploads_started_total",
		Help: "Total document uploads started",
	})
	uploadsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_uploads_completed_total",
		Help: "Total document uploads that reached the graded stage",
	})
	uploadsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_uploads_failed_total",
		Help: "Total document uploads failed, by failed stage",
	}, []string{"stage"})
	logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})
	registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Successful registrations by permission",
	}, []string{"permission"})
	stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "document_pipeline_step_duration_ms",
		Help:    "Upload pipeline step duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	}, []string{"stage"})
	workerMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_total",
		Help: "Queue messages handled by the worker, by outcome",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(uploadsStarted, uploadsCompleted, uploadsFailed, logins, registrations, stageDuration, workerMessages)
}

// IncUploadStarted increments the started counter.
func IncUploadStarted() {
	uploadsStarted.Inc()
}

// IncUploadCompleted increments the completed counter.
func IncUploadCompleted() {
	uploadsCompleted.Inc()
}

// IncUploadFailed increments the failed counter for stage.
func IncUploadFailed(stage string) {
	uploadsFailed.WithLabelValues(stage).Inc()
}

// IncLogin records a login attempt; outcome is success, failure or unknown_email.
func IncLogin(outcome string) {
	logins.WithLabelValues(outcome).Inc()
}

// IncRegistration records a completed registration.
func IncRegistration(permission string) {
	registrations.WithLabelValues(permission).Inc()
}

// ObserveStageDurationMs records a pipeline step duration in milliseconds.
func ObserveStageDurationMs(stage string, value float64) {
	if value < 0 {
		value = 0
	}
	stageDuration.WithLabelValues(stage).Observe(value)
}

// IncWorkerMessage records a worker outcome: received, completed, failed or dropped.
func IncWorkerMessage(outcome string) {
	workerMessages.WithLabelValues(outcome).Inc()
}

// Registry exposes the collector registry, mainly for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
