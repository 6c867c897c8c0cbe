package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	reviewDecisionsTotal *prometheus.CounterVec
	transitionConflicts  prometheus.Counter
	uploadRequestsTotal  *prometheus.CounterVec
	uploadRejectedTotal  *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram
	cacheLookupsTotal    *prometheus.CounterVec
	notificationsTotal   *prometheus.CounterVec
	notificationClients  prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hub_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_activity_submissions_total",
			Help: "Activities submitted, by type.",
		}, []string{"type"})

		reviewDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_activity_reviews_total",
			Help: "Review decisions applied, by decision.",
		}, []string{"decision"})

		transitionConflicts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hub_activity_transition_conflicts_total",
			Help: "Reviews or deletes refused because the activity was no longer pending.",
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_proof_uploads_total",
			Help: "Proof documents stored, by MIME type.",
		}, []string{"mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_proof_uploads_rejected_total",
			Help: "Proof documents rejected, by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hub_proof_upload_latency_seconds",
			Help:    "Time spent validating and storing proof documents.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_view_cache_lookups_total",
			Help: "Portfolio and dashboard cache lookups, by view and result.",
		}, []string{"view", "result"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_notifications_published_total",
			Help: "Notifications delivered to local subscribers, by type.",
		}, []string{"type"})

		notificationClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hub_notification_clients_active",
			Help: "Connected notification stream clients.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			reviewDecisionsTotal,
			transitionConflicts,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
			cacheLookupsTotal,
			notificationsTotal,
			notificationClients,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions exposes the activity submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// ReviewDecisions exposes the review decision counter.
func ReviewDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewDecisionsTotal
}

// TransitionConflicts exposes the refused transition counter.
func TransitionConflicts() prometheus.Counter {
	RegisterMetrics()
	return transitionConflicts
}

// UploadRequests exposes the stored upload counter.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the rejected upload counter.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// CacheLookups exposes the view cache lookup counter.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

// NotificationsPublished exposes the notification delivery counter.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// NotificationClients exposes the connected stream client gauge.
func NotificationClients() prometheus.Gauge {
	RegisterMetrics()
	return notificationClients
}
