package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the application.
// promauto registers everything with the default registry at init time.

var (
	// ==================== HTTP METRICS ====================

	// HTTPRequestDuration tracks the duration of HTTP requests
	// Histogram allows us to calculate percentiles (P50, P95, P99)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsTotal counts total HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestsInFlight tracks currently processing requests
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== CACHE METRICS ====================

	// CacheHitsTotal counts profile page cache hits
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of profile cache hits",
		},
	)

	// CacheMissesTotal counts profile page cache misses
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of profile cache misses",
		},
	)

	// CacheOperationDuration tracks cache operation latency
	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"operation"}, // get, set, delete
	)

	// ==================== RATE LIMITING METRICS ====================

	// RateLimitedRequestsTotal counts rate-limited requests
	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		},
	)

	// RateLimitAllowedRequestsTotal counts allowed requests
	RateLimitAllowedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_allowed_requests_total",
			Help: "Total number of requests allowed by rate limiter",
		},
	)

	// ==================== BUSINESS METRICS ====================

	// ProfilesCreatedTotal counts anonymous profiles created
	ProfilesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profiles_created_total",
			Help: "Total number of profiles created",
		},
	)

	// LinksCreatedTotal counts links created
	LinksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Total number of links created",
		},
	)

	// ViewsRecordedTotal counts recorded page view events
	ViewsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "views_recorded_total",
			Help: "Total number of page view events recorded",
		},
	)

	// ClicksRecordedTotal counts recorded link click events
	ClicksRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clicks_recorded_total",
			Help: "Total number of click events recorded",
		},
	)

	// TrackingFailuresTotal counts analytics writes that soft-failed.
	// Tracking never fails a request, so this counter is the only way
	// dropped events surface.
	TrackingFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_failures_total",
			Help: "Total number of analytics events that failed to record",
		},
		[]string{"kind"}, // view, click
	)

	// UploadsTotal counts accepted file uploads
	UploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total number of accepted file uploads",
		},
	)

	// UploadRejectionsTotal counts rejected uploads by reason
	UploadRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_rejections_total",
			Help: "Total number of rejected file uploads",
		},
		[]string{"reason"}, // type, size, write
	)

	// ==================== DATABASE METRICS ====================

	// DatabaseQueryDuration tracks database query latency
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// DatabaseErrorsTotal counts database errors
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)
)

// RecordCacheHit increments the cache hit counter
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss increments the cache miss counter
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordProfileCreated increments the profile creation counter
func RecordProfileCreated() {
	ProfilesCreatedTotal.Inc()
}

// RecordLinkCreated increments the link creation counter
func RecordLinkCreated() {
	LinksCreatedTotal.Inc()
}

// RecordViewRecorded increments the view event counter
func RecordViewRecorded() {
	ViewsRecordedTotal.Inc()
}

// RecordClickRecorded increments the click event counter
func RecordClickRecorded() {
	ClicksRecordedTotal.Inc()
}

// RecordTrackingFailure increments the soft-failure counter for a kind
func RecordTrackingFailure(kind string) {
	TrackingFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordUpload increments the accepted upload counter
func RecordUpload() {
	UploadsTotal.Inc()
}

// RecordUploadRejected increments the rejected upload counter for a reason
func RecordUploadRejected(reason string) {
	UploadRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordRateLimited increments the rate-limited requests counter
func RecordRateLimited() {
	RateLimitedRequestsTotal.Inc()
}

// RecordRateLimitAllowed increments the allowed requests counter
func RecordRateLimitAllowed() {
	RateLimitAllowedRequestsTotal.Inc()
}
