package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Job names used as label values.
const (
	JobCorrelation = "correlation"
	JobSimilarity  = "similarity"
)

// Result label values for per-company outcomes.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Recorder exposes the service's Prometheus metrics.
type Recorder struct {
	gatherer prometheus.Gatherer

	companiesProcessed *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
	jobLastSuccess     *prometheus.GaugeVec
	cacheLookups       *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpLatency        *prometheus.HistogramVec
	notificationsSent  *prometheus.CounterVec
	correlationScore   *prometheus.GaugeVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry creates a recorder on an explicit registry, so tests can
// build several without duplicate registration panics.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatherer: gatherer,
		companiesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundamentals_companies_processed_total",
				Help: "Companies processed by batch jobs, by outcome",
			},
			[]string{"job", "result"},
		),
		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundamentals_job_duration_seconds",
				Help:    "Duration of batch job runs in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
			},
			[]string{"job"},
		),
		jobLastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fundamentals_job_last_success_timestamp_seconds",
				Help: "Unix time of the last batch run that completed",
			},
			[]string{"job"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundamentals_cache_lookups_total",
				Help: "Analysis cache lookups, by kind and hit or miss",
			},
			[]string{"kind", "result"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundamentals_http_requests_total",
				Help: "HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundamentals_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		notificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundamentals_notifications_total",
				Help: "Telegram notifications attempted, by outcome",
			},
			[]string{"result"},
		),
		correlationScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fundamentals_correlation_all",
				Help: "Latest three-way correlation score per symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordCompany records the outcome of one company inside a batch job.
func (r *Recorder) RecordCompany(job, result string) {
	r.companiesProcessed.WithLabelValues(job, result).Inc()
}

// RecordJobRun records a finished batch run.
func (r *Recorder) RecordJobRun(job string, duration time.Duration, finishedAt time.Time) {
	r.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	r.jobLastSuccess.WithLabelValues(job).Set(float64(finishedAt.Unix()))
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordHTTPRequest records one served request.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordNotification records a Telegram send attempt.
func (r *Recorder) RecordNotification(success bool) {
	result := ResultOK
	if !success {
		result = ResultFailed
	}
	r.notificationsSent.WithLabelValues(result).Inc()
}

// RecordCorrelation stores the latest three-way correlation for symbol.
func (r *Recorder) RecordCorrelation(symbol string, score float64) {
	r.correlationScore.WithLabelValues(symbol).Set(score)
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
