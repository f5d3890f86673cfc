package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JobsProcessed  *prometheus.CounterVec
	RetryAttempts  prometheus.Counter
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveSearches prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		JobsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geomark_jobs_processed_total",
			Help: "Total number of processed address jobs by outcome.",
		}, []string{"outcome"}),
		RetryAttempts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geomark_retry_attempts_total",
			Help: "Total number of retry attempts after transient provider failures.",
		}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geomark_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geomark_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveSearches: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geomark_active_searches",
			Help: "Whether a batch search is currently running.",
		}),
	}
}
