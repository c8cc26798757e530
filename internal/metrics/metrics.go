package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FragmentLoads       *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec
	SuggestQueries      *prometheus.CounterVec
	ProviderErrors      prometheus.Counter
	RequestSeconds      *prometheus.HistogramVec
	Submissions         *prometheus.CounterVec
	SubmissionsInFlight prometheus.Gauge
	CacheLookups        *prometheus.CounterVec
	Deliveries          *prometheus.CounterVec
	ActiveWorkers       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FragmentLoads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_fragment_loads_total",
			Help: "Total number of fragment loads by outcome.",
		}, []string{"status"}),
		ValidationFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_validation_failures_total",
			Help: "Total number of failed field validations.",
		}, []string{"field"}),
		SuggestQueries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_suggest_queries_total",
			Help: "Total number of address suggestion queries by outcome.",
		}, []string{"status"}),
		ProviderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "hestia_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hestia_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		Submissions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_quote_submissions_total",
			Help: "Total number of quote submissions by outcome.",
		}, []string{"outcome"}),
		SubmissionsInFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hestia_quote_submissions_in_flight",
			Help: "Current number of submissions handed to the transport.",
		}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_suggestion_cache_lookups_total",
			Help: "Total number of suggestion cache lookups by result.",
		}, []string{"result"}),
		Deliveries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hestia_quote_deliveries_total",
			Help: "Total number of archived quotes re-sent by the delivery worker, by status.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hestia_delivery_active_workers",
			Help: "Current number of active delivery workers.",
		}),
	}
}
