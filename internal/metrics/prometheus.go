package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IdentifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecodex_identify_total",
			Help: "Total identify requests by outcome",
		},
		[]string{"outcome"},
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ecodex_pipeline_duration_seconds",
			Help:    "End-to-end identification pipeline duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	RecognizerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecodex_recognizer_failures_total",
			Help: "Total failed recognizer calls",
		},
	)

	SignalCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ecodex_signal_count",
			Help:    "Number of recognition signals per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	ResolverTierHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecodex_resolver_tier_hits_total",
			Help: "Alias resolutions by matching tier (or miss)",
		},
		[]string{"tier"},
	)

	AliasCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecodex_alias_cache_hits_total",
			Help: "Total alias cache hits",
		},
	)

	AliasCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecodex_alias_cache_misses_total",
			Help: "Total alias cache misses",
		},
	)

	PhotoUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecodex_photo_uploads_total",
			Help: "Photo upload attempts by status",
		},
		[]string{"status"},
	)

	ObservationInserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecodex_observation_inserts_total",
			Help: "Observation persistence attempts by status",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(IdentifyTotal)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(RecognizerFailures)
	prometheus.MustRegister(SignalCount)
	prometheus.MustRegister(ResolverTierHits)
	prometheus.MustRegister(AliasCacheHits)
	prometheus.MustRegister(AliasCacheMisses)
	prometheus.MustRegister(PhotoUploads)
	prometheus.MustRegister(ObservationInserts)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
