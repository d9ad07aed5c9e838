package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardline_analysis_duration_seconds",
			Help:    "End-to-end message analysis duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardline_analyses_total",
			Help: "Total messages analyzed, by resulting risk level",
		},
		[]string{"risk_level"},
	)

	ClassifierFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardline_classifier_failures_total",
			Help: "Upstream classifier calls that failed and degraded to a zero default",
		},
		[]string{"classifier"},
	)

	AlertsTriggered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guardline_alerts_triggered_total",
			Help: "Analyses whose result warranted a guardian alert",
		},
	)

	ConversationLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardline_conversation_messages",
			Help:    "Number of messages per analyzed conversation",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	EscalationsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guardline_escalations_detected_total",
			Help: "Conversations whose recent risk significantly exceeds the older baseline",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardline_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardline_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(ClassifierFailures)
	prometheus.MustRegister(AlertsTriggered)
	prometheus.MustRegister(ConversationLength)
	prometheus.MustRegister(EscalationsDetected)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
