package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_desk_submissions_total",
			Help: "Total complaint submissions processed",
		},
		[]string{"status"},
	)

	SubmissionsByDepartment = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_desk_submissions_by_department_total",
			Help: "Stored complaints per assigned department",
		},
		[]string{"department"},
	)

	ClassificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complaint_desk_classification_duration_seconds",
			Help:    "Classification call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	ClassificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_desk_classification_failures_total",
			Help: "Classification calls that fell back to the default department",
		},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "complaint_desk_confidence_score",
			Help:    "Classification confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_desk_alerts_total",
			Help: "Low confidence admin alerts attempted",
		},
		[]string{"status"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_desk_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"type"},
	)
)

func Init() {
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(SubmissionsByDepartment)
	prometheus.MustRegister(ClassificationDuration)
	prometheus.MustRegister(ClassificationFailures)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(AlertsTotal)
	prometheus.MustRegister(LLMTokensUsed)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
