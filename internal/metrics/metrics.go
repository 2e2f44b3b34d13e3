// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorx_submissions_total",
			Help: "Total number of scored submissions",
		},
		[]string{"channel", "status"}, // channel: form|api, status: success|invalid|error
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardiorx_stage_duration_seconds",
			Help:    "Duration of one align/scale/predict/decode stage in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"stage"},
	)

	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorx_stage_failures_total",
			Help: "Total number of failed prediction stages",
		},
		[]string{"stage"},
	)

	UnseenCategories = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardiorx_unseen_categories_total",
			Help: "Categorical values with no indicator column in a stage schema",
		},
		[]string{"stage", "field"},
	)

	PredictionLogErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cardiorx_prediction_log_errors_total",
			Help: "Total number of prediction log writes that failed",
		},
	)
)

var once sync.Once

// Init registers all collectors with the default registry. Safe to call repeatedly.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(Submissions)
		prometheus.MustRegister(StageDuration)
		prometheus.MustRegister(StageFailures)
		prometheus.MustRegister(UnseenCategories)
		prometheus.MustRegister(PredictionLogErrors)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
