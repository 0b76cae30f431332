package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		advisoriesTotal,
		modelCallDuration,
	)
}

var (
	advisoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisories_generated_total",
			Help: "Generated advisories by kind and response shape (structured/unstructured).",
		},
		[]string{"kind", "shape"},
	)

	modelCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_call_duration_seconds",
			Help:    "Latency of language-model completion calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
	)
)

func IncAdvisory(kind string, structured bool) {
	shape := "unstructured"
	if structured {
		shape = "structured"
	}
	advisoriesTotal.WithLabelValues(norm(kind), shape).Inc()
}

func ObserveModelCall(d time.Duration) {
	modelCallDuration.Observe(d.Seconds())
}
