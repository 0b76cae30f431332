package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		accessCodeRedemptions,
		accessCodeUses,
	)
}

var (
	accessCodeRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_code_redemptions_total",
			Help: "Access code consume attempts by result (consumed/duplicate/expired/invalid).",
		},
		[]string{"result"},
	)

	accessCodeUses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "access_code_uses",
			Help: "Current redemption counter of the shared access code.",
		},
	)
)

func IncAccessCodeRedemption(result string) {
	accessCodeRedemptions.WithLabelValues(norm(result)).Inc()
}

func SetAccessCodeUses(n int) {
	accessCodeUses.Set(float64(n))
}
