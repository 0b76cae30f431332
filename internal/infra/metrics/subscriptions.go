package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsActive,
		subscriptionsExpired,
	)
}

var (
	subscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_active",
			Help: "Farmers with currently active access (paid or code bypass).",
		},
	)

	subscriptionsExpired = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_expired",
			Help: "Farmers whose paid access has lapsed.",
		},
	)
)

func SetSubscriptionCounts(active, expired int) {
	subscriptionsActive.Set(float64(active))
	subscriptionsExpired.Set(float64(expired))
}
