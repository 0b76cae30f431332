package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		prorationDiscountTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment verifications by outcome (verified/failed/replayed).",
		},
		[]string{"outcome"},
	)

	paymentsRevenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_revenue_minor_total",
			Help: "Total verified payment volume in minor currency units.",
		},
	)

	prorationDiscountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_proration_discount_minor_total",
			Help: "Total informational proration credit in minor currency units.",
		},
	)
)

func IncPayment(outcome string) {
	paymentsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddPaymentRevenue(amountMinor int64) {
	paymentsRevenueTotal.Add(float64(amountMinor))
}

func AddProrationDiscount(amountMinor int64) {
	prorationDiscountTotal.Add(float64(amountMinor))
}
