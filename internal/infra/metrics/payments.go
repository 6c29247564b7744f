package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		chargesCreatedTotal,
		chargeCreateFailures,
		verificationsTotal,
		paymentsRevenueCents,
	)
}

var (
	chargesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pix_charges_created_total",
			Help: "PIX charges created at the provider, by pack type.",
		},
		[]string{"pack"},
	)

	chargeCreateFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pix_charge_create_failures_total",
			Help: "Charge creations that failed at or before the provider.",
		},
	)

	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Verification outcomes by resolved status (pending/approved/rejected/cancelled/unknown/stale).",
		},
		[]string{"status"},
	)

	paymentsRevenueCents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_cents",
			Help: "Centavos of newly approved payments, by pack type.",
		},
		[]string{"pack"},
	)
)

func IncChargeCreated(pack string) {
	chargesCreatedTotal.WithLabelValues(norm(pack)).Inc()
}

func IncChargeCreateFailure() {
	chargeCreateFailures.Inc()
}

func IncVerification(status string) {
	verificationsTotal.WithLabelValues(norm(status)).Inc()
}

func AddRevenue(pack string, cents int64) {
	paymentsRevenueCents.WithLabelValues(norm(pack)).Add(float64(cents))
}
