package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(paymentValidationsTotal)
}

var paymentValidationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_validations_total",
		Help: "Payment validations by outcome (confirmed/already_paid/failed).",
	},
	[]string{"outcome"},
)

func IncPaymentValidation(outcome string) {
	paymentValidationsTotal.WithLabelValues(norm(outcome)).Inc()
}
