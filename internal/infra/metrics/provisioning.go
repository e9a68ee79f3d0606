package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(provisioningTotal)
}

var provisioningTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "provisioning_attempts_total",
		Help: "Provisioning attempts by outcome (ok/validation/not_found/orphaned/conflict).",
	},
	[]string{"outcome"},
)

func IncProvisioning(outcome string) {
	provisioningTotal.WithLabelValues(norm(outcome)).Inc()
}
