package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(moduleSyncsTotal, modulesEnabled)
}

var (
	moduleSyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "module_syncs_total",
			Help: "Workspace module synchronizations by outcome.",
		},
		[]string{"outcome"},
	)

	modulesEnabled = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "module_sync_modules_enabled",
			Help:    "Number of modules enabled per sync.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
	)
)

func IncModuleSync(outcome string) {
	moduleSyncsTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveModulesEnabled(n int) {
	modulesEnabled.Observe(float64(n))
}
