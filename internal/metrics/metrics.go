package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LoadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "loads_total",
			Help:      "Completed balance loads",
		},
	)

	PaymentsInitiatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "payments_initiated_total",
			Help:      "Payment sessions created",
		},
	)

	PaymentsConfirmedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wallet",
			Name:      "payments_confirmed_total",
			Help:      "Payment confirmation attempts by outcome",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(LoadsTotal, PaymentsInitiatedTotal, PaymentsConfirmedTotal)
}

// ObserveConfirm records a confirmation attempt outcome.
func ObserveConfirm(result string) {
	PaymentsConfirmedTotal.WithLabelValues(result).Inc()
}
