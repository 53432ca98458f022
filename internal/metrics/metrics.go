package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Payment lifecycle
	InitiationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Payment initiations by result",
		},
		[]string{"result"}, // ok|validation_error|gateway_error|network_error
	)
	StatusChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_status_checks_total",
			Help: "Status polls by mapped outcome",
		},
		[]string{"outcome"}, // SUCCESS|PENDING|FAILED|error
	)
	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Webhook notifications by verification result",
		},
		[]string{"result"}, // ok|signature_mismatch|malformed
	)

	// Worker queue feeding async outcome application
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(InitiationsTotal)
	prometheus.MustRegister(StatusChecksTotal)
	prometheus.MustRegister(WebhooksTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
