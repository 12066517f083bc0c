package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	riskAssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omamori_risk_assessments_total",
			Help: "Risk assessments persisted, by level",
		},
		[]string{"level"},
	)

	alertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omamori_alerts_raised_total",
			Help: "Alerts created, by type",
		},
		[]string{"type"},
	)

	alertTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omamori_alert_transitions_total",
			Help: "Alert status changes, by target status",
		},
		[]string{"to"},
	)

	outboxPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omamori_outbox_publish_total",
			Help: "Outbox relay publish attempts, by result",
		},
		[]string{"result"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omamori_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RiskAssessed(level string) {
	riskAssessmentsTotal.WithLabelValues(level).Inc()
}

func AlertRaised(alertType string) {
	alertsRaisedTotal.WithLabelValues(alertType).Inc()
}

func AlertTransitioned(to string) {
	alertTransitionsTotal.WithLabelValues(to).Inc()
}

func OutboxPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	outboxPublishTotal.WithLabelValues(result).Inc()
}

func OutboxDeadLettered() {
	outboxPublishTotal.WithLabelValues("dead").Inc()
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
