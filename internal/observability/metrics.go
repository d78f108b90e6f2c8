package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_http_requests_total",
			Help: "Total number of HTTP requests processed by the notifier service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifier_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	triggerEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_trigger_events_total",
			Help: "Total number of trigger events dispatched to reactors.",
		},
		[]string{"type", "outcome"},
	)
	notificationsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_notifications_sent_total",
			Help: "Total number of push notifications accepted by FCM.",
		},
	)
	notificationSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_notification_skips_total",
			Help: "Total number of notification sends skipped before delivery.",
		},
		[]string{"reason"},
	)
	notificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_notification_failures_total",
			Help: "Total number of failed FCM send attempts.",
		},
	)
	tokensPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_fcm_tokens_purged_total",
			Help: "Total number of stale FCM tokens removed from user profiles.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	amqpConsumeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_amqp_consume_errors_total",
			Help: "Total number of undecodable trigger deliveries.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		triggerEventsTotal,
		notificationsSentTotal,
		notificationSkipsTotal,
		notificationFailuresTotal,
		tokensPurgedTotal,
		amqpPublishErrorsTotal,
		amqpConsumeErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncTriggerEvent(eventType, outcome string) {
	triggerEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func IncNotificationSent() {
	notificationsSentTotal.Inc()
}

func IncNotificationSkip(reason string) {
	notificationSkipsTotal.WithLabelValues(reason).Inc()
}

func IncNotificationFailure() {
	notificationFailuresTotal.Inc()
}

func IncTokenPurged() {
	tokensPurgedTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncAMQPConsumeError() {
	amqpConsumeErrorsTotal.Inc()
}
