// internal/pkg/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// EventsEmitted 记录每次事件投递的结果，result 取值 delivered / failed。
	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_emitted_total",
		Help: "Event envelopes handed to a transport.",
	}, []string{"kind", "transport", "result"})

	AuditRecordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_records_written_total",
		Help: "Audit records written to the event log.",
	}, []string{"kind"})

	OutboxPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_pending_entries",
		Help: "Pending outbox entries seen by the last dispatcher sweep.",
	})
)

// Middleware 统计请求数和耗时，route 使用 gin 的路由模板避免高基数。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
