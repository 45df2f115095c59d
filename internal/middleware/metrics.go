package middleware

import (
	"strconv"
	"time"

	"retailpos/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request latency per route template, so /v1/orders/:id is
// one series rather than one per order.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
