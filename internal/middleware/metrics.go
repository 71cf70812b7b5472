package middleware

import (
	"strconv"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.ObserveSince(metrics.HTTPLatency.WithLabelValues(route), start)
	}
}
