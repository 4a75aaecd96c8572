package middleware

import (
	"time"

	"github.com/embracingthegirlchild/site/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per matched route.
func Metrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
