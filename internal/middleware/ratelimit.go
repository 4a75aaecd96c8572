package middleware

import (
	"strconv"
	"time"

	"github.com/embracingthegirlchild/site/internal/pkg/redis"
	"github.com/embracingthegirlchild/site/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit allows max requests per client IP within window for the routes
// it guards. A nil client disables limiting; redis errors fail open.
func RateLimit(rdb *redis.Client, scope string, max int64, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		count, err := rdb.Hit(c.Request.Context(), "etgc:rate:"+scope+":"+ip, window)
		if err != nil {
			log.Warn("rate limit check failed", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if count > max {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
