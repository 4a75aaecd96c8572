package app

import (
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsMiddleware allows the configured origins to call the dashboard's JSON
// endpoints with credentials. Patterns may be exact hosts, "*.example.org" or
// "host:*".
func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Requested-With", "Accept"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			host := originHost(origin)
			for _, pattern := range origins {
				if matchOrigin(pattern, host) {
					return true
				}
			}
			return false
		},
	})
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

func matchOrigin(pattern, host string) bool {
	pattern = originHost(strings.TrimSpace(pattern))
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
