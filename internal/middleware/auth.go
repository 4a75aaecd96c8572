package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/embracingthegirlchild/site/internal/pkg/response"
	sessionpkg "github.com/embracingthegirlchild/site/internal/pkg/session"
	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeySID    = "session_id"

	// SessionCookie carries the signed session token.
	SessionCookie = "etgc_session"

	LoginPath = "/login/"
)

// OptionalAuth sets the user when a valid session token is present, but
// never blocks the request.
func OptionalAuth(sessions *sessionpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if claims, err := sessions.Resolve(token); err == nil {
				c.Set(ContextKeyUserID, claims.UserID)
				c.Set(ContextKeySID, claims.SessionID)
			}
		}
		c.Next()
	}
}

// RequireLogin sends anonymous page requests to the login form, keeping the
// original path in ?next=. Asynchronous requests get a 401 instead.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Next()
			return
		}
		if response.WantsJSON(c) {
			response.Unauthorized(c)
			return
		}
		c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid session.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := NormalizeToken(c.GetHeader("Authorization")); auth != "" {
		return auth
	}
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie)
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
