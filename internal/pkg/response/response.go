package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// IsXHR reports whether the request came from the dashboard's asynchronous
// UI, which sends the conventional X-Requested-With header.
func IsXHR(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("X-Requested-With"), "XMLHttpRequest")
}

// WantsJSON is true for asynchronous requests and clients that only accept
// JSON.
func WantsJSON(c *gin.Context) bool {
	if IsXHR(c) {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Success sends {"success": true} merged with extra fields.
func Success(c *gin.Context, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// ValidationFailed sends {"success": false, "errors": {...}} with status 400.
func ValidationFailed(c *gin.Context, errors map[string][]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "errors": errors})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": 0, "code": http.StatusUnauthorized, "message": "Authentication required"})
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": 0, "code": http.StatusTooManyRequests, "message": "Too many requests, slow down"})
}

// NotFound answers with the 404 page, or a JSON envelope for asynchronous
// and JSON-only clients.
func NotFound(c *gin.Context) {
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": 0, "code": http.StatusNotFound, "message": "Not Found"})
		return
	}
	c.HTML(http.StatusNotFound, "404.html", gin.H{"Path": c.Request.URL.Path})
	c.Abort()
}

// InternalError sends a 500 response without leaking err to the client.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": 0, "code": http.StatusInternalServerError, "message": "Internal Server Error"})
		return
	}
	c.AbortWithStatus(http.StatusInternalServerError)
	_, _ = c.Writer.WriteString("Internal Server Error")
}

// Redirect sends a 302 to location, the code browsers follow with GET after
// a form POST.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
