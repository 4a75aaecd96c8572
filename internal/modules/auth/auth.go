// Package auth serves the login and logout pages.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/embracingthegirlchild/site/internal/middleware"
	"github.com/embracingthegirlchild/site/internal/modules/user"
	"github.com/embracingthegirlchild/site/internal/pkg/response"
	sessionpkg "github.com/embracingthegirlchild/site/internal/pkg/session"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
	"github.com/embracingthegirlchild/site/internal/view"
	"github.com/gin-gonic/gin"
)

const (
	DefaultRedirect = "/dashboard/"
	msgBadLogin     = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

type LoginDTO struct {
	Username string `form:"username" binding:"required,max=150"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type Handler struct {
	users    *user.Service
	sessions *sessionpkg.Manager
	secure   bool
}

// NewHandler builds the handler; secure marks the session cookie Secure.
func NewHandler(users *user.Service, sessions *sessionpkg.Manager, secure bool) *Handler {
	return &Handler{users: users, sessions: sessions, secure: secure}
}

// RegisterRoutes mounts login and logout. loginMW runs in front of the
// login POST only.
func (h *Handler) RegisterRoutes(r gin.IRouter, loginMW ...gin.HandlerFunc) {
	r.GET(middleware.LoginPath, h.loginForm)
	r.POST(middleware.LoginPath, append(loginMW, h.login)...)
	r.POST("/logout/", h.logout)
}

// loginForm GET /login/
func (h *Handler) loginForm(c *gin.Context) {
	next := SafeNext(c.Query("next"))
	if middleware.IsAuthenticated(c) {
		response.Redirect(c, next)
		return
	}
	h.render(c, http.StatusOK, LoginDTO{Next: c.Query("next")}, validation.Errors{})
}

// login POST /login/
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if errs := validation.BindForm(c, &dto); errs.Any() {
		h.render(c, http.StatusOK, dto, errs)
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), dto.Username, dto.Password, c.ClientIP())
	if errors.Is(err, user.ErrInvalidCredentials) {
		errs := validation.Errors{}
		errs.Add(validation.NonFieldKey, msgBadLogin)
		h.render(c, http.StatusOK, dto, errs)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	token, _, err := h.sessions.Issue(u.ID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessions.TTL().Seconds()), "/", "", h.secure, true)
	response.Redirect(c, SafeNext(dto.Next))
}

// logout POST /logout/
func (h *Handler) logout(c *gin.Context) {
	if uid, sid := middleware.CurrentUserID(c), middleware.CurrentSessionID(c); uid != "" && sid != "" {
		if err := h.sessions.Revoke(uid, sid); err != nil {
			_ = c.Error(err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secure, true)
	response.Redirect(c, "/")
}

func (h *Handler) render(c *gin.Context, status int, dto LoginDTO, errs validation.Errors) {
	view.Render(c, status, "login.html", gin.H{
		"Username": dto.Username,
		"Next":     dto.Next,
		"Errors":   errs,
	})
}

// SafeNext accepts only same-site absolute paths and falls back to the
// dashboard.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return DefaultRedirect
	}
	return next
}
