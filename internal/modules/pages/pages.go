// Package pages serves the mostly static pages of the site.
package pages

import (
	"net/http"

	"github.com/embracingthegirlchild/site/internal/modules/content/post"
	"github.com/embracingthegirlchild/site/internal/pkg/response"
	"github.com/embracingthegirlchild/site/internal/view"
	"github.com/gin-gonic/gin"
)

// galleryLimit caps the photos shown on the gallery page.
const galleryLimit = 60

type Handler struct {
	posts *post.Service
}

func NewHandler(posts *post.Service) *Handler {
	return &Handler{posts: posts}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/about/", static("about.html"))
	r.GET("/videos/", static("videos.html"))
	r.GET("/contact/", static("contact.html"))
	r.GET("/gallery/", h.gallery)
}

func static(page string) gin.HandlerFunc {
	return func(c *gin.Context) {
		view.Render(c, http.StatusOK, page, nil)
	}
}

// gallery GET /gallery/
func (h *Handler) gallery(c *gin.Context) {
	images, err := h.posts.WithImages(c.Request.Context(), galleryLimit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "gallery.html", gin.H{"Images": images})
}
