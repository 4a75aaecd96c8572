package post

import (
	"net/http"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/content/comment"
	"github.com/embracingthegirlchild/site/internal/pkg/response"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
	"github.com/embracingthegirlchild/site/internal/view"
	"github.com/gin-gonic/gin"
)

// Handler serves the public blog pages.
type Handler struct {
	svc      *Service
	comments *comment.Service
}

func NewHandler(svc *Service, comments *comment.Service) *Handler {
	return &Handler{svc: svc, comments: comments}
}

// RegisterRoutes mounts the home page and the blog. commentMW runs in front
// of comment submission only.
func (h *Handler) RegisterRoutes(r gin.IRouter, commentMW ...gin.HandlerFunc) {
	r.GET("/", h.home)
	r.GET("/blog/", h.list)
	r.GET("/blog/:slug/", h.detail)
	r.POST("/blog/:slug/", append(commentMW, h.comment)...)
}

// home GET /
func (h *Handler) home(c *gin.Context) {
	posts, err := h.svc.Latest(c.Request.Context(), HomeSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "index.html", gin.H{"Posts": posts})
}

// list GET /blog/?page=N
func (h *Handler) list(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Query("page"), PageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	view.Render(c, http.StatusOK, "blog.html", gin.H{"Page": page})
}

// detail GET /blog/:slug/
func (h *Handler) detail(c *gin.Context) {
	post, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := h.svc.IncrementViews(c.Request.Context(), post.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	post.Views++
	h.renderDetail(c, http.StatusOK, post, comment.CreateCommentDTO{}, validation.Errors{})
}

// comment POST /blog/:slug/
func (h *Handler) comment(c *gin.Context) {
	post, ok := h.lookup(c)
	if !ok {
		return
	}

	var dto comment.CreateCommentDTO
	if errs := validation.BindForm(c, &dto); errs.Any() {
		h.renderDetail(c, http.StatusOK, post, dto, errs)
		return
	}
	if _, err := h.comments.Create(c.Request.Context(), post.ID, &dto); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Redirect(c, DetailPath(post.Slug))
}

func (h *Handler) lookup(c *gin.Context) (*models.PostModel, bool) {
	post, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if post == nil {
		response.NotFound(c)
		return nil, false
	}
	return post, true
}

func (h *Handler) renderDetail(c *gin.Context, status int, post *models.PostModel, form comment.CreateCommentDTO, errs validation.Errors) {
	comments, err := h.comments.ListForPost(c.Request.Context(), post.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	view.Render(c, status, "single-blog.html", gin.H{
		"Post":     post,
		"Comments": comments,
		"Form":     form,
		"Errors":   errs,
	})
}

// DetailPath is the public URL path of a post.
func DetailPath(slug string) string {
	return "/blog/" + slug + "/"
}
