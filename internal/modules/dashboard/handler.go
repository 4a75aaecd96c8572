// Package dashboard is the authors' area: their own posts, filtered and
// paginated, and the forms to create, edit and delete them.
package dashboard

import (
	"html/template"
	"net/http"

	"github.com/embracingthegirlchild/site/internal/middleware"
	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/content/post"
	"github.com/embracingthegirlchild/site/internal/pkg/response"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
	"github.com/embracingthegirlchild/site/internal/view"
	"github.com/gin-gonic/gin"
)

const Path = "/dashboard/"

type Handler struct {
	svc   *Service
	posts *post.Service
	views *view.Renderer
}

func NewHandler(svc *Service, posts *post.Service, views *view.Renderer) *Handler {
	return &Handler{svc: svc, posts: posts, views: views}
}

// RegisterRoutes mounts the dashboard behind authMW.
func (h *Handler) RegisterRoutes(r gin.IRouter, authMW gin.HandlerFunc) {
	g := r.Group("", authMW)
	g.GET(Path, h.index)
	g.GET("/post/new/", h.newForm)
	g.POST("/post/new/", h.create)
	g.GET("/post/:slug/edit/", h.editForm)
	g.POST("/post/:slug/edit/", h.update)
	g.GET("/post/:slug/delete/", h.confirmDelete)
	g.POST("/post/:slug/delete/", h.delete)
}

// index GET /dashboard/?status=&category=&page=
func (h *Handler) index(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)
	filters := Filters{Status: c.Query("status"), Category: c.Query("category")}

	page, err := h.svc.List(ctx, userID, filters, c.Query("page"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	stats, err := h.svc.Stats(ctx, userID, filters)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	data := gin.H{
		"Page":          page,
		"Filters":       filters,
		"FilterQuery":   template.URL(filters.Query()),
		"TotalPosts":    stats.TotalPosts,
		"TotalViews":    stats.TotalViews,
		"TotalComments": stats.TotalComments,
	}
	if response.IsXHR(c) {
		html, err := h.views.Fragment("posts_table", data)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.Success(c, gin.H{"html": html})
		return
	}
	view.Render(c, http.StatusOK, "dashboard.html", data)
}

// newForm GET /post/new/
func (h *Handler) newForm(c *gin.Context) {
	h.renderForm(c, nil, PostForm{Status: string(models.StatusDraft)}, validation.Errors{})
}

// create POST /post/new/
func (h *Handler) create(c *gin.Context) {
	form, in, errs := bindPostForm(c)
	if errs.Any() {
		h.invalid(c, nil, form, errs)
		return
	}

	created, err := h.posts.Create(c.Request.Context(), middleware.CurrentUserID(c), in)
	if err != nil {
		if fieldErrs, ok := serviceErrors(err); ok {
			h.invalid(c, nil, form, fieldErrs)
			return
		}
		response.InternalError(c, err)
		return
	}
	h.saved(c, created)
}

// editForm GET /post/:slug/edit/
func (h *Handler) editForm(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	h.renderForm(c, p, formFromPost(p), validation.Errors{})
}

// update POST /post/:slug/edit/
func (h *Handler) update(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	form, in, errs := bindPostForm(c)
	if errs.Any() {
		h.invalid(c, p, form, errs)
		return
	}
	if err := h.posts.Update(c.Request.Context(), p, in); err != nil {
		if fieldErrs, ok := serviceErrors(err); ok {
			h.invalid(c, p, form, fieldErrs)
			return
		}
		response.InternalError(c, err)
		return
	}
	h.saved(c, p)
}

// confirmDelete GET /post/:slug/delete/
func (h *Handler) confirmDelete(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	view.Render(c, http.StatusOK, "post_delete.html", gin.H{"Post": p})
}

// delete POST /post/:slug/delete/
func (h *Handler) delete(c *gin.Context) {
	p, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), p); err != nil {
		response.InternalError(c, err)
		return
	}
	if response.IsXHR(c) {
		response.Success(c, nil)
		return
	}
	response.Redirect(c, Path)
}

// owned resolves :slug among the current user's posts. Anything else,
// including another author's post, is a 404.
func (h *Handler) owned(c *gin.Context) (*models.PostModel, bool) {
	p, err := h.posts.GetOwned(c.Request.Context(), c.Param("slug"), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if p == nil {
		response.NotFound(c)
		return nil, false
	}
	return p, true
}

func (h *Handler) saved(c *gin.Context, p *models.PostModel) {
	if !response.IsXHR(c) {
		response.Redirect(c, Path)
		return
	}
	counts, err := h.posts.CommentCounts(c.Request.Context(), []string{p.ID})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	p.CommentCount = counts[p.ID]
	html, err := h.views.Fragment("post_row", p)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"html": html})
}

func (h *Handler) invalid(c *gin.Context, p *models.PostModel, form PostForm, errs validation.Errors) {
	if response.IsXHR(c) {
		response.ValidationFailed(c, errs)
		return
	}
	h.renderForm(c, p, form, errs)
}

func (h *Handler) renderForm(c *gin.Context, p *models.PostModel, form PostForm, errs validation.Errors) {
	action := "/post/new/"
	if p != nil {
		action = "/post/" + p.Slug + "/edit/"
	}
	view.Render(c, http.StatusOK, "post_form.html", gin.H{
		"Post":   p,
		"Form":   form,
		"Errors": errs,
		"Action": action,
	})
}
