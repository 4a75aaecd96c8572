// Package sitemap serves /sitemap.xml.
package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticPaths are listed before the posts, in this order.
var StaticPaths = []string{
	"/",
	"/about/",
	"/gallery/",
	"/videos/",
	"/contact/",
	"/blog/",
	"/dashboard/",
	"/login/",
	"/logout/",
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type Handler struct {
	db      *gorm.DB
	siteURL string
}

// NewHandler builds absolute URLs from siteURL, or from the request when
// siteURL is empty.
func NewHandler(db *gorm.DB, siteURL string) *Handler {
	return &Handler{db: db, siteURL: strings.TrimRight(strings.TrimSpace(siteURL), "/")}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/sitemap.xml", h.render)
}

func (h *Handler) render(c *gin.Context) {
	body, err := h.Build(c.Request.Context(), h.baseURL(c.Request))
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "error generating sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml", body)
}

// Build renders the sitemap with every URL rooted at base.
func (h *Handler) Build(ctx context.Context, base string) ([]byte, error) {
	var posts []models.PostModel
	err := h.db.WithContext(ctx).
		Select("slug", "updated_at").
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	set := urlSet{Xmlns: namespace, URLs: make([]url, 0, len(StaticPaths)+len(posts))}
	for _, p := range StaticPaths {
		set.URLs = append(set.URLs, url{Loc: base + p})
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, url{
			Loc:     base + "/blog/" + p.Slug + "/",
			LastMod: p.UpdatedAt.UTC().Format("2006-01-02"),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// baseURL falls back to the request host only when site_url is unset, which
// config validation allows outside production.
func (h *Handler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	return scheme + "://" + r.Host
}
