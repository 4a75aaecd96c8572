// Package view renders the site's HTML pages and the fragments the
// dashboard swaps in over XHR.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/embracingthegirlchild/site/internal/middleware"
	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/modules/storage/media"
	"github.com/embracingthegirlchild/site/internal/pkg/markdown"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var files embed.FS

const layout = "base"

// Renderer holds one template set per page, each parsed together with the
// layout and the partials.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// New parses every page under templates/.
func New() (*Renderer, error) {
	partials, err := template.New("partials").Funcs(Funcs()).ParseFS(files, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	entries, err := fs.ReadDir(files, "templates")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == "base.html" || path.Ext(e.Name()) != ".html" {
			continue
		}
		t, err := template.New(e.Name()).Funcs(Funcs()).ParseFS(files,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/"+e.Name(),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		pages[e.Name()] = t
	}
	return &Renderer{pages: pages, partials: partials}, nil
}

// MustNew is New for wiring code that cannot continue without templates.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Instance implements gin's HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = template.Must(template.New(layout).Parse(`template not found`))
	}
	return render.HTML{Template: t, Name: layout, Data: data}
}

// Fragment renders a partial by its defined name, e.g. "posts_table".
func (r *Renderer) Fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render writes page with the request-wide values every layout needs.
func Render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Authenticated"] = middleware.IsAuthenticated(c)
	data["Path"] = c.Request.URL.Path
	c.HTML(status, page, data)
}

// Funcs are available in every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"imageURL":      media.URL,
		"markdown":      markdown.Render,
		"excerpt":       markdown.Excerpt,
		"categoryLabel": func(c models.PostCategory) string { return c.Label() },
		"statusLabel":   func(s models.PostStatus) string { return s.Label() },
		"categories":    func() []models.PostCategory { return models.Categories },
		"statuses":      func() []models.PostStatus { return models.Statuses },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"datetime": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
		"year":     func() int { return time.Now().Year() },
		"lower":    strings.ToLower,
		"dict":     dict,
		"fieldError": func(errs validation.Errors, field string) string {
			return errs.First(field)
		},
		"active": func(current, target string) string {
			if current == target || (target != "/" && strings.HasPrefix(current, target)) {
				return "active"
			}
			return ""
		},
	}
}

// dict builds a map from alternating keys and values so partials can take
// more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
