package view

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/embracingthegirlchild/site/internal/models"
	"github.com/embracingthegirlchild/site/internal/pkg/pagination"
	"github.com/embracingthegirlchild/site/internal/pkg/validation"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, page := range []string{
		"index.html", "about.html", "videos.html", "contact.html", "gallery.html",
		"blog.html", "single-blog.html", "dashboard.html", "post_form.html",
		"post_delete.html", "login.html", "404.html",
	} {
		if _, ok := r.pages[page]; !ok {
			t.Fatalf("page %s not parsed", page)
		}
	}
}

func TestFragmentRendersRow(t *testing.T) {
	r := MustNew()
	p := models.PostModel{Title: "Row <Title>", Slug: "row-title", Status: models.StatusPublished, Views: 3, CommentCount: 2}
	p.ID = "abc"
	p.CreatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	html, err := r.Fragment("post_row", &p)
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	for _, want := range []string{`id="post-abc"`, "Row &lt;Title&gt;", "Published", "/post/row-title/edit/"} {
		if !strings.Contains(html, want) {
			t.Fatalf("fragment missing %q:\n%s", want, html)
		}
	}
}

func TestFragmentTableWithPagination(t *testing.T) {
	r := MustNew()
	page := &pagination.Page[models.PostModel]{Number: 1, NumPages: 2, Total: 11}
	html, err := r.Fragment("posts_table", map[string]any{"Page": page, "FilterQuery": template.URL("status=draft&")})
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	if !strings.Contains(html, "No posts match.") || !strings.Contains(html, "?status=draft&amp;page=2") {
		t.Fatalf("unexpected table:\n%s", html)
	}
}

func TestFieldError(t *testing.T) {
	fn := Funcs()["fieldError"].(func(validation.Errors, string) string)
	errs := validation.Errors{}
	errs.Add("title", "This field is required.")
	if got := fn(errs, "title"); got != "This field is required." {
		t.Fatalf("fieldError = %q", got)
	}
	if got := fn(nil, "title"); got != "" {
		t.Fatalf("fieldError on nil = %q", got)
	}
}
