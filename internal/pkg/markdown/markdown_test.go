package markdown

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out := string(Render("# Title\n\nSome **bold** text"))
	if !strings.Contains(out, "<h1>Title</h1>") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("unexpected html %q", out)
	}
}

func TestRenderDropsRawHTML(t *testing.T) {
	out := string(Render("hello <script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html leaked: %q", out)
	}
}

func TestExcerpt(t *testing.T) {
	got := Excerpt("Girls **deserve** an education, everywhere.", 14)
	if got != "Girls deserve…" {
		t.Fatalf("Excerpt = %q", got)
	}
	if got := Excerpt("short", 20); got != "short" {
		t.Fatalf("Excerpt(short) = %q", got)
	}
}
