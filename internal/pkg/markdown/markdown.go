// Package markdown renders post bodies to HTML. Raw HTML in the source is
// dropped by goldmark's default renderer.
package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Render converts markdown to HTML safe for direct template output.
func Render(source string) template.HTML {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}

// Excerpt renders source and returns its first n runes of plain text,
// for list cards.
func Excerpt(source string, n int) string {
	text := tagPattern.ReplaceAllString(string(Render(source)), " ")
	text = strings.Join(strings.Fields(template.HTMLUnescapeString(text)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
