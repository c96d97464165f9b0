package server

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in the source is not rendered (goldmark's default).
var md = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// RenderMarkdown converts markdown text to HTML (safe to inject as template.HTML).
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
