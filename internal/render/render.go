// Package render turns stored documents into HTTP response bodies.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/atinyakov/gophcms/internal/models"
)

const (
	// ContentTypeText is declared for plain-text documents.
	ContentTypeText = "text/plain"
	// ContentTypeHTML is declared for rendered Markdown and HTML pages.
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Renderer converts document content according to its kind.
// It is stateless and safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer using CommonMark with GitHub-flavoured extensions.
// Headings get no generated ids, so "# Title" renders as "<h1>Title</h1>".
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Markdown converts Markdown source to HTML.
func (r *Renderer) Markdown(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Render returns the content type and body for a document.
func (r *Renderer) Render(doc models.Document) (string, []byte, error) {
	switch doc.Kind {
	case models.PlainText:
		return ContentTypeText, doc.Content, nil
	case models.Markdown:
		body, err := r.Markdown(doc.Content)
		if err != nil {
			return "", nil, err
		}
		return ContentTypeHTML, body, nil
	default:
		return "", nil, fmt.Errorf("render %q: unsupported kind %v", doc.Name, doc.Kind)
	}
}
