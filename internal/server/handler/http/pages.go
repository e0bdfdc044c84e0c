// Package http provides the HTTP handlers, views and routing of the CMS.
package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/gophcms/internal/render"
	"github.com/atinyakov/gophcms/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "new", "edit", "document", "signin"}

// SessionManager loads and saves the per-request session.
type SessionManager interface {
	Load(r *http.Request) *session.Session
	Save(w http.ResponseWriter, r *http.Request, s *session.Session) error
}

// pageData is the view model shared by all templates.
type pageData struct {
	Flash        string
	Username     string
	Files        []string
	Filename     string
	NewFilename  string
	Content      string
	Body         template.HTML
	FormUsername string
}

// Pages renders HTML views and redirects, taking care of the session's
// flash message on the way.
type Pages struct {
	// Sessions loads and saves the session cookie.
	Sessions SessionManager
	// Log receives server-side failures.
	Log *zap.Logger

	templates map[string]*template.Template
}

// NewPages parses the embedded templates.
func NewPages(sessions SessionManager, log *zap.Logger) (*Pages, error) {
	p := &Pages{
		Sessions:  sessions,
		Log:       log,
		templates: make(map[string]*template.Template, len(pageNames)),
	}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.templates[name] = t
	}
	return p, nil
}

// Render consumes the pending flash message, saves the session and writes the
// named page with the given status. A Flash already set in data is shown
// instead and the pending one is kept for the next page.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := p.templates[page]
	if !ok {
		p.ServerError(w, fmt.Errorf("unknown page %q", page))
		return
	}

	s := p.Sessions.Load(r)
	if data.Flash == "" {
		data.Flash = s.PopFlash()
	}
	data.Username = s.Username

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		p.ServerError(w, fmt.Errorf("execute template %s: %w", page, err))
		return
	}
	if err := p.Sessions.Save(w, r, s); err != nil {
		p.ServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Redirect flashes msg and sends the client to path with 302 Found.
func (p *Pages) Redirect(w http.ResponseWriter, r *http.Request, path, msg string) {
	p.update(w, r, path, func(s *session.Session) {
		if msg != "" {
			s.SetFlash(msg)
		}
	})
}

// update applies fn to the session, saves it and redirects to path.
func (p *Pages) update(w http.ResponseWriter, r *http.Request, path string, fn func(s *session.Session)) {
	s := p.Sessions.Load(r)
	fn(s)
	if err := p.Sessions.Save(w, r, s); err != nil {
		p.ServerError(w, err)
		return
	}
	http.Redirect(w, r, path, http.StatusFound)
}

// ServerError logs err and replies with a generic 500.
func (p *Pages) ServerError(w http.ResponseWriter, err error) {
	p.Log.Error("request failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
