package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/gophcms/internal/models"
)

const invalidNameMessage = "That's not a valid file name."

// DocumentService defines the document operations required by the handlers.
type DocumentService interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (models.Document, error)
	Create(ctx context.Context, name string) (string, error)
	Update(ctx context.Context, name, newName string, content []byte) (string, error)
	Delete(ctx context.Context, name string) error
	Duplicate(ctx context.Context, name string) (string, error)
}

// Renderer converts a document into a content type and response body.
type Renderer interface {
	Render(doc models.Document) (string, []byte, error)
}

// DocumentHandler handles listing, viewing and editing documents.
type DocumentHandler struct {
	// Documents performs the underlying document operations.
	Documents DocumentService
	// Renderer turns documents into response bodies.
	Renderer Renderer
	// Pages renders views and redirects.
	Pages *Pages
}

// filenameParam returns the unescaped {filename} segment. chi matches on the
// raw path when the client's encoding is not canonical, so the segment may
// still carry percent escapes.
func filenameParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "filename")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw, fmt.Errorf("filename %q: %w", raw, models.ErrNotFound)
	}
	return name, nil
}

func notFoundMessage(name string) string {
	return fmt.Sprintf("%s does not exist.", name)
}

func alreadyExistsMessage(name string) string {
	return fmt.Sprintf("%s already exists.", name)
}

// Index handles GET /, listing every document.
func (h *DocumentHandler) Index(w http.ResponseWriter, r *http.Request) {
	files, err := h.Documents.List(r.Context())
	if err != nil {
		h.Pages.ServerError(w, err)
		return
	}
	h.Pages.Render(w, r, http.StatusOK, "index", pageData{Files: files})
}

// New handles GET /new, showing the new-document form.
func (h *DocumentHandler) New(w http.ResponseWriter, r *http.Request) {
	h.Pages.Render(w, r, http.StatusOK, "new", pageData{})
}

// Create handles POST /, creating an empty document named by the
// "filename" form field.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, err := h.Documents.Create(r.Context(), r.FormValue("filename"))
	switch {
	case err == nil:
		h.Pages.Redirect(w, r, "/", fmt.Sprintf("%s was created.", name))
	case errors.Is(err, models.ErrInvalidName):
		h.renderNewWithError(w, r, name, invalidNameMessage)
	case errors.Is(err, models.ErrAlreadyExists):
		h.renderNewWithError(w, r, name, alreadyExistsMessage(name))
	default:
		h.Pages.ServerError(w, err)
	}
}

func (h *DocumentHandler) renderNewWithError(w http.ResponseWriter, r *http.Request, name, msg string) {
	h.Pages.Render(w, r, http.StatusUnprocessableEntity, "new", pageData{Flash: msg, Filename: name})
}

// Show handles GET /{filename}. Plain text is served verbatim; Markdown is
// rendered to HTML inside the layout.
func (h *DocumentHandler) Show(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	var doc models.Document
	if err == nil {
		doc, err = h.Documents.Get(r.Context(), name)
	}
	if errors.Is(err, models.ErrNotFound) {
		h.Pages.Redirect(w, r, "/", notFoundMessage(name))
		return
	}
	if err != nil {
		h.Pages.ServerError(w, err)
		return
	}

	contentType, body, err := h.Renderer.Render(doc)
	if err != nil {
		h.Pages.ServerError(w, err)
		return
	}

	switch doc.Kind {
	case models.Markdown:
		h.Pages.Render(w, r, http.StatusOK, "document", pageData{
			Filename: doc.Name,
			// Markdown output is trusted as authored by signed-in users.
			Body: template.HTML(body),
		})
	default:
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// Edit handles GET /{filename}/edit, showing the edit form with the current content.
func (h *DocumentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	var doc models.Document
	if err == nil {
		doc, err = h.Documents.Get(r.Context(), name)
	}
	if errors.Is(err, models.ErrNotFound) {
		h.Pages.Redirect(w, r, "/", notFoundMessage(name))
		return
	}
	if err != nil {
		h.Pages.ServerError(w, err)
		return
	}

	h.Pages.Render(w, r, http.StatusOK, "edit", pageData{
		Filename:    doc.Name,
		NewFilename: doc.Name,
		Content:     string(doc.Content),
	})
}

// Update handles POST /{filename}: renames the document to "new_filename"
// when it differs, then replaces its content with "content".
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	content := r.FormValue("content")

	var newName string
	if err == nil {
		newName, err = h.Documents.Update(r.Context(), name, r.FormValue("new_filename"), []byte(content))
	}
	switch {
	case err == nil:
		h.Pages.Redirect(w, r, "/", fmt.Sprintf("%s has been updated.", newName))
	case errors.Is(err, models.ErrNotFound):
		h.Pages.Redirect(w, r, "/", notFoundMessage(name))
	case errors.Is(err, models.ErrInvalidName):
		h.renderEditWithError(w, r, name, newName, content, invalidNameMessage)
	case errors.Is(err, models.ErrAlreadyExists):
		h.renderEditWithError(w, r, name, newName, content, alreadyExistsMessage(newName))
	default:
		h.Pages.ServerError(w, err)
	}
}

func (h *DocumentHandler) renderEditWithError(w http.ResponseWriter, r *http.Request, name, newName, content, msg string) {
	h.Pages.Render(w, r, http.StatusUnprocessableEntity, "edit", pageData{
		Flash:       msg,
		Filename:    name,
		NewFilename: newName,
		Content:     content,
	})
}

// Delete handles POST /{filename}/delete.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	if err == nil {
		err = h.Documents.Delete(r.Context(), name)
	}
	switch {
	case err == nil:
		h.Pages.Redirect(w, r, "/", fmt.Sprintf("%s has been deleted.", name))
	case errors.Is(err, models.ErrNotFound):
		h.Pages.Redirect(w, r, "/", notFoundMessage(name))
	default:
		h.Pages.ServerError(w, err)
	}
}

// Copy handles POST /{filename}/copy, duplicating the document.
func (h *DocumentHandler) Copy(w http.ResponseWriter, r *http.Request) {
	name, err := filenameParam(r)
	var target string
	if err == nil {
		target, err = h.Documents.Duplicate(r.Context(), name)
	}
	switch {
	case err == nil:
		h.Pages.Redirect(w, r, "/", fmt.Sprintf("%s has been duplicated.", name))
	case errors.Is(err, models.ErrNotFound):
		h.Pages.Redirect(w, r, "/", notFoundMessage(name))
	case errors.Is(err, models.ErrAlreadyExists):
		h.Pages.Redirect(w, r, "/", alreadyExistsMessage(target))
	default:
		h.Pages.ServerError(w, err)
	}
}
