package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/gophcms/internal/session"
)

// AuthService defines the credential check required by the HTTP handlers.
type AuthService interface {
	// Verify reports whether password matches the stored hash for username.
	Verify(ctx context.Context, username, password string) (bool, error)
}

// AuthHandler handles sign-in and sign-out requests.
type AuthHandler struct {
	// AuthService performs the underlying credential check.
	AuthService AuthService
	// Pages renders views and redirects.
	Pages *Pages
}

// SignInForm handles GET /users/signin.
func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	h.Pages.Render(w, r, http.StatusOK, "signin", pageData{})
}

// SignIn handles POST /users/signin. Valid credentials store the username in
// the session; anything else re-renders the form with 422.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	ok, err := h.AuthService.Verify(r.Context(), username, r.FormValue("password"))
	if err != nil {
		h.Pages.ServerError(w, err)
		return
	}
	if !ok {
		h.Pages.Render(w, r, http.StatusUnprocessableEntity, "signin", pageData{
			Flash:        "Invalid Credentials",
			FormUsername: username,
		})
		return
	}

	h.Pages.update(w, r, "/", func(s *session.Session) {
		s.Username = username
		s.SetFlash("Welcome!")
	})
}

// SignOut handles POST /users/signout.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.Pages.update(w, r, "/", func(s *session.Session) {
		s.Username = ""
		s.SetFlash("You have been signed out.")
	})
}
