package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/gophcms/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the CMS.
//
// Routes:
//
//	GET  /                    → documents.Index
//	GET  /users/signin        → auth.SignInForm
//	POST /users/signin        → auth.SignIn
//	POST /users/signout       → auth.SignOut
//	GET  /{filename}          → documents.Show
//	GET  /new                 → documents.New     (signed in)
//	POST /                    → documents.Create  (signed in)
//	GET  /{filename}/edit     → documents.Edit    (signed in)
//	POST /{filename}          → documents.Update  (signed in)
//	POST /{filename}/delete   → documents.Delete  (signed in)
//	POST /{filename}/copy     → documents.Copy    (signed in)
//
// Middleware chain (applied in order):
//  1. RequestID               - tags each request with an id
//  2. WithRequestLogging      - logs every request
//  3. Recoverer               - turns panics into 500s
//  4. RequireSignedIn         - on the mutating group only
func NewRouter(
	documents *DocumentHandler,
	auth *AuthHandler,
	sessions SessionManager,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	// Public endpoints
	r.Get("/", documents.Index)
	r.Get("/users/signin", auth.SignInForm)
	r.Post("/users/signin", auth.SignIn)
	r.Post("/users/signout", auth.SignOut)
	r.Get("/{filename}", documents.Show)

	// Protected group: requires a signed-in session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSignedIn(sessions, logger))

		r.Get("/new", documents.New)
		r.Post("/", documents.Create)
		r.Get("/{filename}/edit", documents.Edit)
		r.Post("/{filename}", documents.Update)
		r.Post("/{filename}/delete", documents.Delete)
		r.Post("/{filename}/copy", documents.Copy)
	})

	return r
}
