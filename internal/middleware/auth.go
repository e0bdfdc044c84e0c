package middleware

import (
	"net/http"

	"github.com/atinyakov/gophcms/internal/models"
	"github.com/atinyakov/gophcms/internal/session"
	"go.uber.org/zap"
)

// SignInRequiredMessage is flashed when a signed-out user attempts a
// mutating action.
const SignInRequiredMessage = "You must be signed in to do that."

// SessionLoader loads and saves the per-request session.
type SessionLoader interface {
	Load(r *http.Request) *session.Session
	Save(w http.ResponseWriter, r *http.Request, s *session.Session) error
}

// RequireSignedIn lets requests through only when the session carries a
// username. Otherwise it flashes SignInRequiredMessage and redirects to "/"
// without calling next.
func RequireSignedIn(sessions SessionLoader, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := sessions.Load(r)
			if s.IsSignedIn() {
				next.ServeHTTP(w, r)
				return
			}

			log.Info("request rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(models.ErrUnauthorized),
			)
			s.SetFlash(SignInRequiredMessage)
			if err := sessions.Save(w, r, s); err != nil {
				log.Error("failed to save session", zap.Error(err))
			}
			http.Redirect(w, r, "/", http.StatusFound)
		})
	}
}
