// Package session keeps per-browser state in a signed cookie: the signed-in
// username and a one-shot flash message.
package session

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "gophcms_session"

	keyUsername = "username"
)

// Session is the state carried by one request's cookie. Handlers load it,
// change it and save it explicitly before writing the response.
type Session struct {
	// Username is the signed-in user, empty when signed out.
	Username string

	raw *sessions.Session
}

// IsSignedIn reports whether the session carries a non-empty username.
func (s *Session) IsSignedIn() bool {
	return s != nil && s.Username != ""
}

// SetFlash replaces any pending flash message with msg.
func (s *Session) SetFlash(msg string) {
	s.raw.Flashes()
	s.raw.AddFlash(msg)
}

// PopFlash returns the pending flash message and clears it. The change only
// sticks once the session is saved.
func (s *Session) PopFlash() string {
	var msg string
	for _, f := range s.raw.Flashes() {
		if m, ok := f.(string); ok {
			msg = m
		}
	}
	return msg
}

// Manager loads and saves sessions using an HMAC-signed cookie store.
type Manager struct {
	store *sessions.CookieStore
}

// NewManager returns a Manager signing cookies with secret.
// secure marks the cookie for HTTPS-only transport.
func NewManager(secret string, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}, nil
}

// Load decodes the session cookie of r. A missing, tampered or expired
// cookie yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	// On decode errors the store still returns a fresh session.
	raw, _ := m.store.Get(r, CookieName)
	if raw == nil {
		raw = sessions.NewSession(m.store, CookieName)
		raw.Options = m.store.Options
		raw.IsNew = true
	}

	s := &Session{raw: raw}
	if u, ok := raw.Values[keyUsername].(string); ok {
		s.Username = u
	}
	return s
}

// Save writes s back to the response cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	if s.Username == "" {
		delete(s.raw.Values, keyUsername)
	} else {
		s.raw.Values[keyUsername] = s.Username
	}
	return s.raw.Save(r, w)
}
