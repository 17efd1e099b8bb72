package session

import (
	"net/http"
	"time"
)

// CookieName is the fixed name of the session cookie.
const CookieName = "auth_session"

// SessionCookie builds the wire representation of a session: the raw
// token in an HttpOnly cookie that lives as long as the session does.
// Pure function, no persistence side effects.
func (m *Manager) SessionCookie(raw string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// BlankSessionCookie builds the wire representation of "no session",
// instructing the client to drop whatever token it holds.
func (m *Manager) BlankSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
