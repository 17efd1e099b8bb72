package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/session"
)

// ResolveSession builds the base request context: it reads the session
// cookie, asks the session manager to validate it, and attaches the
// resolved user and session to the Echo context. It runs on every
// request and never aborts one on a bad token — missing, unknown or
// expired tokens simply leave the request anonymous (and clear the
// stale cookie). Rotated sessions are written back to the client here
// so handlers never deal with cookies.
//
// Store failures are the one hard stop: they are an infrastructure
// fault, not an invalid session, and surface as a generic 500.
func ResolveSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			v, err := m.Validate(c.Request().Context(), cookie.Value)
			if err != nil {
				c.Logger().Errorf("session validation: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
			}
			if v.User == nil {
				// Token present but useless: tell the client to drop it.
				c.SetCookie(m.BlankSessionCookie())
				return next(c)
			}
			if v.Fresh {
				c.SetCookie(m.SessionCookie(v.Token, v.Session.ExpiresAt))
			}

			c.Set(ctxUserKey, v.User)
			c.Set(ctxSessionKey, v.Session)
			return next(c)
		}
	}
}
