package middleware

// identity.go defines the context keys under which the resolved
// identity is stored, plus typed accessors shared by middleware and
// handlers. The identity is attached once per request by
// ResolveSession; guards and handlers only ever read it back, they
// never hit the stores again.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/model"
)

const (
	ctxUserKey    = "user"
	ctxSessionKey = "session"
)

// CurrentUser returns the authenticated user attached to the request
// context, or nil when the request is anonymous.
func CurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get(ctxUserKey).(*model.User); ok {
		return u
	}
	return nil
}

// CurrentSession returns the session attached to the request context,
// or nil when the request is anonymous.
func CurrentSession(c echo.Context) *model.Session {
	if s, ok := c.Get(ctxSessionKey).(*model.Session); ok {
		return s
	}
	return nil
}

// userID returns a stable identifier for rate-limit keys: the resolved
// user id, or "guest" for anonymous requests.
func userID(c echo.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return "guest"
}
