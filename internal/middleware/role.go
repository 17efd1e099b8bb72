package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/model"
)

// RequireAuth aborts with 401 when the request resolved to no
// authenticated identity. It is a pure predicate over the context
// built by ResolveSession; it performs no store lookups of its own.
// Clients distinguish this ("please log in") from 403 ("not allowed").
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			return next(c)
		}
	}
}

// RequireAdmin composes on top of RequireAuth: the caller must be
// authenticated AND hold the admin role. The role comes off the user
// record fetched during session validation, so no extra query runs
// here.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if u.Role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
