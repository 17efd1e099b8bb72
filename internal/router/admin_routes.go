package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
)

// RegisterAdmin registers admin-scoped endpoints under /v1/admin.
// All routes require a valid session AND the admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler) {
	g := e.Group(
		"/v1/admin",
		middleware.RequireAuth(),
		middleware.RequireAdmin(),
	)

	g.GET("/tasks", a.ListTasks)
	g.GET("/users", a.ListUsers)
}
