package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
)

// RegisterTasks registers the authenticated task endpoints under
// /v1/tasks. All routes require a resolved session; the
// ownership-or-admin rule for mutations is enforced inside the
// handlers against the persisted row.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler) {
	g := e.Group("/v1/tasks", middleware.RequireAuth())

	g.POST("", t.Create)
	g.GET("", t.List)
	g.PUT("/:id", t.Update)
	g.PATCH("/:id", t.Update) // partial updates via PATCH as well
	g.DELETE("/:id", t.Delete)
}
