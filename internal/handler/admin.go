package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/model"
)

// UserLister is the read surface the admin views need.
type UserLister interface {
	ListAll(ctx context.Context) ([]model.User, error)
}

// AdminHandler serves the admin-only views: every user's tasks (with
// owner identity attached) and the user directory. Routes using it sit
// behind RequireAuth + RequireAdmin.
type AdminHandler struct {
	Users UserLister
	Tasks TaskStore
}

func NewAdminHandler(users UserLister, tasks TaskStore) *AdminHandler {
	return &AdminHandler{Users: users, Tasks: tasks}
}

type adminUserPart struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ListTasks handles GET /v1/admin/tasks: the same filter surface as
// the self-scope listing, plus an optional user_id filter, across all
// owners.
func (h *AdminHandler) ListTasks(c echo.Context) error {
	q, err := parseTaskQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	q.UserID = c.QueryParam("user_id")
	q.Normalize()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, total, err := h.Tasks.ListWithOwners(ctx, q)
	if err != nil {
		c.Logger().Errorf("admin list tasks: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list tasks"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks, "pagination": paginate(q, total)})
}

// ListUsers handles GET /v1/admin/users: every user ordered by
// creation time, without password hashes.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		c.Logger().Errorf("admin list users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}
