package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
)

// TaskStore is the persistence surface the task endpoints need.
// *repository.TaskRepo implements it; tests use an in-memory fake.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context, q repository.TaskQuery) ([]model.Task, int64, error)
	ListWithOwners(ctx context.Context, q repository.TaskQuery) ([]model.TaskWithOwner, int64, error)
	Update(ctx context.Context, id string, upd repository.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}

// AuditFunc publishes a task audit event. Publishing is best-effort:
// failures are logged and never fail the request.
type AuditFunc func(ctx context.Context, ev queue.TaskAuditEvent) error

// TaskHandler implements the task CRUD procedures. Every endpoint runs
// behind RequireAuth; the ownership-or-admin rule for mutations is
// re-derived from the current row on every call, never trusted from
// the client.
type TaskHandler struct {
	Tasks TaskStore
	Audit AuditFunc
}

func NewTaskHandler(tasks TaskStore, audit AuditFunc) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Audit: audit}
}

// ----- DTOs -----

type createTaskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // low | medium | high, defaults to medium
}

type updateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

func paginate(q repository.TaskQuery, total int64) pagination {
	totalPages := (total + int64(q.Limit) - 1) / int64(q.Limit)
	return pagination{
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    int64(q.Page*q.Limit) < total,
	}
}

// Create handles POST /v1/tasks. The new task is always owned by the
// caller and starts out pending regardless of the payload.
func (h *TaskHandler) Create(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	title := strings.TrimSpace(req.Title)
	v := newValidator()
	v.check(title != "", "title", "must be provided")
	v.check(len(title) <= 255, "title", "must be at most 255 characters")
	priority := model.PriorityMedium
	if req.Priority != "" {
		priority = model.TaskPriority(req.Priority)
		v.check(priority.Valid(), "priority", "must be low, medium or high")
	}
	if !v.ok() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input", "details": v.errors})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t := &model.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: req.Description,
		Status:      model.StatusPending,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
		UserID:      u.ID,
	}
	if err := h.Tasks.Create(ctx, t); err != nil {
		c.Logger().Errorf("create task: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create task"})
	}
	h.audit(c, "created", t, u.ID)
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /v1/tasks: one page of the caller's own tasks. The
// owner filter is implicit and cannot be widened from the client side.
func (h *TaskHandler) List(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	q, err := parseTaskQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	q.UserID = u.ID
	q.Normalize()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, total, err := h.Tasks.List(ctx, q)
	if err != nil {
		c.Logger().Errorf("list tasks: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list tasks"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks, "pagination": paginate(q, total)})
}

// Update handles PATCH/PUT /v1/tasks/:id with a partial payload.
// Permitted when the caller owns the task or is an admin; the check
// runs against the currently persisted row.
func (h *TaskHandler) Update(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	upd, verr := buildTaskUpdate(req)
	if verr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input", "details": verr.errors})
	}
	if upd.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no update data provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		c.Logger().Errorf("update task: fetch: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update task"})
	}
	if cur.UserID != u.ID && u.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	t, err := h.Tasks.Update(ctx, id, upd)
	if err != nil {
		// The row can vanish between the ownership check and the
		// update; that surfaces here as a late not-found.
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		c.Logger().Errorf("update task: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update task"})
	}
	h.audit(c, "updated", t, u.ID)
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/tasks/:id under the same
// ownership-or-admin rule as Update. The response carries a snapshot
// of the deleted row for undo/audit display.
func (h *TaskHandler) Delete(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cur, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		c.Logger().Errorf("delete task: fetch: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete task"})
	}
	if cur.UserID != u.ID && u.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		c.Logger().Errorf("delete task: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete task"})
	}
	h.audit(c, "deleted", cur, u.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "deletedTask": cur})
}

func (h *TaskHandler) audit(c echo.Context, action string, t *model.Task, actorID string) {
	if h.Audit == nil {
		return
	}
	ev := queue.TaskAuditEvent{
		Action:     action,
		TaskID:     t.ID,
		OwnerID:    t.UserID,
		ActorID:    actorID,
		Title:      t.Title,
		Status:     string(t.Status),
		Priority:   string(t.Priority),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Audit(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("task audit publish: %v", err)
	}
}

// buildTaskUpdate validates the provided fields of a partial update
// and translates them into a repository.TaskUpdate. Absent fields stay
// nil and untouched.
func buildTaskUpdate(req updateTaskReq) (repository.TaskUpdate, *validator) {
	var upd repository.TaskUpdate
	v := newValidator()
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		v.check(title != "", "title", "must not be empty")
		v.check(len(title) <= 255, "title", "must be at most 255 characters")
		upd.Title = &title
	}
	if req.Description != nil {
		upd.Description = req.Description
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		v.check(status.Valid(), "status", "must be pending, in-progress or completed")
		upd.Status = &status
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		v.check(priority.Valid(), "priority", "must be low, medium or high")
		upd.Priority = &priority
	}
	if !v.ok() {
		return repository.TaskUpdate{}, v
	}
	return upd, nil
}

// parseTaskQuery reads the shared filter/sort/pagination surface of
// the listing endpoints from the query string. Supplied values outside
// their domain (page < 1, limit outside 1..100, unknown enums) are
// rejected; absent values fall back to the defaults in Normalize.
func parseTaskQuery(c echo.Context) (repository.TaskQuery, error) {
	var q repository.TaskQuery
	var err error

	if s := c.QueryParam("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil || q.Page < 1 {
			return q, fmt.Errorf("invalid page %q", s)
		}
	}
	if s := c.QueryParam("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 1 || q.Limit > 100 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
	}

	if s := c.QueryParam("status"); s != "" {
		status := model.TaskStatus(s)
		if !status.Valid() {
			return q, fmt.Errorf("invalid status filter %q", s)
		}
		q.Status = status
	}
	if p := c.QueryParam("priority"); p != "" {
		for _, part := range strings.Split(p, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			priority := model.TaskPriority(part)
			if !priority.Valid() {
				return q, fmt.Errorf("invalid priority filter %q", part)
			}
			q.Priorities = append(q.Priorities, priority)
		}
	}
	q.Search = strings.TrimSpace(c.QueryParam("search"))
	if q.CreatedFrom, err = timeParam(c, "created_from"); err != nil {
		return q, err
	}
	if q.CreatedTo, err = timeParam(c, "created_to"); err != nil {
		return q, err
	}

	if sortBy := c.QueryParam("sort_by"); sortBy != "" {
		switch sortBy {
		case "title", "createdAt", "status", "priority":
			q.SortBy = sortBy
		default:
			return q, fmt.Errorf("invalid sort_by %q", sortBy)
		}
	}
	if dir := c.QueryParam("sort_dir"); dir != "" {
		if dir != "asc" && dir != "desc" {
			return q, fmt.Errorf("invalid sort_dir %q", dir)
		}
		q.SortDir = dir
	}
	return q, nil
}

// timeParam accepts RFC 3339 timestamps or plain dates (2006-01-02).
func timeParam(c echo.Context, name string) (time.Time, error) {
	s := c.QueryParam(name)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", name, s)
}
