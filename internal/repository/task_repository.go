package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
)

// TaskQuery defines filters, sorting and pagination for task listings.
// All filter conditions are combined with AND. When UserID is set the
// listing is restricted to that owner; the self-scope listing always
// sets it to the caller, the admin listing sets it only when the
// client asked for a specific user.
type TaskQuery struct {
	Page        int
	Limit       int
	Status      model.TaskStatus
	Priorities  []model.TaskPriority
	Search      string
	CreatedFrom time.Time
	CreatedTo   time.Time
	SortBy      string // title | createdAt | status | priority
	SortDir     string // asc | desc
	UserID      string
}

// sortColumns whitelists sortable fields; anything else falls back to
// creation time so raw client input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	"title":     "t.title",
	"createdAt": "t.created_at",
	"status":    "t.status",
	"priority":  "t.priority",
}

// Normalize clamps pagination to sane bounds and applies defaults
// (page 1, limit 10, createdAt desc).
func (q *TaskQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "createdAt"
	}
	if q.SortDir != "asc" && q.SortDir != "desc" {
		q.SortDir = "desc"
	}
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil
}

// TaskRepo encapsulates all database queries over the `tasks` table.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskColumns = "t.id, t.title, t.description, t.status, t.priority, t.created_at, t.user_id"

// Create inserts a task row.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (id, title, description, status, priority, created_at, user_id) VALUES (?,?,?,?,?,?,?)",
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.CreatedAt, t.UserID)
	return err
}

// GetByID fetches a task by id. Returns ErrTaskNotFound when no row
// matches.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks t WHERE t.id=? LIMIT 1", id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns one page of tasks plus the total row count for the
// same filter set.
func (r *TaskRepo) List(ctx context.Context, q TaskQuery) ([]model.Task, int64, error) {
	q.Normalize()
	cond, args := buildTaskFilter(q)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks t WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT " + taskColumns + " FROM tasks t WHERE " + cond +
		" ORDER BY " + sortColumns[q.SortBy] + " " + strings.ToUpper(q.SortDir) +
		" LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Task, 0, q.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListWithOwners is the admin variant of List: same filter surface,
// rows joined with the minimal owner identity for display.
func (r *TaskRepo) ListWithOwners(ctx context.Context, q TaskQuery) ([]model.TaskWithOwner, int64, error) {
	q.Normalize()
	cond, args := buildTaskFilter(q)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks t JOIN users u ON u.id = t.user_id WHERE "+cond,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT " + taskColumns + ", u.id, u.email, u.name" +
		" FROM tasks t JOIN users u ON u.id = t.user_id WHERE " + cond +
		" ORDER BY " + sortColumns[q.SortBy] + " " + strings.ToUpper(q.SortDir) +
		" LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.TaskWithOwner, 0, q.Limit)
	for rows.Next() {
		var (
			row  model.TaskWithOwner
			name sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Title, &row.Description, &row.Status,
			&row.Priority, &row.CreatedAt, &row.UserID,
			&row.Owner.ID, &row.Owner.Email, &name); err != nil {
			return nil, 0, err
		}
		row.Owner.Name = name.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies a partial update and returns the post-update row.
// A task deleted between the caller's ownership check and this call
// surfaces as ErrTaskNotFound from the read-back, never as a silent
// no-op.
func (r *TaskRepo) Update(ctx context.Context, id string, upd TaskUpdate) (*model.Task, error) {
	set := []string{}
	args := []any{}
	if upd.Title != nil {
		set = append(set, "title=?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set = append(set, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.Status != nil {
		set = append(set, "status=?")
		args = append(args, string(*upd.Status))
	}
	if upd.Priority != nil {
		set = append(set, "priority=?")
		args = append(args, string(*upd.Priority))
	}
	if len(set) == 0 {
		return nil, errors.New("empty update")
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
		return nil, err
	}
	// Read back instead of trusting RowsAffected: MySQL reports zero
	// affected rows for updates that set identical values.
	return r.GetByID(ctx, id)
}

// Delete removes a task row. Returns ErrTaskNotFound when nothing was
// deleted.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// buildTaskFilter translates a TaskQuery into a WHERE condition and
// its arguments. The free-text search is a case-insensitive substring
// match against title OR description.
func buildTaskFilter(q TaskQuery) (string, []any) {
	where := []string{}
	args := []any{}

	if q.UserID != "" {
		where = append(where, "t.user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, string(q.Status))
	}
	if len(q.Priorities) > 0 {
		ph := make([]string, len(q.Priorities))
		for i, p := range q.Priorities {
			ph[i] = "?"
			args = append(args, string(p))
		}
		where = append(where, "t.priority IN ("+strings.Join(ph, ",")+")")
	}
	if q.Search != "" {
		needle := "%" + strings.ToLower(q.Search) + "%"
		where = append(where, "(LOWER(t.title) LIKE ? OR LOWER(t.description) LIKE ?)")
		args = append(args, needle, needle)
	}
	if !q.CreatedFrom.IsZero() {
		where = append(where, "t.created_at >= ?")
		args = append(args, q.CreatedFrom)
	}
	if !q.CreatedTo.IsZero() {
		where = append(where, "t.created_at <= ?")
		args = append(args, q.CreatedTo)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t    model.Task
		desc sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.Status, &t.Priority, &t.CreatedAt, &t.UserID); err != nil {
		return nil, err
	}
	t.Description = desc.String
	return &t, nil
}
