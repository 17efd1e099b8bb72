package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-tracker/internal/model"
)

func newTaskMock(t *testing.T) (sqlmock.Sqlmock, *TaskRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewTaskRepo(db), func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

const taskCols = "t.id, t.title, t.description, t.status, t.priority, t.created_at, t.user_id"

func taskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "status", "priority", "created_at", "user_id"})
}

func TestTaskQueryNormalize(t *testing.T) {
	q := TaskQuery{Page: -3, Limit: 0, SortBy: "owner", SortDir: "sideways"}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "createdAt", q.SortBy)
	assert.Equal(t, "desc", q.SortDir)

	q = TaskQuery{Page: 2, Limit: 500, SortBy: "title", SortDir: "asc"}
	q.Normalize()
	assert.Equal(t, 100, q.Limit, "limit is capped")
	assert.Equal(t, "title", q.SortBy)
	assert.Equal(t, "asc", q.SortDir)
}

func TestBuildTaskFilter(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cond, args := buildTaskFilter(TaskQuery{})
	assert.Equal(t, "1=1", cond)
	assert.Empty(t, args)

	cond, args = buildTaskFilter(TaskQuery{
		UserID:      "u1",
		Status:      model.StatusPending,
		Priorities:  []model.TaskPriority{model.PriorityHigh, model.PriorityMedium},
		Search:      "Quarterly Report",
		CreatedFrom: from,
	})
	assert.Equal(t,
		"t.user_id = ? AND t.status = ? AND t.priority IN (?,?) AND "+
			"(LOWER(t.title) LIKE ? OR LOWER(t.description) LIKE ?) AND t.created_at >= ?",
		cond)
	assert.Equal(t, []any{"u1", "pending", "high", "medium", "%quarterly report%", "%quarterly report%", from}, args)
}

func TestTaskList(t *testing.T) {
	mock, repo, done := newTaskMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks t WHERE t.user_id = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+taskCols+" FROM tasks t WHERE t.user_id = ? ORDER BY t.created_at DESC LIMIT ? OFFSET ?")).
		WithArgs("u1", 10, 10).
		WillReturnRows(taskRows().
			AddRow("t1", "first", "desc", "pending", "high", now, "u1").
			AddRow("t2", "second", nil, "completed", "low", now, "u1"))

	tasks, total, err := repo.List(context.Background(), TaskQuery{Page: 2, UserID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Empty(t, tasks[1].Description, "NULL description scans to empty string")
}

func TestTaskListWithOwners(t *testing.T) {
	mock, repo, done := newTaskMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM tasks t JOIN users u ON u.id = t.user_id WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT "+taskCols+", u.id, u.email, u.name"+
			" FROM tasks t JOIN users u ON u.id = t.user_id WHERE 1=1"+
			" ORDER BY t.created_at DESC LIMIT ? OFFSET ?")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "status", "priority", "created_at", "user_id",
			"owner_id", "owner_email", "owner_name",
		}).AddRow("t1", "task", "d", "pending", "medium", now, "u1", "u1", "owner@example.com", nil))

	rows, total, err := repo.ListWithOwners(context.Background(), TaskQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "owner@example.com", rows[0].Owner.Email)
	assert.Empty(t, rows[0].Owner.Name)
}

func TestTaskUpdatePartial(t *testing.T) {
	mock, repo, done := newTaskMock(t)
	defer done()

	now := time.Now().UTC()
	title := "renamed"
	status := model.StatusCompleted
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET title=?, status=? WHERE id=?")).
		WithArgs("renamed", "completed", "t1").
		WillReturnResult(sqlmock.NewResult(0, 0)) // identical values: MySQL reports 0
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + taskCols + " FROM tasks t WHERE t.id=? LIMIT 1")).
		WithArgs("t1").
		WillReturnRows(taskRows().AddRow("t1", "renamed", "d", "completed", "medium", now, "u1"))

	got, err := repo.Update(context.Background(), "t1", TaskUpdate{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestTaskUpdateVanishedRow(t *testing.T) {
	mock, repo, done := newTaskMock(t)
	defer done()

	status := model.StatusCompleted
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status=? WHERE id=?")).
		WithArgs("completed", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + taskCols + " FROM tasks t WHERE t.id=? LIMIT 1")).
		WithArgs("gone").
		WillReturnRows(taskRows())

	_, err := repo.Update(context.Background(), "gone", TaskUpdate{Status: &status})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskDelete(t *testing.T) {
	mock, repo, done := newTaskMock(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id=?")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "t1"))
}

func TestTaskDeleteMissing(t *testing.T) {
	mock, repo, done := newTaskMock(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id=?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), ErrTaskNotFound)
}
