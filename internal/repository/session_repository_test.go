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

func newSessionMock(t *testing.T) (sqlmock.Sqlmock, *SessionRepo, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return mock, NewSessionRepo(db), func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestSessionCreate(t *testing.T) {
	mock, repo, done := newSessionMock(t)
	defer done()

	now := time.Now().UTC()
	exp := now.Add(720 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?,?,?,?)")).
		WithArgs("hash1", "u1", now, exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &model.Session{
		ID: "hash1", UserID: "u1", CreatedAt: now, ExpiresAt: exp,
	})
	require.NoError(t, err)
}

func TestSessionGetWithUser(t *testing.T) {
	mock, repo, done := newSessionMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "created_at", "expires_at",
		"u_id", "email", "password_hash", "name", "role", "u_created_at",
	}).AddRow("hash1", "u1", now, now.Add(time.Hour),
		"u1", "user@example.com", "hash", nil, "user", now)
	mock.ExpectQuery("SELECT s.id, s.user_id, .+ FROM sessions s").
		WithArgs("hash1").
		WillReturnRows(rows)

	s, u, err := repo.GetWithUser(context.Background(), "hash1")
	require.NoError(t, err)
	assert.Equal(t, "hash1", s.ID)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Empty(t, u.Name)
}

func TestSessionGetWithUserMissing(t *testing.T) {
	mock, repo, done := newSessionMock(t)
	defer done()

	mock.ExpectQuery("SELECT s.id, s.user_id, .+ FROM sessions s").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "created_at", "expires_at",
			"u_id", "email", "password_hash", "name", "role", "u_created_at",
		}))

	_, _, err := repo.GetWithUser(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionDeleteIdempotent(t *testing.T) {
	mock, repo, done := newSessionMock(t)
	defer done()

	// Deleting an absent row still succeeds.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id=?")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "gone"))
}
