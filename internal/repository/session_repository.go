package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/task-tracker/internal/model"
)

// SessionRepo persists session rows keyed by token hash. Only the
// session manager touches these rows; handlers go through it.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?,?,?,?)",
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetWithUser loads a session together with its owning user in one
// round trip. The inner join makes a session whose user was deleted
// indistinguishable from a missing session, which is exactly the
// degradation the validation protocol wants.
func (r *SessionRepo) GetWithUser(ctx context.Context, id string) (*model.Session, *model.User, error) {
	var (
		s    model.Session
		u    model.User
		name sql.NullString
		role string
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.created_at, s.expires_at,
		        u.id, u.email, u.password_hash, u.name, u.role, u.created_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.id = ? LIMIT 1`, id).
		Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt,
			&u.ID, &u.Email, &u.PasswordHash, &name, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, err
	}
	u.Name = name.String
	u.Role = model.Role(role)
	return &s, &u, nil
}

// Delete removes a session row. Deleting an absent row is a no-op, not
// an error, so invalidation stays idempotent.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	return err
}
