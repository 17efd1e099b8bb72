package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/task-tracker/internal/model"
)

// UserRepo encapsulates all database queries over the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, password_hash, name, role, created_at"

// Create inserts a user row. The caller supplies the id and the
// already-hashed password; emails are normalized here as a last line
// of defense so the unique index always sees the canonical form.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	var name any
	if u.Name != "" {
		name = u.Name
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, role, created_at) VALUES (?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, name, string(u.Role), u.CreatedAt)
	if err != nil {
		// MySQL duplicate-key violations surface as error 1062.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email. Returns
// ErrUserNotFound when no row matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id. Returns ErrUserNotFound when no row
// matches.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// ListAll returns every user ordered by creation time. Only the admin
// users view calls this; the password hash is scanned but dropped by
// the handler's response type.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (*model.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(row rowScanner) (*model.User, error) {
	var (
		u    model.User
		name sql.NullString
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Role = model.Role(role)
	return &u, nil
}
