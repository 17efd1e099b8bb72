// Package session owns the session lifecycle: issuing tokens, validating
// them on every request, rotating sessions that have reached their
// half-life, and invalidating them on logout. No other component may
// mutate session rows.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/utils"
)

// Store is the persistence surface the manager needs. *repository.SessionRepo
// implements it; tests substitute an in-memory map.
type Store interface {
	Create(ctx context.Context, s *model.Session) error
	GetWithUser(ctx context.Context, id string) (*model.Session, *model.User, error)
	Delete(ctx context.Context, id string) error
}

// Validation is the outcome of validating one raw token. A zero value
// (nil User and Session) means "anonymous": the token was missing,
// unknown, expired, or its owner is gone. When Fresh is true the
// session was rotated and Token carries the replacement raw token the
// client must be handed.
type Validation struct {
	User    *model.User
	Session *model.Session
	Fresh   bool
	Token   string
}

// Manager creates, validates, rotates and invalidates sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	now    func() time.Time // swapped out in tests
}

// NewManager builds a Manager. ttl is the full session lifetime;
// secure controls the cookie Secure flag.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure, now: func() time.Time { return time.Now().UTC() }}
}

// CreateSession issues a new session for userID and returns the
// persisted row together with the raw token for the cookie.
func (m *Manager) CreateSession(ctx context.Context, userID string) (*model.Session, string, error) {
	raw, err := utils.NewSessionToken()
	if err != nil {
		return nil, "", err
	}
	now := m.now()
	s := &model.Session{
		ID:        utils.HashSessionToken(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, "", err
	}
	return s, raw, nil
}

// Validate resolves a raw token to its user and session. Validation
// failures are never fatal: an unknown, expired or orphaned token
// degrades to the zero Validation. The error return is reserved for
// infrastructure failures (store unreachable).
//
// A still-valid session past its half-life is transparently rotated:
// a new row with a fresh expiry replaces the old one and the caller is
// signalled (Fresh) to hand the client the replacement token.
func (m *Manager) Validate(ctx context.Context, raw string) (Validation, error) {
	if raw == "" {
		return Validation{}, nil
	}
	s, u, err := m.store.GetWithUser(ctx, utils.HashSessionToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return Validation{}, nil
		}
		return Validation{}, err
	}

	now := m.now()
	if !s.ExpiresAt.After(now) {
		// Expired rows are garbage-collected on sight; a delete failure
		// here is irrelevant to the outcome.
		_ = m.store.Delete(ctx, s.ID)
		return Validation{}, nil
	}

	if s.ExpiresAt.Sub(now) < m.ttl/2 {
		return m.rotate(ctx, s, u)
	}
	return Validation{User: u, Session: s}, nil
}

// rotate replaces s with a brand-new session for the same user. The
// new row is written before the old one is removed so a crash in
// between leaves the user with at least one working session.
func (m *Manager) rotate(ctx context.Context, s *model.Session, u *model.User) (Validation, error) {
	ns, raw, err := m.CreateSession(ctx, u.ID)
	if err != nil {
		return Validation{}, err
	}
	_ = m.store.Delete(ctx, s.ID)
	return Validation{User: u, Session: ns, Fresh: true, Token: raw}, nil
}

// Invalidate deletes the session behind a raw token. Invalidating an
// absent or already-invalidated token succeeds: logout is idempotent.
func (m *Manager) Invalidate(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return m.store.Delete(ctx, utils.HashSessionToken(raw))
}

// InvalidateID deletes a session by its row id. Logout uses this for
// the session resolved earlier in the request: after a rotation the
// cookie token names a row that no longer exists, and only the
// resolved session points at the surviving replacement.
func (m *Manager) InvalidateID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}
