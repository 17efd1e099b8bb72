package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/session"
)

type fakeSessionStore struct {
	sessions map[string]model.Session
	users    map[string]model.User
	failWith error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: make(map[string]model.Session),
		users:    make(map[string]model.User),
	}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessionStore) GetWithUser(_ context.Context, id string) (*model.Session, *model.User, error) {
	if f.failWith != nil {
		return nil, nil, f.failWith
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil, repository.ErrSessionNotFound
	}
	u, ok := f.users[s.UserID]
	if !ok {
		return nil, nil, repository.ErrSessionNotFound
	}
	return &s, &u, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

// runResolve sends one request through ResolveSession with the given
// cookie value ("" for no cookie) and captures what the inner handler
// observed.
func runResolve(t *testing.T, m *session.Manager, cookieValue string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.User
	err := ResolveSession(m)(func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, seen
}

func TestResolveSessionNoCookie(t *testing.T) {
	m := session.NewManager(newFakeSessionStore(), 24*time.Hour, false)

	rec, seen := runResolve(t, m, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)
	assert.Empty(t, rec.Result().Cookies(), "anonymous request must not receive a cookie")
}

func TestResolveSessionValidCookie(t *testing.T) {
	store := newFakeSessionStore()
	store.users["u1"] = model.User{ID: "u1", Email: "u1@example.com", Role: model.RoleUser}
	m := session.NewManager(store, 24*time.Hour, false)

	_, raw, err := m.CreateSession(context.Background(), "u1")
	require.NoError(t, err)

	rec, seen := runResolve(t, m, raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.ID)
	assert.Empty(t, rec.Result().Cookies(), "a session outside the renewal window is not reissued")
}

func TestResolveSessionInvalidCookieCleared(t *testing.T) {
	m := session.NewManager(newFakeSessionStore(), 24*time.Hour, false)

	rec, seen := runResolve(t, m, "stale-token-from-a-past-life")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestResolveSessionStoreFailure(t *testing.T) {
	store := newFakeSessionStore()
	store.failWith = errors.New("connection refused")
	m := session.NewManager(store, 24*time.Hour, false)

	rec, seen := runResolve(t, m, "any-token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, seen)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
