package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/session"
	"github.com/iliyamo/task-tracker/internal/utils"
)

// UserStore is the persistence surface the auth endpoints need.
// *repository.UserRepo implements it; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthHandler bundles dependencies for the signup/login/logout
// endpoints and the session validation query.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions *session.Manager
}

func NewAuthHandler(cfg config.Config, u UserStore, s *session.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // user | admin, defaults to user
}

type loginReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	SelectedRole string `json:"selectedRole"` // picks redirect target, gates admin login
}

type userPart struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type sessionPart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signup creates a user and logs it in immediately: the response
// carries the session cookie for the fresh account.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	v := newValidator()
	v.checkEmail(req.Email)
	v.checkPassword(req.Password)
	role := model.RoleUser
	if req.Role != "" {
		role = model.Role(req.Role)
		v.check(role.Valid(), "role", "must be user or admin")
	}
	if !v.ok() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input", "details": v.errors})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
		}
		c.Logger().Errorf("signup: create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	s, raw, err := h.Sessions.CreateSession(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("signup: create session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	c.SetCookie(h.Sessions.SessionCookie(raw, s.ExpiresAt))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "account created successfully"})
}

// Login verifies credentials and issues a new session. A missing
// account and a wrong password produce the same generic error so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	v := newValidator()
	v.checkEmail(req.Email)
	v.checkPassword(req.Password)
	selected := model.RoleUser
	if req.SelectedRole != "" {
		selected = model.Role(req.SelectedRole)
		v.check(selected.Valid(), "selectedRole", "must be user or admin")
	}
	if !v.ok() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input", "details": v.errors})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email or password"})
		}
		c.Logger().Errorf("login: query user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email or password"})
	}

	// Privilege mismatch is deliberately distinct from the credential
	// error: the password was right, the role was not.
	if selected == model.RoleAdmin && u.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you don't have admin privileges"})
	}

	s, raw, err := h.Sessions.CreateSession(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("login: create session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	c.SetCookie(h.Sessions.SessionCookie(raw, s.ExpiresAt))

	redirectTo := "/"
	if u.Role == model.RoleAdmin {
		redirectTo = "/admin"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "role": u.Role, "redirectTo": redirectTo})
}

// Logout invalidates the current session. Calling it without a
// session, or with one that is already gone, still succeeds.
//
// The session resolved into the context takes precedence over the
// cookie token: when validation rotated the session earlier in this
// request, the cookie names an already-deleted row and only the
// resolved session points at the live replacement.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if s := middleware.CurrentSession(c); s != nil {
		if err := h.Sessions.InvalidateID(ctx, s.ID); err != nil {
			c.Logger().Errorf("logout: invalidate session: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "logout failed"})
		}
		c.SetCookie(h.Sessions.BlankSessionCookie())
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out successfully"})
	}

	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "already logged out"})
	}
	if err := h.Sessions.Invalidate(ctx, cookie.Value); err != nil {
		c.Logger().Errorf("logout: invalidate session: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "logout failed"})
	}
	c.SetCookie(h.Sessions.BlankSessionCookie())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out successfully"})
}

// Validate reports the identity behind the current request: the
// resolved user and session, or nulls for an anonymous caller. The
// password hash never appears here.
func (h *AuthHandler) Validate(c echo.Context) error {
	var (
		up *userPart
		sp *sessionPart
	)
	if u := middleware.CurrentUser(c); u != nil {
		up = &userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	}
	if s := middleware.CurrentSession(c); s != nil {
		sp = &sessionPart{ID: s.ID, UserID: s.UserID, ExpiresAt: s.ExpiresAt}
	}
	return c.JSON(http.StatusOK, echo.Map{"user": up, "session": sp})
}

// Me is a small protected endpoint returning the signed-in identity.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}
