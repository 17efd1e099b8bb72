// Package router defines how HTTP routes are registered for the API.
//
// Every route falls into exactly one capability class, enforced by the
// middleware attached at group construction time:
//
//	none          – /healthz, /v1/auth/* (signup, login, logout, validate)
//	authenticated – /v1/me, /v1/tasks/*
//	admin         – /v1/admin/*
//
// The base identity is resolved once per request by ResolveSession
// (installed globally in main); the groups below only add the guard
// appropriate to their class.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
)

// RegisterRoutes registers routes that require no capability at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Signup and
// login additionally run behind the rate limiter so credential
// guessing gets throttled; logout and validate are cheap and
// idempotent and stay unthrottled.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/logout", a.Logout)
	g.GET("/validate", a.Validate)

	// Small protected identity endpoint outside the auth group.
	e.GET("/v1/me", a.Me, middleware.RequireAuth())
}
