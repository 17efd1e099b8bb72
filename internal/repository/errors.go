// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific error text.
package repository

import "errors"

// ErrEmailExists is returned when a signup reuses an email address that
// already (case-insensitively) has a user record.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned when no session row matches the given
// token hash, or its owning user no longer exists.
var ErrSessionNotFound = errors.New("session not found")

// ErrTaskNotFound is returned when a task does not exist at the time of
// the operation, including the race where it is deleted between an
// ownership check and the mutation that follows it.
var ErrTaskNotFound = errors.New("task not found")
