package model

import "time"

// Role determines what a user is allowed to do. It is a first-class
// enum on the user record, set at creation, so the authorization
// middleware never needs a second lookup to learn it.
type Role string

const (
	RoleUser  Role = "user"  // regular account, sees only its own tasks
	RoleAdmin Role = "admin" // may view and mutate every user's tasks
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an application user record as stored in the
// `users` table. The password hash never leaves the repository and
// handler layers; response payloads are built from separate structs
// so it cannot leak into JSON by accident.
//
// Fields:
//  ID           – opaque string identifier (UUID), primary key.
//  Email        – unique, stored lowercased and trimmed.
//  PasswordHash – bcrypt hash of the password.
//  Name         – optional display name ("" when not set).
//  Role         – "user" or "admin", defaults to "user".
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
}
