package model

import "time"

// Session is the proof of an authenticated identity. The client holds
// a raw random token in a cookie; only the SHA-256 hex digest of that
// token is stored as the row id, so a leaked sessions table cannot be
// replayed against the API.
//
// Fields:
//  ID        – sha256 hex digest of the raw token, primary key.
//  UserID    – owning user (cascade-deleted with the user).
//  CreatedAt – when the session was issued.
//  ExpiresAt – hard expiry; validation past this point deletes the row.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
