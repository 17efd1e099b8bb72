package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for session tokens
	"encoding/hex"  // hex encoding functions
)

// NewSessionToken returns a cryptographically secure random session
// token. The raw value goes back to the client in the session cookie;
// the database only ever sees its hash.
func NewSessionToken() (string, error) {
	return randomHex(48) // 48 bytes -> 96 hex chars
}

// HashSessionToken returns the SHA-256 hash of a raw session token as
// a hex string. Sessions are stored under the hash so that a stolen
// sessions table cannot be used to impersonate anyone.
func HashSessionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
