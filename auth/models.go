// Package auth is responsible for authentication and authorization: password
// hashing, the credential store, token issuance and verification, and the
// middleware that gates protected routes.
package auth

import "time"

// User represents a registered account.
// The json:"-" tag on PasswordHash keeps the hash out of every response.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminGrant tells the store how to set IsAdmin on a new account.
type AdminGrant int

const (
	// GrantNone creates a regular account.
	GrantNone AdminGrant = iota
	// GrantIfFirst makes the account admin only if the store is empty.
	// The emptiness check and the insert happen atomically.
	GrantIfFirst
	// GrantAlways creates an admin account (explicit seeding).
	GrantAlways
)
