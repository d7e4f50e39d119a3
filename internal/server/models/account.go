// Package models holds the server-side persistent types.
package models

import "time"

// AuthProviderEmail marks accounts registered with an email and password.
const AuthProviderEmail = "email"

// Account is a registered user identity. PasswordHash is fixed after
// registration and IsEmailConfirmed only ever moves from false to true.
type Account struct {
	ID               string    `db:"id"`
	Email            string    `db:"email"`
	PasswordHash     string    `db:"password_hash"`
	AuthProvider     string    `db:"auth_provider"`
	IsEmailConfirmed bool      `db:"is_email_confirmed"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
