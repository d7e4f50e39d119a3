// Package common defines shared constants and sentinel errors used across
// the server and client layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Request validation.
	ErrInvalidInput = errors.New("invalid input")

	// Registration and login outcomes.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")

	// Stored password hash cannot be parsed.
	ErrCorruptHash = errors.New("corrupt password hash")

	// Signing key, issuer or audience (or another required setting) is absent.
	ErrConfigurationMissing = errors.New("configuration missing")

	// A store or notifier call exceeded its deadline or was cancelled.
	ErrTimeout = errors.New("timeout")

	// Bearer token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
