// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the authentication extension points for the
// agent service.
//
// The open source version ships two providers: NopAuthProvider for local
// single-user deployments with no auth infrastructure, and
// SecretKeyAuthProvider for deployments that protect the API with a shared
// secret. Enterprise deployments can implement AuthProvider against a real
// identity provider and inject it without touching the handlers.
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
package extensions

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
)

// ErrUnauthorized is returned when authentication fails. Custom
// implementations should wrap this error with additional context.
//
// Example:
//
//	if !validToken {
//	    return nil, fmt.Errorf("invalid token format: %w", extensions.ErrUnauthorized)
//	}
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo contains identity information returned after successful
// authentication.
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	// This is the only required field and must never be empty.
	UserID string

	// Email is the user's email address.
	// May be empty if not provided by the auth provider.
	Email string

	// Roles contains the user's role memberships for authorization decisions.
	// Common roles: "admin", "analyst", "viewer"
	Roles []string
}

// HasRole checks if the user has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthProvider validates authentication tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// The token format is implementation-specific: a shared secret, a JWT, an
// API key.
type AuthProvider interface {
	// Validate checks if the token is valid and returns the user's identity.
	//
	// Returns:
	//   - *AuthInfo: User identity information if valid
	//   - error: ErrUnauthorized (or wrapped) if invalid, other errors for failures
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the default authentication provider when no secret is
// configured.
//
// It always returns a valid local user with admin privileges, enabling
// local single-user deployments to function without any authentication
// infrastructure.
//
// Thread-safe: This implementation has no mutable state.
type NopAuthProvider struct{}

// Validate always returns a valid local user with admin privileges.
// The token parameter is ignored; any value (including empty string)
// results in successful authentication.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Email:  "",
		Roles:  []string{"admin"},
	}, nil
}

// SecretKeyAuthProvider authenticates requests against a single shared
// secret. The comparison is constant-time so the secret cannot be recovered
// through timing differences.
//
// Thread-safe: This implementation has no mutable state.
type SecretKeyAuthProvider struct {
	secret []byte
}

// NewSecretKeyAuthProvider creates a provider requiring the given secret as
// the bearer token. An empty secret is a configuration error.
func NewSecretKeyAuthProvider(secret string) (*SecretKeyAuthProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret key must not be empty")
	}
	return &SecretKeyAuthProvider{secret: []byte(secret)}, nil
}

// Validate accepts only the configured secret as the token.
func (p *SecretKeyAuthProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if subtle.ConstantTimeCompare([]byte(token), p.secret) != 1 {
		return nil, fmt.Errorf("invalid bearer token: %w", ErrUnauthorized)
	}
	return &AuthInfo{
		UserID: "api-user",
		Roles:  []string{"admin"},
	}, nil
}

// ProviderFromEnv picks the auth provider based on configuration:
// SecretKeyAuthProvider when API_SECRET_KEY is set, NopAuthProvider
// otherwise.
func ProviderFromEnv() (AuthProvider, error) {
	if secret := os.Getenv("API_SECRET_KEY"); secret != "" {
		return NewSecretKeyAuthProvider(secret)
	}
	return &NopAuthProvider{}, nil
}

// Compile-time interface compliance checks.
var (
	_ AuthProvider = (*NopAuthProvider)(nil)
	_ AuthProvider = (*SecretKeyAuthProvider)(nil)
)
