// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides the agent's HTTP middleware: bearer token
// authentication backed by a pluggable extensions.AuthProvider, and
// per-client rate limiting.
//
// Without API_SECRET_KEY set, the provider is NopAuthProvider and every
// request runs as "local-user". With it set, every /v1 request must carry
// the matching bearer token or gets a 401.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianWebInsight/pkg/extensions"
)

// authInfoKey keys the AuthInfo stored on the gin context.
const authInfoKey = "webinsight_auth_info"

// SetAuthInfo attaches the authenticated identity to the request context.
func SetAuthInfo(c *gin.Context, info *extensions.AuthInfo) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo returns the identity AuthMiddleware resolved for this
// request, or nil when the request never passed through it.
func GetAuthInfo(c *gin.Context) *extensions.AuthInfo {
	value, exists := c.Get(authInfoKey)
	if !exists {
		return nil
	}
	info, ok := value.(*extensions.AuthInfo)
	if !ok {
		return nil
	}
	return info
}

// AuthMiddleware authenticates every request through the given provider.
//
// The bearer token is taken from the Authorization header; a missing or
// malformed header yields an empty token, which NopAuthProvider accepts
// and SecretKeyAuthProvider rejects. Validation failures abort with 401
// before any handler runs.
func AuthMiddleware(provider extensions.AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := provider.Validate(c.Request.Context(), extractBearerToken(c))
		if err != nil {
			message := "authentication failed"
			if errors.Is(err, extensions.ErrUnauthorized) {
				message = "unauthorized"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}
		SetAuthInfo(c, info)
		c.Next()
	}
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
// The scheme is matched case-insensitively per RFC 7235. Returns "" for a
// missing or malformed header.
func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
