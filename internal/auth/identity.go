// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoIdentity is returned when a request carries no usable bearer
// token or the token lacks the subject claim.
var ErrNoIdentity = errors.New("no identity in request")

// Identity is the caller extracted from the gateway-verified token.
type Identity struct {
	// UserID is the value of the configured subject claim, typically
	// cognito:username.
	UserID string
}

// SubjectFromRequest pulls the bearer token off the Authorization header
// and reads the subject claim out of it. The gateway has already
// verified the signature, so the token is parsed unverified here.
func SubjectFromRequest(r *http.Request, claimName string) (Identity, error) {
	raw := bearerToken(r)
	if raw == "" {
		return Identity{}, ErrNoIdentity
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("malformed bearer token: %w", err)
	}

	subject, ok := claims[claimName].(string)
	if !ok || subject == "" {
		return Identity{}, ErrNoIdentity
	}
	return Identity{UserID: subject}, nil
}

// bearerToken returns the token portion of an Authorization: Bearer
// header, or "" when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
