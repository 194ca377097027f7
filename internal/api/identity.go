// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"

	"github.com/agencyops/huddle/internal/auth"
)

type identityKey struct{}

// RequireIdentity extracts the caller from the bearer token and rejects
// requests without one. Every data route sits behind it.
func (h *Handler) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.SubjectFromRequest(r, h.subjectClaim)
		if err != nil {
			NewResponseWriter(w, r).Unauthorized("missing or malformed bearer token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the authenticated user's ID. Empty only on routes
// mounted without RequireIdentity, which is a programming error.
func callerID(r *http.Request) string {
	if id, ok := r.Context().Value(identityKey{}).(auth.Identity); ok {
		return id.UserID
	}
	return ""
}

// requireRole runs the role gate and writes the 403 itself. Returns
// false when the caller lacks every listed role.
func (h *Handler) requireRole(rw *ResponseWriter, r *http.Request, roles ...string) bool {
	if !h.authz.HasAnyRole(r.Context(), callerID(r), roles...) {
		rw.Forbidden()
		return false
	}
	return true
}
