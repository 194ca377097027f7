// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
)

// Role names as stored in the roles table.
const (
	RoleAdmin          = "Admin"
	RoleDepartmentHead = "Department Head"
	RoleClientLead     = "Client Lead"
)

// PipelineRoles are the roles allowed to touch the sales pipeline.
var PipelineRoles = []string{RoleAdmin, RoleDepartmentHead, RoleClientLead}

// RoleSource answers a single-row query, matching the database
// package's QueryRow so the store can be dropped in directly.
type RoleSource interface {
	QueryRow(ctx context.Context, operation, query string, args ...any) (map[string]any, error)
}

// Authorizer resolves a user's roles from the database.
type Authorizer struct {
	db RoleSource
}

// NewAuthorizer wires an Authorizer to a role source.
func NewAuthorizer(db RoleSource) *Authorizer {
	return &Authorizer{db: db}
}

const rolesQuery = `SELECT ARRAY_AGG(role_name) AS roles
FROM user_roles
JOIN roles USING (role_id)
WHERE user_id = $1`

// Roles returns the role names held by the user, empty when the user
// has none.
func (a *Authorizer) Roles(ctx context.Context, userID string) ([]string, error) {
	row, err := a.db.QueryRow(ctx, "auth.roles", rolesQuery, userID)
	if err != nil {
		return nil, err
	}
	return roleNames(row["roles"]), nil
}

// HasAnyRole reports whether the user holds at least one of the given
// roles. Lookup errors deny access rather than propagate.
func (a *Authorizer) HasAnyRole(ctx context.Context, userID string, roles ...string) bool {
	held, err := a.Roles(ctx, userID)
	if err != nil {
		return false
	}
	for _, h := range held {
		for _, want := range roles {
			if h == want {
				return true
			}
		}
	}
	return false
}

// roleNames normalizes the ARRAY_AGG result, which scans as []string
// from some drivers and []any from others. A user with no role rows
// aggregates to NULL.
func roleNames(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
