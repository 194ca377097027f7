// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/agencyops/huddle/internal/auth"
	"github.com/agencyops/huddle/internal/database"
)

// ListUsers returns the bare user directory.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rows, err := h.db.ListUsers(r.Context())
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

// Me returns the caller's profile with departments and roles.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	row, err := h.db.GetProfile(r.Context(), callerID(r))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

// UserInfo returns every user's full profile. Privileged.
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	rows, err := h.db.ListProfiles(r.Context())
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

// MyNotifications assembles the caller's notification feed: pending
// review responses for everyone, plus stale and incomplete enquiry
// alerts for privileged users.
func (h *Handler) MyNotifications(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := callerID(r)

	responses, err := h.db.PendingResponses(r.Context(), userID)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	notifications := database.BuildReviewNotifications(userID, responses)

	if h.authz.HasAnyRole(r.Context(), userID, auth.PipelineRoles...) {
		enquiries, err := h.db.StaleEnquiries(r.Context(), userID)
		if err != nil {
			rw.writeDomainError(err)
			return
		}
		notifications = append(notifications, database.BuildEnquiryNotifications(enquiries)...)
	}

	rw.Success(notifications)
}

type updateMeRequest struct {
	Key   string          `json:"key" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

type departmentSwitch struct {
	PreviousID int64 `json:"previousId"`
	NextID     int64 `json:"nextId"`
}

// UpdateMe applies one self-service profile change. Only username,
// email, and department are accepted; anything else is forbidden. The
// column written comes from this closed set, never from the payload.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := callerID(r)

	var req updateMeRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	switch req.Key {
	case "username", "email":
		var value string
		if err := json.Unmarshal(req.Value, &value); err != nil {
			rw.BadRequest("value must be a string")
			return
		}
		if err := h.db.UpdateUserField(r.Context(), userID, req.Key, value); err != nil {
			rw.writeDomainError(err)
			return
		}
	case "department":
		var move departmentSwitch
		if err := json.Unmarshal(req.Value, &move); err != nil {
			rw.BadRequest("value must carry previousId and nextId")
			return
		}
		if err := h.db.SwitchDepartment(r.Context(), userID, move.PreviousID, move.NextID); err != nil {
			rw.writeDomainError(err)
			return
		}
	default:
		rw.Forbidden()
		return
	}

	row, err := h.db.GetProfile(r.Context(), userID)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

// GetUser returns another user's profile.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	row, err := h.db.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

type updateMembershipsRequest struct {
	UserID      string  `json:"userId" validate:"required"`
	Departments []int64 `json:"departments"`
	Roles       []int64 `json:"roles"`
}

// UpdateMemberships replaces a user's department and role sets in one
// transaction. Privileged.
func (h *Handler) UpdateMemberships(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.RoleAdmin, auth.RoleDepartmentHead) {
		return
	}

	var req updateMembershipsRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	if err := h.db.ReplaceMemberships(r.Context(), req.UserID, req.Departments, req.Roles); err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]string{"message": "Update successful"})
}
