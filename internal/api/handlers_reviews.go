// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agencyops/huddle/internal/auth"
	"github.com/agencyops/huddle/internal/database"
)

// reviewManagerRoles may create reviews, schedule responses, and pull
// department reports.
var reviewManagerRoles = []string{auth.RoleAdmin, auth.RoleDepartmentHead}

// ListMyReviews returns reviews where the caller is manager or
// employee, newest first.
func (h *Handler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rows, err := h.db.ListMyReviews(r.Context(), callerID(r))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

type createReviewRequest struct {
	EmployeeID string         `json:"employeeId" validate:"required"`
	ManagerID  string         `json:"managerId" validate:"required"`
	Department string         `json:"department" validate:"required"`
	FormData   map[string]any `json:"formData"`
}

// CreateReview opens a review cycle for an employee.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, reviewManagerRoles...) {
		return
	}

	var req createReviewRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	row, err := h.db.CreateReview(r.Context(), req.EmployeeID, req.ManagerID, req.Department, req.FormData)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Created(row)
}

// GetReview returns one review with its responses aggregated into a
// JSON array.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	row, err := h.db.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

// DeleteReview removes a review cycle.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, reviewManagerRoles...) {
		return
	}

	if err := h.db.DeleteReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]string{"message": "Delete successful"})
}

// GetReviewForm returns just the review's form document.
func (h *Handler) GetReviewForm(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	row, err := h.db.GetReviewForm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

type updateFormRequest struct {
	FormData map[string]any `json:"formData" validate:"required"`
}

// UpdateReviewForm replaces the review's form document.
func (h *Handler) UpdateReviewForm(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req updateFormRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	row, err := h.db.UpdateReviewForm(r.Context(), chi.URLParam(r, "id"), req.FormData)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

type createResponseRequest struct {
	Date       string `json:"date" validate:"required"`
	EmployeeID string `json:"employeeId" validate:"required"`
}

// CreateResponse schedules a dated response slot under a review, with
// empty form documents for both sides. The caller becomes the manager.
func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, reviewManagerRoles...) {
		return
	}

	var req createResponseRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	row, err := h.db.CreateResponse(r.Context(), chi.URLParam(r, "id"), req.Date, callerID(r), req.EmployeeID)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Created(row)
}

type updateResponseRequest struct {
	Role     string         `json:"role" validate:"required,oneof=MANAGER EMPLOYEE"`
	FormData map[string]any `json:"formData" validate:"required"`
}

// UpdateResponse fills in one side of a response. Writing the manager
// side requires a manager role; the target column is chosen here, never
// from the payload.
func (h *Handler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req updateResponseRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	asManager := req.Role == "MANAGER"
	if asManager && !h.requireRole(rw, r, reviewManagerRoles...) {
		return
	}

	row, err := h.db.UpdateResponse(r.Context(), chi.URLParam(r, "id"), asManager, req.FormData)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

// DeleteResponse removes a response slot.
func (h *Handler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, reviewManagerRoles...) {
		return
	}

	if err := h.db.DeleteResponse(r.Context(), chi.URLParam(r, "id")); err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]string{"message": "Delete successful"})
}

// DepartmentReport aggregates a department's responses over a date
// range: metric sums, pillar scores, and free-text answers grouped by
// question. 404 when the range matches nothing.
func (h *Handler) DepartmentReport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, reviewManagerRoles...) {
		return
	}

	dept := chi.URLParam(r, "dept")
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		rw.BadRequest("start and end query parameters are required")
		return
	}

	rows, err := h.db.DepartmentReportRows(r.Context(), dept, start, end)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	if len(rows) == 0 {
		rw.NotFound("No matching results found for that date range")
		return
	}

	rw.Success(map[string]any{
		"department": dept,
		"start":      start,
		"end":        end,
		"data":       database.AggregateReport(rows),
		"rows":       rows,
	})
}
