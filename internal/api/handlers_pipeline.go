// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agencyops/huddle/internal/auth"
	"github.com/agencyops/huddle/internal/pipeline"
)

// ListEnquiries returns a filtered, paginated page of the pipeline.
// Each row carries a window total for the client's pager.
func (h *Handler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	rows, err := h.db.ListEnquiries(r.Context(), filterFromQuery(r.URL.Query()), true)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

// ExportEnquiries returns the full filtered pipeline without paging,
// ordered by company name for spreadsheet export.
func (h *Handler) ExportEnquiries(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	rows, err := h.db.ListEnquiries(r.Context(), filterFromQuery(r.URL.Query()), false)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

// GetEnquiry returns one enquiry with its lead associations.
func (h *Handler) GetEnquiry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	row, err := h.db.GetEnquiry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

// CreateEnquiry inserts a new enquiry. Status starts Open and
// last_updated is server-assigned regardless of the payload.
func (h *Handler) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	var in pipeline.EnquiryInput
	if !decodeJSON(rw, r, &in) {
		return
	}

	if err := h.db.CreateEnquiry(r.Context(), in); err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Created(map[string]string{"message": "Enquiry created"})
}

// UpdateEnquiry applies a partial update. Lead changes and column
// changes run in one transaction; unknown keys are ignored.
func (h *Handler) UpdateEnquiry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	changes := map[string]any{}
	if !decodeJSON(rw, r, &changes) {
		return
	}

	row, err := h.db.UpdateEnquiry(r.Context(), chi.URLParam(r, "id"), changes)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

// DeleteEnquiry removes an enquiry and its lead associations.
func (h *Handler) DeleteEnquiry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	if err := h.db.DeleteEnquiry(r.Context(), chi.URLParam(r, "id")); err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]string{"message": "Delete successful"})
}

// DashboardOverview returns the headline metrics row plus the duration
// and client type breakdowns, with a comparison period when compare_to
// is present.
func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	data, comparison, err := h.db.DashboardOverview(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(splitOverview(data, comparison))
}

// splitOverview shapes the concatenated store rows back into the
// overview-plus-breakdown payload the dashboard consumes. The first row
// of each set is the ungrouped overview.
func splitOverview(data, comparison []map[string]any) map[string]any {
	out := map[string]any{
		"overview":            map[string]any(nil),
		"breakdown":           []map[string]any{},
		"overviewComparison":  map[string]any(nil),
		"breakdownComparison": []map[string]any{},
	}
	if len(data) > 0 {
		out["overview"] = data[0]
		out["breakdown"] = data[1:]
	}
	if len(comparison) > 0 {
		out["overviewComparison"] = comparison[0]
		out["breakdownComparison"] = comparison[1:]
	}
	return out
}

// DashboardChannels returns the per-channel metric breakdown.
func (h *Handler) DashboardChannels(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	data, comparison, err := h.db.DashboardChannels(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]any{"breakdown": data, "comparison": comparison})
}

// DownloadDashboardOverview returns month-bucketed overview rows for
// export, most recent month first.
func (h *Handler) DownloadDashboardOverview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	rows, err := h.db.DownloadOverview(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

// DownloadDashboardBreakdown returns the month-bucketed export with the
// duration sub-grouping.
func (h *Handler) DownloadDashboardBreakdown(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.requireRole(rw, r, auth.PipelineRoles...) {
		return
	}

	rows, err := h.db.DownloadBreakdown(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}
