// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"testing"

	"github.com/agencyops/huddle/internal/database"
	"github.com/agencyops/huddle/internal/pipeline"
)

func TestListEnquiries(t *testing.T) {
	store := &fakeStore{rows: []map[string]any{{"id": "e1", "company_name": "Acme"}}}
	h, authz, _ := newTestHandler(store, true)

	rec := doRequest(t, h.ListEnquiries, http.MethodGet, "/api/pipeline?country=UK&offset=20", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !store.gotPaginate {
		t.Error("list should paginate")
	}
	if store.gotFilter["country"] != "UK" || store.gotFilter["offset"] != "20" {
		t.Errorf("filter = %v", store.gotFilter)
	}
	if len(authz.gotRoles) != 3 {
		t.Errorf("role gate roles = %v", authz.gotRoles)
	}
}

func TestListEnquiriesForbidden(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, false)

	rec := doRequest(t, h.ListEnquiries, http.MethodGet, "/api/pipeline", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.called("ListEnquiries") {
		t.Error("store reached despite failed role gate")
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeForbidden {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestExportEnquiriesUnpaginated(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.ExportEnquiries, http.MethodGet, "/api/pipeline/export", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.gotPaginate {
		t.Error("export must not paginate")
	}
}

func TestGetEnquiryNotFound(t *testing.T) {
	store := &fakeStore{err: database.ErrNotFound}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.GetEnquiry, http.MethodGet, "/api/pipeline/e/e9", "", map[string]string{"id": "e9"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestCreateEnquiryValidation(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)

	// company_name and date_added are required.
	rec := doRequest(t, h.CreateEnquiry, http.MethodPost, "/api/pipeline", `{"country":"UK"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.called("CreateEnquiry") {
		t.Error("store reached with invalid payload")
	}
}

func TestCreateEnquiry(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)

	body := `{"company_name":"Acme Widgets","date_added":"2026-08-01","channels":["SEO"]}`
	rec := doRequest(t, h.CreateEnquiry, http.MethodPost, "/api/pipeline", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateEnquiryMalformedRange(t *testing.T) {
	store := &fakeStore{err: &pipeline.ValidationError{Field: "date_added", Reason: "range must use AND separator"}}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.UpdateEnquiry, http.MethodPost, "/api/pipeline/e/e1", `{"status":"Won"}`, map[string]string{"id": "e1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("code = %q", resp.Error.Code)
	}
}

func TestUpdateEnquiryPassesChanges(t *testing.T) {
	store := &fakeStore{row: map[string]any{"id": "e1", "status": "Won"}}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.UpdateEnquiry, http.MethodPost, "/api/pipeline/e/e1", `{"status":"Won","won_revenue":"12000"}`, map[string]string{"id": "e1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.gotID != "e1" || store.gotChanges["status"] != "Won" {
		t.Errorf("id = %q, changes = %v", store.gotID, store.gotChanges)
	}
}

func TestDeleteEnquiry(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.DeleteEnquiry, http.MethodDelete, "/api/pipeline/e/e1", "", map[string]string{"id": "e1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.gotID != "e1" {
		t.Errorf("id = %q", store.gotID)
	}
}

func TestSplitOverview(t *testing.T) {
	data := []map[string]any{
		{"total": int64(10)},
		{"duration": "Recurring", "total": int64(6)},
		{"duration": "Once Off", "total": int64(4)},
	}
	comparison := []map[string]any{
		{"total": int64(3)},
		{"duration": "Recurring", "total": int64(3)},
	}

	out := splitOverview(data, comparison)
	overview := out["overview"].(map[string]any)
	if overview["total"] != int64(10) {
		t.Errorf("overview = %v", overview)
	}
	if got := out["breakdown"].([]map[string]any); len(got) != 2 {
		t.Errorf("breakdown rows = %d", len(got))
	}
	if got := out["breakdownComparison"].([]map[string]any); len(got) != 1 {
		t.Errorf("comparison breakdown rows = %d", len(got))
	}
}

func TestSplitOverviewEmpty(t *testing.T) {
	out := splitOverview(nil, nil)
	if got := out["breakdown"].([]map[string]any); len(got) != 0 {
		t.Errorf("breakdown = %v", got)
	}
}

func TestDashboardOverview(t *testing.T) {
	store := &fakeStore{rows: []map[string]any{{"total": int64(5)}}}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.DashboardOverview, http.MethodGet, "/api/pipeline/dashboard/overview?date_added=2026-01-01%20AND%202026-06-30", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !store.called("DashboardOverview") {
		t.Error("store not reached")
	}
}

func TestDownloadEndpoints(t *testing.T) {
	store := &fakeStore{rows: []map[string]any{{"date": "2026-08-01"}}}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.DownloadDashboardOverview, http.MethodGet, "/api/pipeline/dashboard/overview/download", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview download status = %d", rec.Code)
	}
	rec = doRequest(t, h.DownloadDashboardBreakdown, http.MethodGet, "/api/pipeline/dashboard/breakdown/download", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("breakdown download status = %d", rec.Code)
	}
	if !store.called("DownloadOverview") || !store.called("DownloadBreakdown") {
		t.Errorf("calls = %v", store.calls)
	}
}
