// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"testing"
)

func TestMe(t *testing.T) {
	store := &fakeStore{row: map[string]any{"user_id": "u1", "username": "marta"}}
	h, _, _ := newTestHandler(store, false)

	rec := doRequest(t, h.Me, http.MethodGet, "/api/user/me", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.gotID != "u1" {
		t.Errorf("user = %q", store.gotID)
	}
}

func TestUserInfoGated(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, false)

	rec := doRequest(t, h.UserInfo, http.MethodGet, "/api/user/info", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.called("ListProfiles") {
		t.Error("store reached despite failed role gate")
	}
}

func TestUpdateMeUsername(t *testing.T) {
	store := &fakeStore{row: map[string]any{"user_id": "u1"}}
	h, _, _ := newTestHandler(store, false)

	rec := doRequest(t, h.UpdateMe, http.MethodPost, "/api/user/me", `{"key":"username","value":"marta.r"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	want := []string{"u1", "username", "marta.r"}
	for i, w := range want {
		if store.gotStrings[i] != w {
			t.Errorf("arg %d = %q, want %q", i, store.gotStrings[i], w)
		}
	}
	if !store.called("GetProfile") {
		t.Error("updated profile not returned")
	}
}

func TestUpdateMeDepartment(t *testing.T) {
	store := &fakeStore{row: map[string]any{"user_id": "u1"}}
	h, _, _ := newTestHandler(store, false)

	body := `{"key":"department","value":{"previousId":2,"nextId":5}}`
	rec := doRequest(t, h.UpdateMe, http.MethodPost, "/api/user/me", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !store.called("SwitchDepartment") {
		t.Fatal("SwitchDepartment not called")
	}
	if ids := store.gotInt64s[0]; ids[0] != 2 || ids[1] != 5 {
		t.Errorf("ids = %v", ids)
	}
}

func TestUpdateMeUnknownKeyForbidden(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, false)

	rec := doRequest(t, h.UpdateMe, http.MethodPost, "/api/user/me", `{"key":"is_admin","value":"true"}`, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.calls) != 0 {
		t.Errorf("store calls = %v, want none", store.calls)
	}
}

func TestUpdateMembershipsGated(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, false)

	body := `{"userId":"u2","departments":[1],"roles":[2]}`
	rec := doRequest(t, h.UpdateMemberships, http.MethodPost, "/api/user/u/u2", body, map[string]string{"id": "u2"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateMemberships(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)

	body := `{"userId":"u2","departments":[1,3],"roles":[2]}`
	rec := doRequest(t, h.UpdateMemberships, http.MethodPost, "/api/user/u/u2", body, map[string]string{"id": "u2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.gotID != "u2" {
		t.Errorf("user = %q", store.gotID)
	}
	if deps := store.gotInt64s[0]; len(deps) != 2 || deps[1] != 3 {
		t.Errorf("departments = %v", deps)
	}
	if roles := store.gotInt64s[1]; len(roles) != 1 || roles[0] != 2 {
		t.Errorf("roles = %v", roles)
	}
}

func TestMyNotificationsUnprivileged(t *testing.T) {
	store := &fakeStore{rows: nil}
	h, _, _ := newTestHandler(store, false)

	rec := doRequest(t, h.MyNotifications, http.MethodGet, "/api/user/me/notifications", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.called("StaleEnquiries") {
		t.Error("enquiry alerts queried for unprivileged user")
	}
}

func TestMyNotificationsPrivileged(t *testing.T) {
	store := &fakeStore{
		rows: []map[string]any{{
			"response_id":        int64(11),
			"review_id":          int64(3),
			"manager_id":         "u1",
			"employee_id":        "e2",
			"manager_form_data":  map[string]any{},
			"employee_form_data": map[string]any{"done": true},
		}},
	}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.MyNotifications, http.MethodGet, "/api/user/me/notifications", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !store.called("PendingResponses") || !store.called("StaleEnquiries") {
		t.Errorf("calls = %v", store.calls)
	}

	resp := decodeEnvelope(t, rec)
	items := resp.Data.([]any)
	if len(items) == 0 {
		t.Fatal("expected a pending review notification")
	}
	first := items[0].(map[string]any)
	if first["icon"] != "calendar" {
		t.Errorf("icon = %v", first["icon"])
	}
}
