// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"testing"
)

func TestCreatePreview(t *testing.T) {
	store := &fakeStore{}
	h, _, pv := newTestHandler(store, false)

	body := `{"heading":"A proposal for","recipient":"Acme Widgets","content":["one","two"],"marginTop":-10}`
	rec := doRequest(t, h.CreatePreview, http.MethodPost, "/api/preview", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if pv.gotID != "u1" {
		t.Errorf("user = %q", pv.gotID)
	}
	if pv.gotDoc.Recipient != "Acme Widgets" || len(pv.gotDoc.Content) != 2 {
		t.Errorf("doc = %+v", pv.gotDoc)
	}

	resp := decodeEnvelope(t, rec)
	data := resp.Data.(map[string]any)
	if data["uri"] != pv.uri {
		t.Errorf("uri = %v", data["uri"])
	}
}

func TestCreatePreviewMissingFields(t *testing.T) {
	store := &fakeStore{}
	h, _, pv := newTestHandler(store, false)

	rec := doRequest(t, h.CreatePreview, http.MethodPost, "/api/preview", `{"content":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if pv.gotID != "" {
		t.Error("preview service reached with invalid payload")
	}
}

func TestCreatePreviewStorageFailure(t *testing.T) {
	store := &fakeStore{}
	h, _, pv := newTestHandler(store, false)
	pv.err = errors.New("bucket unreachable")
	pv.uri = ""

	body := `{"heading":"h","recipient":"r"}`
	rec := doRequest(t, h.CreatePreview, http.MethodPost, "/api/preview", body, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error.Code != ErrCodeStorageError {
		t.Errorf("code = %q", resp.Error.Code)
	}
}
