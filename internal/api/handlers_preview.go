// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/agencyops/huddle/internal/preview"
)

// CreatePreview renders the caller's proposal preview PDF and publishes
// it, returning the public URI. Each user has one preview slot that
// successive calls overwrite.
func (h *Handler) CreatePreview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var doc preview.Document
	if !decodeJSON(rw, r, &doc) {
		return
	}

	uri, err := h.preview.CreatePreview(r.Context(), callerID(r), doc)
	if err != nil {
		rw.StorageError(err)
		return
	}
	rw.Success(map[string]string{"uri": uri})
}
