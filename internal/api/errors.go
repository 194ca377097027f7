// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"errors"

	"github.com/agencyops/huddle/internal/database"
	"github.com/agencyops/huddle/internal/pipeline"
)

// writeDomainError maps store and assembler failures onto the envelope:
// filter validation failures become 400s, missing records 404s, and
// everything else an opaque database 500.
func (rw *ResponseWriter) writeDomainError(err error) {
	var verr *pipeline.ValidationError
	switch {
	case errors.As(err, &verr):
		rw.ValidationError(verr.Error(), map[string]string{
			"field":  verr.Field,
			"reason": verr.Reason,
		})
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound("record not found")
	default:
		rw.DatabaseError(err)
	}
}
