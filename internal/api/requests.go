// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"net/url"
	"reflect"

	"github.com/goccy/go-json"

	"github.com/agencyops/huddle/internal/pipeline"
	"github.com/agencyops/huddle/internal/validation"
)

// maxRequestBody caps request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// decodeJSON parses the body into dst and runs struct validation when
// dst carries validate tags. Writes the error response itself and
// reports whether decoding succeeded.
func decodeJSON(rw *ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return false
	}

	// Partial-update payloads decode into maps; only structs carry
	// validate tags.
	if reflect.Indirect(reflect.ValueOf(dst)).Kind() == reflect.Struct {
		if verr := validation.ValidateStruct(dst); verr != nil {
			apiErr := verr.ToAPIError()
			rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
			return false
		}
	}
	return true
}

// filterFromQuery flattens query parameters into a pipeline filter,
// first value wins. Unknown keys pass through; the assemblers ignore
// anything outside their whitelist.
func filterFromQuery(values url.Values) pipeline.Filter {
	f := pipeline.Filter{}
	for key, vals := range values {
		if len(vals) > 0 && vals[0] != "" {
			f[key] = vals[0]
		}
	}
	return f
}
