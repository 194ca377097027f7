// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package middleware provides HTTP middleware shared by every route:
// request ID propagation and Prometheus instrumentation. All middleware
// uses the standard func(http.Handler) http.Handler shape so it can be
// mounted directly on a chi router.
package middleware
