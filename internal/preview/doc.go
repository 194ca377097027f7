// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package preview renders branded one-page proposal preview PDFs and
// publishes them to object storage. Rendering is local and cheap; the
// upload path sits behind a circuit breaker because S3 outages should
// fail fast rather than stack up request goroutines.
package preview
