// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package api is the HTTP surface: routing, request decoding, the
// response envelope, and one handler file per domain (pipeline, forum,
// reviews, users, preview). Handlers depend on small interfaces so
// tests run against fakes instead of a database.
package api
