// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package auth extracts the caller's identity from the bearer token that
// the API gateway attaches to every request and answers role questions
// against the database.
//
// Signature verification happens upstream at the gateway, so the token
// here is parsed without verification and treated as a trusted envelope
// for the subject claim. Running the server without that gateway in
// front of it is not supported.
package auth
