// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package supervisor builds the suture supervision tree the server runs
// under. Services restart with backoff on failure; supervisor events
// flow into the structured log through sutureslog.
package supervisor
