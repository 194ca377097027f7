// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package database is the PostgreSQL data layer.
//
// A Store wraps a pgxpool.Pool and exposes generic Query/QueryRow/Exec
// pass-throughs plus ExecTx for multi-statement transactions. Result rows
// come back as []map[string]any keyed by column name, which maps directly
// onto the API's JSON payload shapes.
//
// Domain access is organized into per-module files:
//
//   - pipeline_store.go: sales pipeline enquiries and dashboards
//   - forum_store.go: posts, threaded comments, vote toggling
//   - reviews_store.go: employee reviews, responses, department reports
//   - users_store.go: users, departments, roles, notifications
//
// Statement text for the pipeline module is produced by the
// internal/pipeline assemblers; the other modules keep their SQL inline
// here. Every query records its duration in Prometheus under an
// operation label such as "pipeline.list".
package database
