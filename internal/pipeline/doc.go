// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package pipeline generates the SQL statements behind the sales-pipeline
// API: filtered list and export queries, single-record lookups, inserts,
// partial updates with their lead-association side statements, and the
// dashboard aggregation queries (overview, category breakdowns, channel
// breakdown, month-bucketed downloads).
//
// Every assembler is a pure function from a filter specification (a raw
// string map taken from the query string or request body) to one or more
// Statement values: SQL text with $1..$n placeholders plus the positionally
// ordered bind values. Nothing in this package performs I/O; execution,
// transaction wrapping and row serialization belong to the caller
// (internal/database).
//
// Filter values are always parameter-bound. Fields whose raw values need
// decomposition (comma lists, "A AND B" ranges, the "!" negation prefix)
// are decomposed in Go and each piece is bound; no caller-supplied text is
// ever interpolated into statement text. Unrecognized filter fields are
// silently ignored - that is contract, not leniency.
package pipeline
