// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is one executable SQL statement: text referencing $1..$n
// placeholders plus the bind values in placeholder order.
type Statement struct {
	Text string
	Args []any
}

// ValidationError reports a filter or input value that cannot be translated
// into a predicate. The API layer maps it to a 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %q: %s", e.Field, e.Reason)
}

// clauseBuilder accumulates WHERE predicates and their bind values. bind
// appends a value and returns its placeholder, keeping placeholder indices
// contiguous and aligned with the args slice.
type clauseBuilder struct {
	clauses []string
	args    []any
}

func (b *clauseBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *clauseBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

// where renders the accumulated predicates. An empty filter yields an empty
// clause, which matches every row.
func (b *clauseBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.clauses, " AND ")
}

// placeholderList renders "$from, $from+1, ..., $to" for fixed-position
// VALUES lists.
func placeholderList(from, to int) string {
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		parts = append(parts, "$"+strconv.Itoa(i))
	}
	return strings.Join(parts, ", ")
}
