// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/agencyops/huddle/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema applies the embedded DDL. Every statement is idempotent
// (CREATE ... IF NOT EXISTS), so this is safe to run on every startup.
// Statements run one at a time; pgx's extended protocol rejects
// multi-statement strings.
func (s *Store) EnsureSchema(ctx context.Context) error {
	var applied int
	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", applied+1, err)
		}
		applied++
	}

	logging.Info().Int("statements", applied).Msg("schema ensured")
	return nil
}

// splitStatements breaks the schema script into individual statements,
// dropping comment lines and blanks. The script contains no procedural
// bodies, so a plain semicolon split is sufficient.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var statements []string
	for _, raw := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt := strings.TrimSpace(raw); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
