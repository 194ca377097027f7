// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// deptCTE aggregates each user's departments into one JSON array.
const deptCTE = `dept AS (
  SELECT
    ud.user_id AS user_id,
    JSON_AGG(ROW_TO_JSON(d)) AS departments
  FROM user_departments ud
  JOIN departments d ON d.department_id = ud.department_id
  GROUP BY ud.user_id
)`

// roleCTE aggregates each user's roles into one JSON array.
const roleCTE = `user_role AS (
  SELECT
    ur.user_id AS user_id,
    JSON_AGG(ROW_TO_JSON(r)) AS roles
  FROM user_roles ur
  JOIN roles r ON r.role_id = ur.role_id
  GROUP BY ur.user_id
)`

// ListUsers returns every user with their department list, ordered by
// username.
func (s *Store) ListUsers(ctx context.Context) ([]map[string]any, error) {
	q := fmt.Sprintf(`WITH %s
SELECT
  u.user_id,
  username,
  (SELECT departments FROM dept WHERE dept.user_id = u.user_id)
FROM users u
ORDER BY username`, deptCTE)

	return s.Query(ctx, "users.list", q)
}

// GetProfile returns one user with departments and roles attached.
func (s *Store) GetProfile(ctx context.Context, userID string) (map[string]any, error) {
	q := fmt.Sprintf(`WITH %s,
%s
SELECT
  u.user_id,
  username,
  email,
  (SELECT departments FROM dept WHERE dept.user_id = u.user_id),
  (SELECT roles FROM user_role WHERE user_role.user_id = u.user_id)
FROM users u
WHERE u.user_id = $1`, deptCTE, roleCTE)

	return s.QueryRow(ctx, "users.profile", q, userID)
}

// ListProfiles returns every user with departments and roles attached.
func (s *Store) ListProfiles(ctx context.Context) ([]map[string]any, error) {
	q := fmt.Sprintf(`WITH %s,
%s
SELECT
  u.user_id,
  username,
  email,
  (SELECT departments FROM dept WHERE dept.user_id = u.user_id),
  (SELECT roles FROM user_role WHERE user_role.user_id = u.user_id)
FROM users u`, deptCTE, roleCTE)

	return s.Query(ctx, "users.profiles", q)
}

// GetUser returns the public shape of one user: username and departments.
func (s *Store) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	q := fmt.Sprintf(`WITH %s
SELECT
  u.user_id,
  username,
  (SELECT departments FROM dept WHERE dept.user_id = u.user_id)
FROM users u
WHERE u.user_id = $1`, deptCTE)

	return s.QueryRow(ctx, "users.get", q, userID)
}

// UpdateUserField sets the user's username or email. The column comes
// from the handler's closed key set, never from request input.
func (s *Store) UpdateUserField(ctx context.Context, userID, column, value string) error {
	q := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE user_id = $2`, column)
	_, err := s.Exec(ctx, "users.update."+column, q, value, userID)
	return err
}

// SwitchDepartment moves the user from one department to another.
func (s *Store) SwitchDepartment(ctx context.Context, userID string, previousID, nextID int64) error {
	return s.ExecTx(ctx, "users.department.switch", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM user_departments WHERE user_id = $1 AND department_id = $2`,
			userID, previousID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO user_departments(user_id, department_id) VALUES ($1, $2)`,
			userID, nextID)
		return err
	})
}

// ReplaceMemberships fully replaces a user's department and role sets in
// one transaction: delete everything, then batch re-insert from bound
// arrays.
func (s *Store) ReplaceMemberships(ctx context.Context, userID string, departments, roles []int64) error {
	return s.ExecTx(ctx, "users.memberships.replace", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_departments WHERE user_id = $1`, userID); err != nil {
			return err
		}
		if len(departments) > 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_departments(user_id, department_id) SELECT $1, unnest($2::int[])`,
				userID, departments); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
			return err
		}
		if len(roles) > 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_roles(user_id, role_id) SELECT $1, unnest($2::int[])`,
				userID, roles); err != nil {
				return err
			}
		}
		return nil
	})
}

// PendingResponses returns the review responses the user participates in,
// for notification shaping.
func (s *Store) PendingResponses(ctx context.Context, userID string) ([]map[string]any, error) {
	const q = `SELECT * FROM review_responses WHERE manager_id = $1 OR employee_id = $1`
	return s.Query(ctx, "users.responses", q, userID)
}

// StaleEnquiries returns the user's open enquiries that have not been
// touched in over a day, with each channel's 12-month value and the days
// since the last update.
func (s *Store) StaleEnquiries(ctx context.Context, userID string) ([]map[string]any, error) {
	const q = `SELECT
  DISTINCT id,
  company_name,
  channels,
  ppc_12mv,
  seo_12mv,
  content_12mv,
  email_12mv,
  social_12mv,
  creative_12mv,
  cro_12mv,
  analytics_12mv,
  DATE_PART('day', NOW() - last_updated) AS time_difference
FROM proposal_leads
JOIN pipeline ON pipeline.id = enquiry_id
CROSS JOIN LATERAL jsonb_each(channel_data) channels
WHERE (value @> '{"status":"Open"}' OR status = 'Open')
  AND user_id = $1
  AND last_updated < NOW() - INTERVAL '1 days'
GROUP BY id`

	return s.Query(ctx, "users.stale_enquiries", q, userID)
}
