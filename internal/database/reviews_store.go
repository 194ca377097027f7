// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"context"
)

// ListMyReviews returns the reviews the user participates in, either as
// manager or as employee, newest first.
func (s *Store) ListMyReviews(ctx context.Context, userID string) ([]map[string]any, error) {
	const q = `SELECT
  review_id,
  manager_id,
  employee_id,
  u1.username AS manager_name,
  u2.username AS employee_name,
  department,
  form_data,
  created_on
FROM reviews
JOIN users u1 ON manager_id = u1.user_id
JOIN users u2 ON employee_id = u2.user_id
WHERE manager_id = $1 OR employee_id = $1
ORDER BY created_on DESC`

	return s.Query(ctx, "reviews.list", q, userID)
}

// CreateReview inserts a review and returns the created record.
func (s *Store) CreateReview(ctx context.Context, employeeID, managerID, department string, formData map[string]any) (map[string]any, error) {
	const q = `INSERT INTO reviews (employee_id, manager_id, department, form_data)
VALUES ($1, $2, $3, $4)
RETURNING *`

	return s.QueryRow(ctx, "reviews.create", q, employeeID, managerID, department, formData)
}

// GetReview returns a review with its responses aggregated into one JSON
// array.
func (s *Store) GetReview(ctx context.Context, reviewID string) (map[string]any, error) {
	const q = `SELECT
  review_id,
  u1.username AS manager_name,
  u2.username AS employee_name,
  manager_id,
  employee_id,
  department,
  form_data,
  (
    SELECT JSON_AGG(ROW_TO_JSON(review_responses))
    FROM review_responses
    WHERE review_id = $1
  ) AS responses
FROM reviews
JOIN users u1 ON manager_id = u1.user_id
JOIN users u2 ON employee_id = u2.user_id
WHERE review_id = $1`

	return s.QueryRow(ctx, "reviews.get", q, reviewID)
}

// DeleteReview removes a review; its responses cascade.
func (s *Store) DeleteReview(ctx context.Context, reviewID string) error {
	_, err := s.Exec(ctx, "reviews.delete", `DELETE FROM reviews WHERE review_id = $1`, reviewID)
	return err
}

// GetReviewForm returns the review header and form template without the
// responses.
func (s *Store) GetReviewForm(ctx context.Context, reviewID string) (map[string]any, error) {
	const q = `SELECT
  review_id,
  u1.username AS manager_name,
  u2.username AS employee_name,
  manager_id,
  employee_id,
  department,
  form_data
FROM reviews
JOIN users u1 ON manager_id = u1.user_id
JOIN users u2 ON employee_id = u2.user_id
WHERE review_id = $1`

	return s.QueryRow(ctx, "reviews.form.get", q, reviewID)
}

// UpdateReviewForm replaces a review's form template.
func (s *Store) UpdateReviewForm(ctx context.Context, reviewID string, data map[string]any) (map[string]any, error) {
	const q = `UPDATE reviews SET form_data = $1 WHERE review_id = $2 RETURNING *`
	return s.QueryRow(ctx, "reviews.form.update", q, data, reviewID)
}

// CreateResponse opens a dated response slot on a review. Both form
// documents start empty; the manager and employee fill them in later.
func (s *Store) CreateResponse(ctx context.Context, reviewID, reviewDate, managerID, employeeID string) (map[string]any, error) {
	const q = `INSERT INTO review_responses (review_id, review_date, manager_form_data, employee_form_data, manager_id, employee_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING *`

	return s.QueryRow(ctx, "reviews.response.create", q,
		reviewID, reviewDate, map[string]any{}, map[string]any{}, managerID, employeeID)
}

// UpdateResponse writes one side's form document. asManager selects which
// column is replaced.
func (s *Store) UpdateResponse(ctx context.Context, responseID string, asManager bool, formData map[string]any) (map[string]any, error) {
	column := "employee_form_data"
	if asManager {
		column = "manager_form_data"
	}
	q := `UPDATE review_responses SET ` + column + ` = $1 WHERE response_id = $2 RETURNING *`

	return s.QueryRow(ctx, "reviews.response.update", q, formData, responseID)
}

// DeleteResponse removes a response slot.
func (s *Store) DeleteResponse(ctx context.Context, responseID string) error {
	_, err := s.Exec(ctx, "reviews.response.delete", `DELETE FROM review_responses WHERE response_id = $1`, responseID)
	return err
}

// DepartmentReportRows fetches every response in a department over a date
// range, with the employee's username and both form documents.
func (s *Store) DepartmentReportRows(ctx context.Context, department, start, end string) ([]map[string]any, error) {
	const q = `SELECT
  username AS employee,
  review_date,
  department,
  manager_form_data,
  employee_form_data
FROM review_responses
JOIN reviews ON reviews.review_id = review_responses.review_id
JOIN users ON users.user_id = review_responses.employee_id
WHERE review_date BETWEEN $1 AND $2
  AND department = $3`

	return s.Query(ctx, "reviews.report", q, start, end, department)
}
