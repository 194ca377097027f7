// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Notification is one item in a user's notification feed.
type Notification struct {
	Icon       string `json:"icon"`
	Text       string `json:"text"`
	ActionURL  string `json:"actionUrl"`
	IconColour string `json:"iconColour,omitempty"`
}

// staleEnquiryDays is how many days without an update before an open
// enquiry produces a notification.
const staleEnquiryDays = 7

// BuildReviewNotifications turns pending review responses into calendar
// prompts. A response is pending for the user when their side of the form
// is still empty.
func BuildReviewNotifications(userID string, responses []map[string]any) []Notification {
	var out []Notification
	for _, r := range responses {
		managerPending := r["manager_id"] == userID && emptyDocument(r["manager_form_data"])
		employeePending := r["employee_id"] == userID && emptyDocument(r["employee_form_data"])
		if !managerPending && !employeePending {
			continue
		}

		out = append(out, Notification{
			Icon: "calendar",
			Text: "A monthly review is ready for your input",
			ActionURL: fmt.Sprintf("/user/monthly-reviews/r/%v/response/%v",
				r["review_id"], r["response_id"]),
		})
	}
	return out
}

// BuildEnquiryNotifications turns stale-enquiry rows into alerts: a bell
// when the enquiry has sat untouched for a week, and a warning per active
// channel still missing its 12-month value.
func BuildEnquiryNotifications(rows []map[string]any) []Notification {
	var out []Notification
	for _, row := range rows {
		company, _ := row["company_name"].(string)
		action := fmt.Sprintf("/pipeline/e/%v", row["id"])

		if days := numeric(row["time_difference"]); days >= staleEnquiryDays {
			out = append(out, Notification{
				Icon:       "bell",
				Text:       fmt.Sprintf("An enquiry for %s has not been updated in %.0f days", company, days),
				ActionURL:  action,
				IconColour: "orange",
			})
		}

		for _, channel := range stringSlice(row["channels"]) {
			if numeric(row[strings.ToLower(channel)+"_12mv"]) != 0 {
				continue
			}
			out = append(out, Notification{
				Icon:       "warning-2",
				Text:       fmt.Sprintf("An enquiry for %s is missing 12M value for %s", company, channel),
				ActionURL:  action,
				IconColour: "orange",
			})
		}
	}
	return out
}

// emptyDocument reports whether a JSONB value decoded from the database is
// an empty object (or absent).
func emptyDocument(v any) bool {
	doc, ok := v.(map[string]any)
	if !ok {
		return v == nil
	}
	return len(doc) == 0
}

// numeric flattens the numeric types pgx may hand back for a NUMERIC or
// DATE_PART column. Anything non-numeric reads as zero.
func numeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return 0
		}
		return f.Float64
	default:
		return 0
	}
}

// stringSlice flattens a text[] value, which pgx may return as []string or
// []any.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
