// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"strings"
	"testing"
)

func TestBuildReviewNotifications(t *testing.T) {
	responses := []map[string]any{
		{
			// Pending for the manager: their form is still empty.
			"review_id":          int32(3),
			"response_id":        int32(11),
			"manager_id":         "u-1",
			"employee_id":        "u-2",
			"manager_form_data":  map[string]any{},
			"employee_form_data": map[string]any{"done": true},
		},
		{
			// Already filled in by the manager.
			"review_id":          int32(4),
			"response_id":        int32(12),
			"manager_id":         "u-1",
			"employee_id":        "u-3",
			"manager_form_data":  map[string]any{"metrics": map[string]any{}},
			"employee_form_data": map[string]any{},
		},
	}

	got := BuildReviewNotifications("u-1", responses)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1: %+v", len(got), got)
	}
	if got[0].Icon != "calendar" {
		t.Errorf("icon = %q", got[0].Icon)
	}
	if got[0].ActionURL != "/user/monthly-reviews/r/3/response/11" {
		t.Errorf("actionUrl = %q", got[0].ActionURL)
	}
}

func TestBuildReviewNotificationsEmployeeSide(t *testing.T) {
	responses := []map[string]any{
		{
			"review_id":          int32(5),
			"response_id":        int32(20),
			"manager_id":         "u-9",
			"employee_id":        "u-1",
			"manager_form_data":  map[string]any{"x": 1},
			"employee_form_data": map[string]any{},
		},
	}

	if got := BuildReviewNotifications("u-1", responses); len(got) != 1 {
		t.Fatalf("employee-side pending response missed: %+v", got)
	}
	if got := BuildReviewNotifications("u-2", responses); len(got) != 0 {
		t.Fatalf("uninvolved user received notifications: %+v", got)
	}
}

func TestBuildEnquiryNotificationsStale(t *testing.T) {
	rows := []map[string]any{
		{
			"id":              int32(7),
			"company_name":    "Acme Ltd",
			"channels":        []string{"SEO"},
			"seo_12mv":        float64(1000),
			"time_difference": float64(9),
		},
	}

	got := BuildEnquiryNotifications(rows)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1: %+v", len(got), got)
	}
	if got[0].Icon != "bell" || got[0].IconColour != "orange" {
		t.Errorf("notification = %+v", got[0])
	}
	if !strings.Contains(got[0].Text, "Acme Ltd") || !strings.Contains(got[0].Text, "9 days") {
		t.Errorf("text = %q", got[0].Text)
	}
	if got[0].ActionURL != "/pipeline/e/7" {
		t.Errorf("actionUrl = %q", got[0].ActionURL)
	}
}

func TestBuildEnquiryNotificationsMissingValue(t *testing.T) {
	rows := []map[string]any{
		{
			"id":              int32(8),
			"company_name":    "Beta Co",
			"channels":        []any{"SEO", "PPC"},
			"seo_12mv":        float64(500),
			"ppc_12mv":        nil,
			"time_difference": float64(2),
		},
	}

	got := BuildEnquiryNotifications(rows)
	if len(got) != 1 {
		t.Fatalf("got %d notifications, want 1: %+v", len(got), got)
	}
	if got[0].Icon != "warning-2" {
		t.Errorf("icon = %q", got[0].Icon)
	}
	if !strings.Contains(got[0].Text, "missing 12M value for PPC") {
		t.Errorf("text = %q", got[0].Text)
	}
}

func TestBuildEnquiryNotificationsFreshComplete(t *testing.T) {
	rows := []map[string]any{
		{
			"id":              int32(9),
			"company_name":    "Gamma",
			"channels":        []string{"Email"},
			"email_12mv":      float64(100),
			"time_difference": float64(3),
		},
	}
	if got := BuildEnquiryNotifications(rows); len(got) != 0 {
		t.Errorf("fresh complete enquiry produced notifications: %+v", got)
	}
}
