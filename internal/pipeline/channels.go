// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package pipeline

import "strings"

// Channel is one of the fixed service categories an enquiry can be pursued
// through. Each channel owns a numeric 12-month-value column on the pipeline
// table and a same-named sub-record inside the channel_data JSON document.
type Channel struct {
	// Name is the canonical display name and the channel_data JSON key.
	Name string

	// Column is the 12-month-value column on the pipeline table.
	Column string
}

// Channels is the closed set of sales channels in display order. All
// aggregation assemblers derive both column names and JSON keys from this
// table; there is no per-query channel switch.
var Channels = []Channel{
	{Name: "Analytics", Column: "analytics_12mv"},
	{Name: "CRO", Column: "cro_12mv"},
	{Name: "Content", Column: "content_12mv"},
	{Name: "Creative", Column: "creative_12mv"},
	{Name: "Email", Column: "email_12mv"},
	{Name: "PPC", Column: "ppc_12mv"},
	{Name: "SEO", Column: "seo_12mv"},
	{Name: "Social", Column: "social_12mv"},
}

// canonicalChannel normalizes a channel token to its canonical casing.
// Unknown tokens are returned trimmed but otherwise untouched so that a
// non-matching filter simply matches no rows.
func canonicalChannel(token string) string {
	t := strings.TrimSpace(token)
	for _, c := range Channels {
		if strings.EqualFold(c.Name, t) {
			return c.Name
		}
	}
	return t
}
