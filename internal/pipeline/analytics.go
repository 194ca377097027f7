// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"strings"
)

// GroupBy selects the derived category a dashboard breakdown groups on.
type GroupBy string

const (
	// GroupDuration buckets enquiries into Recurring vs Once Off based on
	// whether any channel sub-record carries an "Ongoing" duration tag.
	GroupDuration GroupBy = "duration"

	// GroupClientType buckets enquiries into New vs Existing clients.
	GroupClientType GroupBy = "client_type"
)

// analyticsFields are the filter fields the aggregation queries honour, in
// application order. Everything else in the filter specification is ignored
// here, including pagination keys.
var analyticsFields = []string{"date_added", "date_closed", "outcome", "duration", "status"}

// buildAnalyticsFilter translates the filter specification into the WHERE
// clause shared by the aggregation shapes. When comparison is set and the
// specification carries a compare_to range, that range replaces the value
// of whichever date field is present, producing the comparison-period
// variant of the same query.
func buildAnalyticsFilter(f Filter, comparison bool) (*clauseBuilder, error) {
	b := &clauseBuilder{}

	for _, field := range analyticsFields {
		raw, ok := f[field]
		if !ok {
			continue
		}

		switch field {
		case "date_added", "date_closed":
			if comparison && f["compare_to"] != "" {
				raw = f["compare_to"]
			}
			if err := applyDateRange(field)(b, raw); err != nil {
				return nil, err
			}
		case "outcome":
			ph := b.bind(raw)
			b.add(outcomeParamExpr(ph))
		case "duration":
			ph := b.bind(raw)
			b.add(durationParamExpr(ph))
		case "status":
			b.add(fmt.Sprintf("status = %s", b.bind(raw)))
		}
	}

	return b, nil
}

// outcomeParamExpr matches the bound outcome against the top-level column
// or any channel sub-record, reusing one placeholder.
func outcomeParamExpr(ph string) string {
	terms := make([]string, 0, len(Channels)+1)
	terms = append(terms, fmt.Sprintf("outcome = %s", ph))
	for _, c := range Channels {
		terms = append(terms, fmt.Sprintf("channel_data->'%s'->>'outcome' = %s", c.Name, ph))
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// durationParamExpr matches the bound duration tag against every channel
// sub-record, reusing one placeholder.
func durationParamExpr(ph string) string {
	terms := make([]string, 0, len(Channels))
	for _, c := range Channels {
		terms = append(terms, fmt.Sprintf("channel_data->'%s'->>'duration' = %s", c.Name, ph))
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// wonExpr matches enquiries won either top-level or in any channel
// sub-record. The outcome vocabulary is closed, so the literal is safe to
// inline and keeps aggregate shapes free of extra placeholders.
func wonExpr() string {
	terms := make([]string, 0, len(Channels)+1)
	terms = append(terms, "outcome = 'Won'")
	for _, c := range Channels {
		terms = append(terms, fmt.Sprintf("channel_data->'%s'->>'outcome' = 'Won'", c.Name))
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// ongoingExpr reports whether any channel sub-record carries the "Ongoing"
// duration tag. Used to derive the Recurring/Once Off bucket.
func ongoingExpr() string {
	terms := make([]string, 0, len(Channels))
	for _, c := range Channels {
		terms = append(terms, fmt.Sprintf("channel_data->'%s'->>'duration' = 'Ongoing'", c.Name))
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// sumTotalExpr sums the eight per-channel 12-month-value columns. With
// wonOnly set, each term is filtered to channels whose sub-record outcome
// is Won, yielding the estimated won revenue.
func sumTotalExpr(wonOnly bool) string {
	terms := make([]string, 0, len(Channels))
	for _, c := range Channels {
		if wonOnly {
			terms = append(terms, fmt.Sprintf(
				"COALESCE(SUM(%s) FILTER(WHERE channel_data->'%s'->>'outcome' = 'Won'), 0)", c.Column, c.Name))
		} else {
			terms = append(terms, fmt.Sprintf("COALESCE(SUM(%s), 0)", c.Column))
		}
	}
	return strings.Join(terms, " + ")
}

// wonRevenueExpr sums the recorded won_revenue of every won channel
// sub-record across all channels.
func wonRevenueExpr() string {
	terms := make([]string, 0, len(Channels))
	for _, c := range Channels {
		terms = append(terms, fmt.Sprintf(
			"COALESCE(SUM((NULLIF(channel_data->'%[1]s'->>'won_revenue', ''))::numeric) FILTER(WHERE channel_data->'%[1]s'->>'outcome' = 'Won'), 0)", c.Name))
	}
	return strings.Join(terms, " + ")
}

// metricColumns is the aggregate SELECT list every dashboard shape shares.
func metricColumns() string {
	return fmt.Sprintf(`COUNT(id) as total,
      COUNT(id) FILTER(WHERE status = 'Open') as open_enquiries,
      COUNT(id) FILTER(WHERE %s) as wins,
      %s as pipeline_turnover,
      %s as estimated_won_revenue,
      %s as actual_won_revenue,
      ROUND(AVG(date_closed - date_added) FILTER(WHERE status = 'Closed' AND date_closed IS NOT NULL), 0) as avg_velocity`,
		wonExpr(), sumTotalExpr(false), sumTotalExpr(true), wonRevenueExpr())
}

// rateSelect appends the derived rate columns over the aggregated CTE.
// A zero divisor is replaced by one, reporting a zero rate instead of a
// division error. closeRateScale exists because the month-bucketed
// breakdown download rounds close_rate to 2 places where every other shape
// uses 4.
func rateSelect(closeRateScale int) string {
	return fmt.Sprintf(`SELECT
  *,
  ROUND(wins::numeric / (CASE total WHEN 0 THEN 1 ELSE total END), %d) as close_rate,
  ROUND(actual_won_revenue::numeric / (CASE pipeline_turnover WHEN 0 THEN 1 ELSE pipeline_turnover END), 4) as revenue_close_rate
FROM data`, closeRateScale)
}

// bucketColumn renders the derived category column for a grouped breakdown.
func bucketColumn(group GroupBy) string {
	if group == GroupClientType {
		return "CASE is_new WHEN true THEN 'New' ELSE 'Existing' END as client_type"
	}
	return fmt.Sprintf("CASE (%s) WHEN true THEN 'Recurring' ELSE 'Once Off' END as duration", ongoingExpr())
}

// OverviewSet pairs the ungrouped overview with its grouped breakdown;
// both share one argument vector.
type OverviewSet struct {
	Overview  Statement
	Breakdown Statement
}

// Overview assembles the dashboard totals and the grouped breakdown for
// the given category. The comparison variant substitutes the compare_to
// date range and is otherwise identical.
func Overview(f Filter, group GroupBy, comparison bool) (OverviewSet, error) {
	b, err := buildAnalyticsFilter(f, comparison)
	if err != nil {
		return OverviewSet{}, err
	}

	overview := fmt.Sprintf(`WITH data as (
  SELECT
      %s
  FROM pipeline
  %s
)
%s`, metricColumns(), b.where(), rateSelect(4))

	breakdown := fmt.Sprintf(`WITH data as (
  SELECT
      %s,
      %s
  FROM pipeline
  %s
  GROUP BY %s
)
%s`, bucketColumn(group), metricColumns(), b.where(), group, rateSelect(4))

	return OverviewSet{
		Overview:  Statement{Text: overview, Args: b.args},
		Breakdown: Statement{Text: breakdown, Args: b.args},
	}, nil
}

// ChannelBreakdown assembles the per-channel dashboard: the lateral
// channel_data expansion grouped by channel key, with the turnover and
// estimated-revenue columns selected through the channel table rather than
// a hand-maintained switch per query.
func ChannelBreakdown(f Filter, comparison bool) (Statement, error) {
	b, err := buildAnalyticsFilter(f, comparison)
	if err != nil {
		return Statement{}, err
	}

	turnover := make([]string, 0, len(Channels))
	estimated := make([]string, 0, len(Channels))
	for _, c := range Channels {
		turnover = append(turnover, fmt.Sprintf("WHEN '%s' THEN SUM(COALESCE(%s, 0))", c.Name, c.Column))
		estimated = append(estimated, fmt.Sprintf(
			"WHEN '%s' THEN SUM(COALESCE(%s, 0)) FILTER(WHERE value @> '{\"outcome\":\"Won\"}')", c.Name, c.Column))
	}

	text := fmt.Sprintf(`WITH data as (
  SELECT
      key as channel,
      COUNT(id) as total,
      COUNT(id) FILTER(WHERE status = 'Open') as open_enquiries,
      COUNT(id) FILTER(WHERE value @> '{"outcome":"Won"}') as wins,
      (CASE key
        %s
      ELSE 0
      END) as pipeline_turnover,
      (CASE key
        %s
      ELSE 0
      END) as estimated_won_revenue,
      COALESCE(SUM(NULLIF(value->>'won_revenue', '')::numeric) FILTER(WHERE value @> '{"outcome":"Won"}'), 0) as actual_won_revenue,
      ROUND(AVG(date_closed - date_added) FILTER(WHERE status = 'Closed' AND date_closed IS NOT NULL), 0) as avg_velocity
  FROM pipeline
  CROSS JOIN LATERAL jsonb_each(channel_data) channels
  %s
  GROUP BY key
)
%s`, strings.Join(turnover, "\n        "), strings.Join(estimated, "\n        "), b.where(), rateSelect(4))

	return Statement{Text: text, Args: b.args}, nil
}

// downloadDateColumn picks the month-bucket source column: the close date
// when the filter ranges on it, otherwise the add date.
func downloadDateColumn(f Filter) string {
	if _, ok := f["date_closed"]; ok {
		return "date_closed"
	}
	return "date_added"
}

// DownloadOverview assembles the month-bucketed overview used for the
// dashboard export, most recent month first.
func DownloadOverview(f Filter) (Statement, error) {
	b, err := buildAnalyticsFilter(f, false)
	if err != nil {
		return Statement{}, err
	}

	text := fmt.Sprintf(`WITH data as (
  SELECT
      TO_CHAR(DATE_TRUNC('month', %s), 'yyyy-MM-dd') as date,
      %s
  FROM pipeline
  %s
  GROUP BY date
  ORDER BY date DESC
)
%s`, downloadDateColumn(f), metricColumns(), b.where(), rateSelect(4))

	return Statement{Text: text, Args: b.args}, nil
}

// DownloadBreakdown assembles the month-bucketed export sub-grouped by the
// Recurring/Once Off duration bucket.
func DownloadBreakdown(f Filter) (Statement, error) {
	b, err := buildAnalyticsFilter(f, false)
	if err != nil {
		return Statement{}, err
	}

	text := fmt.Sprintf(`WITH data as (
  SELECT
      TO_CHAR(DATE_TRUNC('month', %s), 'yyyy-MM-dd') as date,
      CASE (%s) WHEN true THEN 'Recurring' ELSE 'Once Off' END as duration,
      %s
  FROM pipeline
  %s
  GROUP BY date, duration
  ORDER BY date DESC, duration
)
%s`, downloadDateColumn(f), ongoingExpr(), metricColumns(), b.where(), rateSelect(2))

	return Statement{Text: text, Args: b.args}, nil
}
