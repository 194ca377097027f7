// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agencyops/huddle/internal/pipeline"
)

// ListEnquiries runs the paginated list query, or the unpaginated export
// shape when paginate is false.
func (s *Store) ListEnquiries(ctx context.Context, f pipeline.Filter, paginate bool) ([]map[string]any, error) {
	stmt, err := pipeline.SelectAll(f, paginate)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, "pipeline.list", stmt.Text, stmt.Args...)
}

// GetEnquiry fetches one enquiry with its aggregated proposal leads.
func (s *Store) GetEnquiry(ctx context.Context, id string) (map[string]any, error) {
	stmt := pipeline.SelectOne(id)
	return s.QueryRow(ctx, "pipeline.get", stmt.Text, stmt.Args...)
}

// CreateEnquiry inserts a new enquiry and its lead associations in one
// statement.
func (s *Store) CreateEnquiry(ctx context.Context, in pipeline.EnquiryInput) error {
	stmt := pipeline.Insert(in, time.Now())
	_, err := s.Exec(ctx, "pipeline.create", stmt.Text, stmt.Args...)
	return err
}

// UpdateEnquiry applies a partial update. When the input replaces the lead
// set, the delete and re-insert run in the same transaction as the update
// so a failure leaves the old associations intact. Returns the updated
// record.
func (s *Store) UpdateEnquiry(ctx context.Context, id string, changes map[string]any) (map[string]any, error) {
	set := pipeline.Update(id, changes)

	err := s.ExecTx(ctx, "pipeline.update", func(tx pgx.Tx) error {
		if set.DeleteLeads != nil {
			if _, err := tx.Exec(ctx, set.DeleteLeads.Text, set.DeleteLeads.Args...); err != nil {
				return err
			}
		}
		if set.InsertLeads != nil {
			if _, err := tx.Exec(ctx, set.InsertLeads.Text, set.InsertLeads.Args...); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, set.Update.Text, set.Update.Args...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.QueryRow(ctx, "pipeline.update.result", set.Result.Text, set.Result.Args...)
}

// DeleteEnquiry removes an enquiry; lead associations cascade.
func (s *Store) DeleteEnquiry(ctx context.Context, id string) error {
	stmt := pipeline.Delete(id)
	_, err := s.Exec(ctx, "pipeline.delete", stmt.Text, stmt.Args...)
	return err
}

// DashboardOverview assembles the totals row plus the duration and client
// type breakdowns, concatenated in that order. When the filter carries a
// compare_to range a second run over that period is returned as the
// comparison set.
func (s *Store) DashboardOverview(ctx context.Context, f pipeline.Filter) (data, comparison []map[string]any, err error) {
	data, err = s.overviewRows(ctx, f, false)
	if err != nil {
		return nil, nil, err
	}

	if f["compare_to"] != "" {
		comparison, err = s.overviewRows(ctx, f, true)
		if err != nil {
			return nil, nil, err
		}
	}
	return data, comparison, nil
}

func (s *Store) overviewRows(ctx context.Context, f pipeline.Filter, comparison bool) ([]map[string]any, error) {
	var out []map[string]any

	duration, err := pipeline.Overview(f, pipeline.GroupDuration, comparison)
	if err != nil {
		return nil, err
	}
	clientType, err := pipeline.Overview(f, pipeline.GroupClientType, comparison)
	if err != nil {
		return nil, err
	}

	overview, err := s.Query(ctx, "pipeline.overview", duration.Overview.Text, duration.Overview.Args...)
	if err != nil {
		return nil, err
	}
	out = append(out, overview...)

	byDuration, err := s.Query(ctx, "pipeline.overview.duration", duration.Breakdown.Text, duration.Breakdown.Args...)
	if err != nil {
		return nil, err
	}
	out = append(out, byDuration...)

	byClientType, err := s.Query(ctx, "pipeline.overview.client_type", clientType.Breakdown.Text, clientType.Breakdown.Args...)
	if err != nil {
		return nil, err
	}
	out = append(out, byClientType...)

	return out, nil
}

// DashboardChannels runs the per-channel breakdown, with a comparison run
// when the filter carries a compare_to range.
func (s *Store) DashboardChannels(ctx context.Context, f pipeline.Filter) (data, comparison []map[string]any, err error) {
	stmt, err := pipeline.ChannelBreakdown(f, false)
	if err != nil {
		return nil, nil, err
	}
	data, err = s.Query(ctx, "pipeline.channels", stmt.Text, stmt.Args...)
	if err != nil {
		return nil, nil, err
	}

	if f["compare_to"] != "" {
		prev, err := pipeline.ChannelBreakdown(f, true)
		if err != nil {
			return nil, nil, err
		}
		comparison, err = s.Query(ctx, "pipeline.channels.comparison", prev.Text, prev.Args...)
		if err != nil {
			return nil, nil, err
		}
	}
	return data, comparison, nil
}

// DownloadOverview runs the month-bucketed overview export.
func (s *Store) DownloadOverview(ctx context.Context, f pipeline.Filter) ([]map[string]any, error) {
	stmt, err := pipeline.DownloadOverview(f)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, "pipeline.download.overview", stmt.Text, stmt.Args...)
}

// DownloadBreakdown runs the month-bucketed export sub-grouped by the
// duration bucket.
func (s *Store) DownloadBreakdown(ctx context.Context, f pipeline.Filter) ([]map[string]any, error) {
	stmt, err := pipeline.DownloadBreakdown(f)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, "pipeline.download.breakdown", stmt.Text, stmt.Args...)
}
