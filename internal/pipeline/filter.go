// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Filter is the raw filter specification: query-string keys mapped to their
// first value. Keys outside the recognized field set are ignored.
type Filter map[string]string

// rangeSeparator splits a date-range value such as
// "2023-01-01AND2023-06-30" into its two bounds.
const rangeSeparator = "AND"

// columns is the enquiry column whitelist. Generic filter fields bind a
// case-insensitive substring match; the update assembler accepts SET targets
// from this list only.
var columns = []string{
	"company_name",
	"date_added",
	"project_name",
	"is_new",
	"status",
	"country",
	"channels",
	"source",
	"outcome",
	"source_comment",
	"last_updated",
	"details",
	"success_probability",
	"loss_reason",
	"contact_email",
	"channel_data",
	"date_closed",
	"proposal_doc_link",
	"analytics_12mv",
	"cro_12mv",
	"content_12mv",
	"creative_12mv",
	"email_12mv",
	"ppc_12mv",
	"seo_12mv",
	"social_12mv",
	"actual_12mv",
	"pre_qual_score",
}

// channelDataKeys are the filterable keys of a channel_data sub-record.
var channelDataKeys = []string{"name", "duration", "outcome"}

// specialListFields are the fields with a dedicated translation rule,
// applied in this fixed order so that generated statements are stable
// regardless of map iteration order.
var specialListFields = []struct {
	name  string
	apply func(b *clauseBuilder, raw string) error
}{
	{"q", applyFreeSearch},
	{"date_added", applyDateRange("date_added")},
	{"date_closed", applyDateRange("date_closed")},
	{"is_new", applyIsNew},
	{"channels", applyChannels},
	{"leads", applyLeads},
	{"duration", applyDuration},
	{"outcome", applyListOutcome},
	{"country", applyCountry},
}

// buildListFilter translates a filter specification into the WHERE clause
// for list/export/single-shape queries. Special-cased fields run first in
// registry order, then every remaining whitelisted column binds a generic
// substring match.
func buildListFilter(f Filter) (*clauseBuilder, error) {
	b := &clauseBuilder{}

	special := make(map[string]bool, len(specialListFields))
	for _, field := range specialListFields {
		special[field.name] = true
		raw, ok := f[field.name]
		if !ok {
			continue
		}
		if err := field.apply(b, raw); err != nil {
			return nil, err
		}
	}

	for _, col := range append(append([]string{}, columns...), channelDataKeys...) {
		if special[col] {
			continue
		}
		raw, ok := f[col]
		if !ok {
			continue
		}
		applyGeneric(b, col, raw)
	}

	return b, nil
}

// applyFreeSearch matches one bound value against company name, the
// lowercased channel set, project name, or country.
func applyFreeSearch(b *clauseBuilder, raw string) error {
	ph := b.bind(raw)
	b.add(fmt.Sprintf(`(
      company_name ILIKE '%%' || %[1]s || '%%' OR
      LOWER(channels::text)::text[] @> ARRAY[%[1]s] OR
      project_name ILIKE '%%' || %[1]s || '%%' OR
      country ILIKE '%%' || %[1]s || '%%'
    )`, ph))
	return nil
}

// applyDateRange splits the raw value on the literal "AND" token and binds
// both bounds. A value without the separator is rejected rather than being
// allowed to produce a malformed bind list.
func applyDateRange(column string) func(b *clauseBuilder, raw string) error {
	return func(b *clauseBuilder, raw string) error {
		parts := strings.SplitN(raw, rangeSeparator, 2)
		if len(parts) != 2 {
			return &ValidationError{Field: column, Reason: `expected a "<start>AND<end>" range`}
		}
		lo := b.bind(parts[0])
		hi := b.bind(parts[1])
		b.add(fmt.Sprintf("%s BETWEEN %s AND %s", column, lo, hi))
		return nil
	}
}

func applyIsNew(b *clauseBuilder, raw string) error {
	b.add(fmt.Sprintf("is_new = %s", b.bind(raw)))
	return nil
}

// applyChannels comma-splits the value, normalizes each token against the
// channel table and binds the whole set as a text array for an
// array-overlap match.
func applyChannels(b *clauseBuilder, raw string) error {
	tokens := strings.Split(raw, ",")
	channels := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		channels = append(channels, canonicalChannel(tok))
	}
	b.add(fmt.Sprintf("channels && %s", b.bind(channels)))
	return nil
}

// applyLeads emits one JSON-containment predicate per comma-separated user
// id, OR-joined. Each probe document is marshaled in Go and bound, never
// spliced into the statement text.
func applyLeads(b *clauseBuilder, raw string) error {
	ids := strings.Split(raw, ",")
	preds := make([]string, 0, len(ids))
	for _, id := range ids {
		probe, err := json.Marshal([]map[string]string{{"user_id": strings.TrimSpace(id)}})
		if err != nil {
			return &ValidationError{Field: "leads", Reason: err.Error()}
		}
		preds = append(preds, fmt.Sprintf("proposal_leads::jsonb @> %s", b.bind(string(probe))))
	}
	b.add("(" + strings.Join(preds, " OR ") + ")")
	return nil
}

// applyDuration matches a duration tag inside the expanded channel_data
// sub-record of the lateral join.
func applyDuration(b *clauseBuilder, raw string) error {
	probe, err := json.Marshal(map[string]string{"duration": raw})
	if err != nil {
		return &ValidationError{Field: "duration", Reason: err.Error()}
	}
	b.add(fmt.Sprintf("value @> %s", b.bind(string(probe))))
	return nil
}

// applyListOutcome matches the top-level outcome column or the outcome tag
// of any expanded channel sub-record, reusing one bound value.
func applyListOutcome(b *clauseBuilder, raw string) error {
	ph := b.bind(raw)
	b.add(fmt.Sprintf("(outcome = %[1]s OR value @> jsonb_build_object('outcome', %[1]s::text))", ph))
	return nil
}

// applyCountry strips a leading "!" and flips the predicate polarity when
// one was present.
func applyCountry(b *clauseBuilder, raw string) error {
	negated := strings.Contains(raw, "!")
	ph := b.bind(strings.Replace(raw, "!", "", 1))
	op := "ILIKE"
	if negated {
		op = "NOT ILIKE"
	}
	b.add(fmt.Sprintf("country %s '%%' || %s || '%%'", op, ph))
	return nil
}

func applyGeneric(b *clauseBuilder, column, raw string) {
	b.add(fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", column, b.bind(raw)))
}

// intValue reads an integer filter key, falling back to def when the key is
// absent or not numeric.
func intValue(f Filter, key string, def int) int {
	raw, ok := f[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}
