// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// leadsCTE aggregates each enquiry's proposal leads into one JSON document
// so list and single-record shapes can return them inline.
const leadsCTE = `WITH leads AS (
  SELECT
    enquiry_id,
    JSON_AGG(ROW_TO_JSON(users)) proposal_leads
  FROM proposal_leads
  JOIN users ON users.user_id = proposal_leads.user_id
  GROUP BY enquiry_id
)`

const (
	defaultOffset = 0
	defaultLimit  = 20
)

// totalExpr sums every 12-month-value column, including actual_12mv,
// null-coalescing each term to zero.
func totalExpr() string {
	terms := make([]string, 0, len(Channels)+1)
	for _, c := range Channels {
		terms = append(terms, fmt.Sprintf("COALESCE(%s, 0)", c.Column))
	}
	terms = append(terms, "COALESCE(actual_12mv, 0)")
	return strings.Join(terms, " + ")
}

// SelectAll assembles the paginated list query, or the unpaginated export
// variant when paginate is false. Pagination binds offset then limit as the
// trailing placeholders; the paginated shape orders by recency while the
// export orders by company name.
func SelectAll(f Filter, paginate bool) (Statement, error) {
	b, err := buildListFilter(f)
	if err != nil {
		return Statement{}, err
	}

	order := "company_name"
	tail := ""
	if paginate {
		offsetPh := b.bind(intValue(f, "offset", defaultOffset))
		limitPh := b.bind(intValue(f, "limit", defaultLimit))
		order = "last_updated DESC"
		tail = fmt.Sprintf("\nOFFSET %s LIMIT %s", offsetPh, limitPh)
	}

	text := fmt.Sprintf(`%s
SELECT
  id,
  %s,
  %s AS total_12mv,
  proposal_leads::jsonb,
  COUNT(*) OVER() AS total
FROM pipeline
FULL OUTER JOIN leads ON leads.enquiry_id = id
CROSS JOIN LATERAL jsonb_each(channel_data) channels
%s
GROUP BY id, proposal_leads::jsonb
ORDER BY %s%s`, leadsCTE, strings.Join(columns, ", "), totalExpr(), b.where(), order, tail)

	return Statement{Text: text, Args: b.args}, nil
}

// SelectOne assembles the single-enquiry lookup with the aggregated lead
// list joined in.
func SelectOne(id string) Statement {
	text := leadsCTE + `
SELECT
  pipeline.*,
  proposal_leads
FROM pipeline
FULL OUTER JOIN leads ON leads.enquiry_id = id
WHERE id = $1`
	return Statement{Text: text, Args: []any{id}}
}

// Delete assembles the enquiry delete.
func Delete(id string) Statement {
	return Statement{Text: "DELETE FROM pipeline WHERE id = $1", Args: []any{id}}
}

// LeadOption is a proposal-lead selection as submitted by the client:
// a display label plus the lead's user id.
type LeadOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EnquiryInput is the create-enquiry request body. Nil numeric pointers
// insert SQL NULLs; status and last_updated are never client-supplied.
type EnquiryInput struct {
	CompanyName        string          `json:"company_name" validate:"required"`
	DateAdded          string          `json:"date_added" validate:"required"`
	ProjectName        string          `json:"project_name"`
	IsNew              bool            `json:"is_new"`
	Country            string          `json:"country"`
	Channels           []string        `json:"channels"`
	Source             string          `json:"source"`
	SourceComment      string          `json:"source_comment"`
	Details            string          `json:"details"`
	SuccessProbability *float64        `json:"success_probability"`
	LossReason         string          `json:"loss_reason"`
	ContactEmail       string          `json:"contact_email"`
	ChannelData        json.RawMessage `json:"channel_data"`
	ProposalDocLink    string          `json:"proposal_doc_link"`
	Analytics12MV      *float64        `json:"analytics_12mv"`
	CRO12MV            *float64        `json:"cro_12mv"`
	Content12MV        *float64        `json:"content_12mv"`
	Creative12MV       *float64        `json:"creative_12mv"`
	Email12MV          *float64        `json:"email_12mv"`
	PPC12MV            *float64        `json:"ppc_12mv"`
	SEO12MV            *float64        `json:"seo_12mv"`
	Social12MV         *float64        `json:"social_12mv"`
	PreQualScore       *float64        `json:"pre_qual_score"`
	ProposalLeads      []LeadOption    `json:"proposal_leads"`
}

// insertColumns is the fixed 25-column insert order. Args must line up with
// this list exactly; status is forced to "Open" and last_updated to the
// server clock.
var insertColumns = []string{
	"company_name", "date_added", "project_name", "is_new", "country", "channels", "status", "source", "source_comment",
	"last_updated", "details", "success_probability", "loss_reason", "contact_email", "channel_data", "proposal_doc_link",
	"analytics_12mv", "cro_12mv", "content_12mv", "creative_12mv", "email_12mv", "ppc_12mv", "seo_12mv", "social_12mv",
	"pre_qual_score",
}

// Insert assembles the create-enquiry statement: the 25-column row insert in
// a CTE followed by the lead-association inserts fed from one bound text
// array. A failure anywhere aborts the whole statement, so no partial
// enquiry can be created.
func Insert(in EnquiryInput, now time.Time) Statement {
	var channelData any
	if len(in.ChannelData) > 0 {
		channelData = string(in.ChannelData)
	}

	leadIDs := make([]string, 0, len(in.ProposalLeads))
	for _, lead := range in.ProposalLeads {
		leadIDs = append(leadIDs, lead.Value)
	}

	args := []any{
		in.CompanyName, in.DateAdded, in.ProjectName, in.IsNew, in.Country, in.Channels, "Open", in.Source, in.SourceComment,
		now, in.Details, in.SuccessProbability, in.LossReason, in.ContactEmail, channelData, in.ProposalDocLink,
		in.Analytics12MV, in.CRO12MV, in.Content12MV, in.Creative12MV, in.Email12MV, in.PPC12MV, in.SEO12MV, in.Social12MV,
		in.PreQualScore,
		leadIDs,
	}

	text := fmt.Sprintf(`WITH enquiry AS (
  INSERT INTO pipeline(
    %s
  )
  VALUES (%s)
  RETURNING id
)
INSERT INTO proposal_leads(enquiry_id, user_id)
SELECT id, unnest($%d::text[]) FROM enquiry`,
		strings.Join(insertColumns, ", "), placeholderList(1, len(insertColumns)), len(insertColumns)+1)

	return Statement{Text: text, Args: args}
}

// UpdateSet is the statement bundle for one enquiry update. The caller must
// run every present statement inside a single transaction: delete leads,
// insert leads, then the update, with rollback on any failure. Result is
// the post-update single-record read and may run after commit.
type UpdateSet struct {
	Update      Statement
	DeleteLeads *Statement
	InsertLeads *Statement
	Result      Statement

	// HasLeadChange is true when the input carried proposal_leads and the
	// optional lead statements are present.
	HasLeadChange bool
}

// Update assembles the partial-update bundle from a decoded request body.
// Only whitelisted columns become SET targets. Replacing the channel set
// additionally nulls the 12-month-value column of every removed channel.
// Lead associations, when present, are fully replaced: delete-all then
// re-insert, never diffed.
func Update(id string, changes map[string]any) UpdateSet {
	b := &clauseBuilder{args: []any{id}}
	var set []string

	for _, col := range columns {
		value, ok := changes[col]
		if !ok {
			continue
		}
		if col == "channels" {
			channels := toStringSlice(value)
			set = append(set, fmt.Sprintf("channels = %s", b.bind(channels)))
			keep := make(map[string]bool, len(channels))
			for _, name := range channels {
				keep[canonicalChannel(name)] = true
			}
			for _, c := range Channels {
				if !keep[c.Name] {
					set = append(set, fmt.Sprintf("%s = null", c.Column))
				}
			}
			continue
		}
		set = append(set, fmt.Sprintf("%s = %s", col, b.bind(bindable(value))))
	}

	set = append(set, "last_updated = CURRENT_DATE")

	out := UpdateSet{
		Update: Statement{
			Text: fmt.Sprintf("UPDATE pipeline\nSET %s\nWHERE id = $1", strings.Join(set, ",\n    ")),
			Args: b.args,
		},
		Result: SelectOne(id),
	}

	if leads, ok := changes["proposal_leads"]; ok {
		out.HasLeadChange = true
		out.DeleteLeads = &Statement{
			Text: "DELETE FROM proposal_leads WHERE enquiry_id = $1",
			Args: []any{id},
		}
		if ids := toStringSlice(leads); len(ids) > 0 {
			out.InsertLeads = &Statement{
				Text: "INSERT INTO proposal_leads(enquiry_id, user_id)\nSELECT $1, unnest($2::text[])",
				Args: []any{id, ids},
			}
		}
	}

	return out
}

// bindable converts a decoded JSON value into something pgx can bind.
// Composite values (the channel_data document) are re-marshaled and bound
// as JSON text; scalars bind as-is.
func bindable(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(raw)
	default:
		return v
	}
}

// toStringSlice flattens a decoded JSON array into its string elements,
// skipping anything that is not a string.
func toStringSlice(v any) []string {
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
