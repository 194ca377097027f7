// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"

	"github.com/agencyops/huddle/internal/auth"
	"github.com/agencyops/huddle/internal/database"
	"github.com/agencyops/huddle/internal/pipeline"
	"github.com/agencyops/huddle/internal/preview"
)

// PipelineStore is the pipeline slice of the database store.
type PipelineStore interface {
	ListEnquiries(ctx context.Context, f pipeline.Filter, paginate bool) ([]map[string]any, error)
	GetEnquiry(ctx context.Context, id string) (map[string]any, error)
	CreateEnquiry(ctx context.Context, in pipeline.EnquiryInput) error
	UpdateEnquiry(ctx context.Context, id string, changes map[string]any) (map[string]any, error)
	DeleteEnquiry(ctx context.Context, id string) error
	DashboardOverview(ctx context.Context, f pipeline.Filter) (data, comparison []map[string]any, err error)
	DashboardChannels(ctx context.Context, f pipeline.Filter) (data, comparison []map[string]any, err error)
	DownloadOverview(ctx context.Context, f pipeline.Filter) ([]map[string]any, error)
	DownloadBreakdown(ctx context.Context, f pipeline.Filter) ([]map[string]any, error)
}

// ForumStore is the forum slice of the database store.
type ForumStore interface {
	ListPosts(ctx context.Context, userID string) ([]map[string]any, error)
	GetPost(ctx context.Context, postID, userID string) (map[string]any, error)
	CreatePost(ctx context.Context, userID, title, body string, tags []string) (int64, error)
	VotePost(ctx context.Context, postID, userID string, value int) (int, error)
	VoteComment(ctx context.Context, commentID, userID string, value int) (int, error)
	CreateComment(ctx context.Context, postID, userID, body string, parentCommentID *int64) (int64, error)
	ListComments(ctx context.Context, postID, userID string) ([]map[string]any, error)
}

// ReviewsStore is the reviews slice of the database store.
type ReviewsStore interface {
	ListMyReviews(ctx context.Context, userID string) ([]map[string]any, error)
	CreateReview(ctx context.Context, employeeID, managerID, department string, formData map[string]any) (map[string]any, error)
	GetReview(ctx context.Context, reviewID string) (map[string]any, error)
	DeleteReview(ctx context.Context, reviewID string) error
	GetReviewForm(ctx context.Context, reviewID string) (map[string]any, error)
	UpdateReviewForm(ctx context.Context, reviewID string, data map[string]any) (map[string]any, error)
	CreateResponse(ctx context.Context, reviewID, reviewDate, managerID, employeeID string) (map[string]any, error)
	UpdateResponse(ctx context.Context, responseID string, asManager bool, formData map[string]any) (map[string]any, error)
	DeleteResponse(ctx context.Context, responseID string) error
	DepartmentReportRows(ctx context.Context, department, start, end string) ([]map[string]any, error)
}

// UsersStore is the users slice of the database store.
type UsersStore interface {
	ListUsers(ctx context.Context) ([]map[string]any, error)
	GetProfile(ctx context.Context, userID string) (map[string]any, error)
	ListProfiles(ctx context.Context) ([]map[string]any, error)
	GetUser(ctx context.Context, userID string) (map[string]any, error)
	UpdateUserField(ctx context.Context, userID, column, value string) error
	SwitchDepartment(ctx context.Context, userID string, previousID, nextID int64) error
	ReplaceMemberships(ctx context.Context, userID string, departments, roles []int64) error
	PendingResponses(ctx context.Context, userID string) ([]map[string]any, error)
	StaleEnquiries(ctx context.Context, userID string) ([]map[string]any, error)
}

// Store is everything the handlers need from the database layer.
// *database.Store satisfies it.
type Store interface {
	PipelineStore
	ForumStore
	ReviewsStore
	UsersStore
	Ping(ctx context.Context) error
}

// Authorizer answers role membership questions.
type Authorizer interface {
	HasAnyRole(ctx context.Context, userID string, roles ...string) bool
}

// Previewer renders and publishes proposal previews.
type Previewer interface {
	CreatePreview(ctx context.Context, userID string, doc preview.Document) (string, error)
}

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	db      Store
	authz   Authorizer
	preview Previewer

	// subjectClaim is the token claim carrying the user ID.
	subjectClaim string
}

// NewHandler wires a Handler.
func NewHandler(db Store, authz Authorizer, previewer Previewer, subjectClaim string) *Handler {
	return &Handler{db: db, authz: authz, preview: previewer, subjectClaim: subjectClaim}
}

var _ Store = (*database.Store)(nil)
var _ Authorizer = (*auth.Authorizer)(nil)
var _ Previewer = (*preview.Service)(nil)

// Health reports liveness and the database connection state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := map[string]string{"status": "ok", "database": "ok"}
	if err := h.db.Ping(r.Context()); err != nil {
		status["database"] = "unreachable"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Meta: rw.meta()})
		return
	}
	rw.Success(status)
}
