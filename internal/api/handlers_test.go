// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/agencyops/huddle/internal/auth"
	"github.com/agencyops/huddle/internal/pipeline"
	"github.com/agencyops/huddle/internal/preview"
)

// fakeStore satisfies Store with canned values. Each call appends its
// name to calls so tests can assert what ran.
type fakeStore struct {
	rows []map[string]any
	row  map[string]any
	err  error

	insertID  int64
	voteValue int

	calls []string

	gotFilter    pipeline.Filter
	gotPaginate  bool
	gotID        string
	gotAsManager bool
	gotChanges   map[string]any
	gotValue     int
	gotParent    *int64
	gotStrings   []string
	gotInt64s    [][]int64
}

func (f *fakeStore) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeStore) ListEnquiries(ctx context.Context, flt pipeline.Filter, paginate bool) ([]map[string]any, error) {
	f.record("ListEnquiries")
	f.gotFilter = flt
	f.gotPaginate = paginate
	return f.rows, f.err
}

func (f *fakeStore) GetEnquiry(ctx context.Context, id string) (map[string]any, error) {
	f.record("GetEnquiry")
	f.gotID = id
	return f.row, f.err
}

func (f *fakeStore) CreateEnquiry(ctx context.Context, in pipeline.EnquiryInput) error {
	f.record("CreateEnquiry")
	return f.err
}

func (f *fakeStore) UpdateEnquiry(ctx context.Context, id string, changes map[string]any) (map[string]any, error) {
	f.record("UpdateEnquiry")
	f.gotID = id
	f.gotChanges = changes
	return f.row, f.err
}

func (f *fakeStore) DeleteEnquiry(ctx context.Context, id string) error {
	f.record("DeleteEnquiry")
	f.gotID = id
	return f.err
}

func (f *fakeStore) DashboardOverview(ctx context.Context, flt pipeline.Filter) ([]map[string]any, []map[string]any, error) {
	f.record("DashboardOverview")
	f.gotFilter = flt
	return f.rows, nil, f.err
}

func (f *fakeStore) DashboardChannels(ctx context.Context, flt pipeline.Filter) ([]map[string]any, []map[string]any, error) {
	f.record("DashboardChannels")
	return f.rows, nil, f.err
}

func (f *fakeStore) DownloadOverview(ctx context.Context, flt pipeline.Filter) ([]map[string]any, error) {
	f.record("DownloadOverview")
	return f.rows, f.err
}

func (f *fakeStore) DownloadBreakdown(ctx context.Context, flt pipeline.Filter) ([]map[string]any, error) {
	f.record("DownloadBreakdown")
	return f.rows, f.err
}

func (f *fakeStore) ListPosts(ctx context.Context, userID string) ([]map[string]any, error) {
	f.record("ListPosts")
	f.gotID = userID
	return f.rows, f.err
}

func (f *fakeStore) GetPost(ctx context.Context, postID, userID string) (map[string]any, error) {
	f.record("GetPost")
	f.gotID = postID
	return f.row, f.err
}

func (f *fakeStore) CreatePost(ctx context.Context, userID, title, body string, tags []string) (int64, error) {
	f.record("CreatePost")
	f.gotStrings = []string{userID, title, body}
	return f.insertID, f.err
}

func (f *fakeStore) VotePost(ctx context.Context, postID, userID string, value int) (int, error) {
	f.record("VotePost")
	f.gotID = postID
	f.gotValue = value
	return f.voteValue, f.err
}

func (f *fakeStore) VoteComment(ctx context.Context, commentID, userID string, value int) (int, error) {
	f.record("VoteComment")
	f.gotID = commentID
	f.gotValue = value
	return f.voteValue, f.err
}

func (f *fakeStore) CreateComment(ctx context.Context, postID, userID, body string, parentCommentID *int64) (int64, error) {
	f.record("CreateComment")
	f.gotID = postID
	f.gotParent = parentCommentID
	return f.insertID, f.err
}

func (f *fakeStore) ListComments(ctx context.Context, postID, userID string) ([]map[string]any, error) {
	f.record("ListComments")
	f.gotID = postID
	return f.rows, f.err
}

func (f *fakeStore) ListMyReviews(ctx context.Context, userID string) ([]map[string]any, error) {
	f.record("ListMyReviews")
	f.gotID = userID
	return f.rows, f.err
}

func (f *fakeStore) CreateReview(ctx context.Context, employeeID, managerID, department string, formData map[string]any) (map[string]any, error) {
	f.record("CreateReview")
	f.gotStrings = []string{employeeID, managerID, department}
	return f.row, f.err
}

func (f *fakeStore) GetReview(ctx context.Context, reviewID string) (map[string]any, error) {
	f.record("GetReview")
	f.gotID = reviewID
	return f.row, f.err
}

func (f *fakeStore) DeleteReview(ctx context.Context, reviewID string) error {
	f.record("DeleteReview")
	f.gotID = reviewID
	return f.err
}

func (f *fakeStore) GetReviewForm(ctx context.Context, reviewID string) (map[string]any, error) {
	f.record("GetReviewForm")
	return f.row, f.err
}

func (f *fakeStore) UpdateReviewForm(ctx context.Context, reviewID string, data map[string]any) (map[string]any, error) {
	f.record("UpdateReviewForm")
	f.gotChanges = data
	return f.row, f.err
}

func (f *fakeStore) CreateResponse(ctx context.Context, reviewID, reviewDate, managerID, employeeID string) (map[string]any, error) {
	f.record("CreateResponse")
	f.gotStrings = []string{reviewID, reviewDate, managerID, employeeID}
	return f.row, f.err
}

func (f *fakeStore) UpdateResponse(ctx context.Context, responseID string, asManager bool, formData map[string]any) (map[string]any, error) {
	f.record("UpdateResponse")
	f.gotID = responseID
	f.gotAsManager = asManager
	return f.row, f.err
}

func (f *fakeStore) DeleteResponse(ctx context.Context, responseID string) error {
	f.record("DeleteResponse")
	f.gotID = responseID
	return f.err
}

func (f *fakeStore) DepartmentReportRows(ctx context.Context, department, start, end string) ([]map[string]any, error) {
	f.record("DepartmentReportRows")
	f.gotStrings = []string{department, start, end}
	return f.rows, f.err
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]map[string]any, error) {
	f.record("ListUsers")
	return f.rows, f.err
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (map[string]any, error) {
	f.record("GetProfile")
	f.gotID = userID
	return f.row, f.err
}

func (f *fakeStore) ListProfiles(ctx context.Context) ([]map[string]any, error) {
	f.record("ListProfiles")
	return f.rows, f.err
}

func (f *fakeStore) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	f.record("GetUser")
	f.gotID = userID
	return f.row, f.err
}

func (f *fakeStore) UpdateUserField(ctx context.Context, userID, column, value string) error {
	f.record("UpdateUserField")
	f.gotStrings = []string{userID, column, value}
	return f.err
}

func (f *fakeStore) SwitchDepartment(ctx context.Context, userID string, previousID, nextID int64) error {
	f.record("SwitchDepartment")
	f.gotID = userID
	f.gotInt64s = [][]int64{{previousID, nextID}}
	return f.err
}

func (f *fakeStore) ReplaceMemberships(ctx context.Context, userID string, departments, roles []int64) error {
	f.record("ReplaceMemberships")
	f.gotID = userID
	f.gotInt64s = [][]int64{departments, roles}
	return f.err
}

func (f *fakeStore) PendingResponses(ctx context.Context, userID string) ([]map[string]any, error) {
	f.record("PendingResponses")
	return f.rows, f.err
}

func (f *fakeStore) StaleEnquiries(ctx context.Context, userID string) ([]map[string]any, error) {
	f.record("StaleEnquiries")
	return f.rows, f.err
}

func (f *fakeStore) Ping(ctx context.Context) error {
	f.record("Ping")
	return f.err
}

func (f *fakeStore) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

type fakeAuthz struct {
	allow    bool
	gotRoles []string
}

func (f *fakeAuthz) HasAnyRole(ctx context.Context, userID string, roles ...string) bool {
	f.gotRoles = roles
	return f.allow
}

type fakePreview struct {
	uri    string
	err    error
	gotID  string
	gotDoc preview.Document
}

func (f *fakePreview) CreatePreview(ctx context.Context, userID string, doc preview.Document) (string, error) {
	f.gotID = userID
	f.gotDoc = doc
	return f.uri, f.err
}

func newTestHandler(store *fakeStore, allow bool) (*Handler, *fakeAuthz, *fakePreview) {
	authz := &fakeAuthz{allow: allow}
	pv := &fakePreview{uri: "https://bucket.s3.amazonaws.com/previews/u1.pdf"}
	return NewHandler(store, authz, pv, "cognito:username"), authz, pv
}

// doRequest runs a handler with an authenticated caller and URL params
// already resolved.
func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	ctx := context.WithValue(req.Context(), identityKey{}, auth.Identity{UserID: "u1"})
	rctx := chi.NewRouteContext()
	for key, val := range params {
		rctx.URLParams.Add(key, val)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)

	rec := httptest.NewRecorder()
	handler(rec, req.WithContext(ctx))
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	store := &fakeStore{}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.Health, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("expected success envelope")
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	store := &fakeStore{err: context.DeadlineExceeded}
	h, _, _ := newTestHandler(store, true)

	rec := doRequest(t, h.Health, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
