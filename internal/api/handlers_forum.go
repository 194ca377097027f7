// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListPosts returns every post with vote score, the caller's own vote,
// and comment count.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rows, err := h.db.ListPosts(r.Context(), callerID(r))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}

type createPostRequest struct {
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Tags  []string `json:"tags"`
}

// CreatePost inserts a post and the author's automatic upvote in one
// transaction.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req createPostRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	postID, err := h.db.CreatePost(r.Context(), callerID(r), req.Title, req.Body, req.Tags)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Created(map[string]any{"post_id": postID})
}

// GetPost returns a single post with its vote and comment counts.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	row, err := h.db.GetPost(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(row)
}

type voteRequest struct {
	Value int `json:"value" validate:"required,oneof=-1 1"`
}

// VotePost toggles the caller's vote on a post: a repeat of the same
// value clears it, the opposite value flips it.
func (h *Handler) VotePost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req voteRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	value, err := h.db.VotePost(r.Context(), chi.URLParam(r, "id"), callerID(r), req.Value)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]any{
		"post_id":    chi.URLParam(r, "id"),
		"user_id":    callerID(r),
		"vote_value": value,
	})
}

// VoteComment toggles the caller's vote on a comment.
func (h *Handler) VoteComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req voteRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	value, err := h.db.VoteComment(r.Context(), chi.URLParam(r, "id"), callerID(r), req.Value)
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(map[string]any{
		"comment_id": chi.URLParam(r, "id"),
		"user_id":    callerID(r),
		"vote_value": value,
	})
}

type createCommentRequest struct {
	Body     string  `json:"body" validate:"required"`
	ParentID *int64  `json:"parentId"`
	Username string  `json:"username"`
	SortKey  []int64 `json:"sortKey"`
}

// CreateComment inserts a comment plus the author's upvote and echoes
// the thread position the client needs to splice it in place: the
// sort key extended with the new ID and the depth under its parent.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req createCommentRequest
	if !decodeJSON(rw, r, &req) {
		return
	}

	commentID, err := h.db.CreateComment(r.Context(), chi.URLParam(r, "id"), callerID(r), req.Body, req.ParentID)
	if err != nil {
		rw.writeDomainError(err)
		return
	}

	rw.Created(map[string]any{
		"comment_id": commentID,
		"post_id":    chi.URLParam(r, "id"),
		"user_id":    callerID(r),
		"body":       req.Body,
		"username":   req.Username,
		"user_vote":  1,
		"vote_score": 1,
		"sort_key":   append(req.SortKey, commentID),
		"depth":      len(req.SortKey),
	})
}

// ListComments returns the post's comment tree flattened in display
// order: best scoring threads first, parents before children.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rows, err := h.db.ListComments(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		rw.writeDomainError(err)
		return
	}
	rw.Success(rows)
}
