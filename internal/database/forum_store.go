// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// maxCommentDepth caps how deep the threaded comment query recurses. Depth
// is zero-based, so this admits ten nesting levels.
const maxCommentDepth = 10

// ListPosts returns every post with its author, vote score, the calling
// user's own vote, and the comment count, newest first.
func (s *Store) ListPosts(ctx context.Context, userID string) ([]map[string]any, error) {
	const q = `SELECT
  p.post_id,
  p.title,
  p.body,
  p.tags,
  p.created_at,
  p.user_id,
  u.username,
  COALESCE(SUM(v.vote_value), 0) AS vote_score,
  (SELECT vote_value FROM post_votes WHERE post_id = p.post_id AND user_id = $1) AS user_vote,
  (SELECT COUNT(*) FROM post_comments WHERE post_id = p.post_id) AS num_comments
FROM posts p
JOIN users u ON u.user_id = p.user_id
LEFT JOIN post_votes v ON v.post_id = p.post_id
GROUP BY p.post_id, u.username
ORDER BY p.created_at DESC`

	return s.Query(ctx, "forum.posts.list", q, userID)
}

// GetPost returns a single post in the list shape.
func (s *Store) GetPost(ctx context.Context, postID, userID string) (map[string]any, error) {
	const q = `SELECT
  p.post_id,
  p.title,
  p.body,
  p.tags,
  p.created_at,
  p.user_id,
  u.username,
  COALESCE(SUM(v.vote_value), 0) AS vote_score,
  (SELECT vote_value FROM post_votes WHERE post_id = p.post_id AND user_id = $2) AS user_vote,
  (SELECT COUNT(*) FROM post_comments WHERE post_id = p.post_id) AS num_comments
FROM posts p
JOIN users u ON u.user_id = p.user_id
LEFT JOIN post_votes v ON v.post_id = p.post_id
WHERE p.post_id = $1
GROUP BY p.post_id, u.username`

	return s.QueryRow(ctx, "forum.posts.get", q, postID, userID)
}

// CreatePost inserts a post and the author's automatic upvote in one
// transaction, returning the new post id.
func (s *Store) CreatePost(ctx context.Context, userID, title, body string, tags []string) (int64, error) {
	var postID int64
	err := s.ExecTx(ctx, "forum.posts.create", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO posts(user_id, title, body, tags) VALUES ($1, $2, $3, $4) RETURNING post_id`,
			userID, title, body, tags)
		if err := row.Scan(&postID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO post_votes(post_id, user_id, vote_value) VALUES ($1, $2, 1)`,
			postID, userID)
		return err
	})
	return postID, err
}

// VotePost toggles the user's vote on a post and returns the resulting
// vote value: value when inserted or changed, 0 when the repeated vote was
// removed.
func (s *Store) VotePost(ctx context.Context, postID, userID string, value int) (int, error) {
	return s.toggleVote(ctx, "forum.posts.vote", "post_votes", "post_id", postID, userID, value)
}

// VoteComment toggles the user's vote on a comment.
func (s *Store) VoteComment(ctx context.Context, commentID, userID string, value int) (int, error) {
	return s.toggleVote(ctx, "forum.comments.vote", "comment_votes", "comment_id", commentID, userID, value)
}

// toggleVote implements the three-way vote toggle inside one transaction:
// no existing vote inserts, an identical vote deletes, a differing vote
// updates. The row lock keeps two rapid toggles from double-inserting.
func (s *Store) toggleVote(ctx context.Context, op, table, keyColumn, targetID, userID string, value int) (int, error) {
	result := value
	err := s.ExecTx(ctx, op, func(tx pgx.Tx) error {
		var existing int
		row := tx.QueryRow(ctx,
			fmt.Sprintf(`SELECT vote_value FROM %s WHERE %s = $1 AND user_id = $2 FOR UPDATE`, table, keyColumn),
			targetID, userID)

		err := row.Scan(&existing)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			_, err = tx.Exec(ctx,
				fmt.Sprintf(`INSERT INTO %s(%s, user_id, vote_value) VALUES ($1, $2, $3)`, table, keyColumn),
				targetID, userID, value)
			return err
		case err != nil:
			return err
		case existing == value:
			result = 0
			_, err = tx.Exec(ctx,
				fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND user_id = $2`, table, keyColumn),
				targetID, userID)
			return err
		default:
			_, err = tx.Exec(ctx,
				fmt.Sprintf(`UPDATE %s SET vote_value = $3 WHERE %s = $1 AND user_id = $2`, table, keyColumn),
				targetID, userID, value)
			return err
		}
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// CreateComment inserts a comment (optionally nested under a parent) and
// the author's automatic upvote, returning the new comment id.
func (s *Store) CreateComment(ctx context.Context, postID, userID, body string, parentCommentID *int64) (int64, error) {
	var commentID int64
	err := s.ExecTx(ctx, "forum.comments.create", func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO post_comments(post_id, parent_comment_id, user_id, body) VALUES ($1, $2, $3, $4) RETURNING comment_id`,
			postID, parentCommentID, userID, body)
		if err := row.Scan(&commentID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO comment_votes(comment_id, user_id, vote_value) VALUES ($1, $2, 1)`,
			commentID, userID)
		return err
	})
	return commentID, err
}

// commentTreeQuery walks a post's comments recursively, carrying a sort_key
// path array and a zero-based depth counter. Top-level comments are depth 0,
// matching the depth echoed back when a comment is created.
const commentTreeQuery = `WITH RECURSIVE replies AS (
  SELECT
    comment_id,
    post_id,
    parent_comment_id,
    user_id,
    body,
    created_at,
    ARRAY[comment_id]::int[] AS sort_key,
    0 AS depth
  FROM post_comments
  WHERE parent_comment_id IS NULL
  UNION ALL
  SELECT
    p.comment_id,
    p.post_id,
    p.parent_comment_id,
    p.user_id,
    p.body,
    p.created_at,
    array_append(r.sort_key, p.comment_id),
    r.depth + 1
  FROM post_comments p
  JOIN replies r ON p.parent_comment_id = r.comment_id
)
SELECT
  r.comment_id,
  r.post_id,
  r.parent_comment_id,
  r.user_id,
  r.body,
  r.created_at,
  r.sort_key,
  r.depth,
  u.username,
  COALESCE(SUM(v.vote_value), 0) AS vote_score,
  (SELECT vote_value FROM comment_votes WHERE comment_id = r.comment_id AND user_id = $2) AS user_vote
FROM replies r
JOIN users u ON u.user_id = r.user_id
LEFT JOIN comment_votes v ON v.comment_id = r.comment_id
WHERE r.post_id = $1 AND r.depth < $3
GROUP BY r.comment_id, r.post_id, r.parent_comment_id, r.user_id, r.body, r.created_at, r.sort_key, r.depth, u.username
ORDER BY vote_score DESC, r.depth`

// ListComments returns a post's comment tree. The final ordering is by vote
// score then depth, with the sort_key left to the client for tree
// reconstruction.
func (s *Store) ListComments(ctx context.Context, postID, userID string) ([]map[string]any, error) {
	return s.Query(ctx, "forum.comments.list", commentTreeQuery, postID, userID, maxCommentDepth)
}
