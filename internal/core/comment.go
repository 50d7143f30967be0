package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// Reply rule violations. Replies are single-level and one per parent, and
// only staff may create them; the permission half is enforced by handlers.
var (
	ErrReplyToReply = errors.New("replies to replies are not allowed")
	ErrReplyExists  = errors.New("a parent comment can only have one reply")
)

// CommentService manages post comments.
type CommentService struct {
	db DB
}

func NewCommentService(db DB) *CommentService {
	return &CommentService{db: db}
}

const commentSelect = `SELECT c.id, c.owner_id, u.first_name, c.post_id, c.parent_comment_id, c.body, c.created_at, c.updated_at
	FROM comments c JOIN users u ON u.id = c.owner_id`

// NewCommentParams holds the fields for comment creation.
type NewCommentParams struct {
	PostID          string
	ParentCommentID *string
	Body            string
}

// Create inserts a comment after checking the reply rules against the
// parent, when one is given.
func (s *CommentService) Create(ctx context.Context, ownerID string, p NewCommentParams) (*model.Comment, error) {
	if p.ParentCommentID != nil {
		parent, err := s.GetByID(ctx, *p.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentCommentID != nil {
			return nil, ErrReplyToReply
		}

		var hasReply bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM comments WHERE parent_comment_id = $1)`,
			parent.ID,
		).Scan(&hasReply); err != nil {
			return nil, fmt.Errorf("check existing reply: %w", err)
		}
		if hasReply {
			return nil, ErrReplyExists
		}
	}

	now := time.Now()
	id := platform.NewID()
	_, err := s.db.Exec(ctx,
		`INSERT INTO comments (id, owner_id, post_id, parent_comment_id, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, ownerID, p.PostID, p.ParentCommentID, p.Body, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns a comment with its replies.
func (s *CommentService) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := s.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id,
	).Scan(&c.ID, &c.OwnerID, &c.Owner, &c.PostID, &c.ParentCommentID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	replies, err := s.repliesFor(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Replies = replies

	return &c, nil
}

// ListTopLevel returns all top-level comments, newest first, with their
// replies nested.
func (s *CommentService) ListTopLevel(ctx context.Context) ([]model.Comment, error) {
	rows, err := s.db.Query(ctx,
		commentSelect+` WHERE c.parent_comment_id IS NULL ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Owner, &c.PostID, &c.ParentCommentID,
			&c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	for i := range comments {
		replies, err := s.repliesFor(ctx, comments[i].ID)
		if err != nil {
			return nil, err
		}
		comments[i].Replies = replies
	}

	return comments, nil
}

// Update replaces the comment body.
func (s *CommentService) Update(ctx context.Context, id, body string) (*model.Comment, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE comments SET body = $1, updated_at = now() WHERE id = $2`, body, id)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a comment and any reply under it.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM comments WHERE parent_comment_id = $1`, id); err != nil {
		return fmt.Errorf("delete replies: %w", err)
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CommentService) repliesFor(ctx context.Context, parentID string) ([]model.Comment, error) {
	rows, err := s.db.Query(ctx,
		commentSelect+` WHERE c.parent_comment_id = $1 ORDER BY c.created_at DESC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	replies := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Owner, &c.PostID, &c.ParentCommentID,
			&c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		c.Replies = []model.Comment{}
		replies = append(replies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replies: %w", err)
	}

	return replies, nil
}
