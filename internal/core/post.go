package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// PostService manages blog posts. Reads are public; writes are restricted
// to staff at the handler layer.
type PostService struct {
	db   DB
	tags *TagService
}

func NewPostService(db DB, tags *TagService) *PostService {
	return &PostService{db: db, tags: tags}
}

// NewPostParams holds the fields for post creation.
type NewPostParams struct {
	Title string
	Body  string
	Tags  []string
}

// Create inserts a post and attaches its tags, creating any the author
// doesn't have yet.
func (s *PostService) Create(ctx context.Context, ownerID string, p NewPostParams) (*model.Post, error) {
	now := time.Now()
	id := platform.NewID()

	_, err := s.db.Exec(ctx,
		`INSERT INTO posts (id, owner_id, title, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, ownerID, p.Title, p.Body, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	if err := s.attachTags(ctx, ownerID, id, p.Tags); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// GetByID returns a post with its tags and comment IDs.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := s.db.QueryRow(ctx,
		`SELECT p.id, p.owner_id, u.first_name, p.title, p.body, p.image_path, p.created_at, p.updated_at
		 FROM posts p JOIN users u ON u.id = p.owner_id
		 WHERE p.id = $1`, id,
	).Scan(&p.ID, &p.OwnerID, &p.Owner, &p.Title, &p.Body, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	if err := s.loadRelations(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.owner_id, u.first_name, p.title, p.body, p.image_path, p.created_at, p.updated_at
		 FROM posts p JOIN users u ON u.id = p.owner_id
		 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Owner, &p.Title, &p.Body,
			&p.ImagePath, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range posts {
		if err := s.loadRelations(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}

	return posts, nil
}

// UpdatePostParams carries optional fields; nil means unchanged. A non-nil
// Tags slice replaces the attachment set.
type UpdatePostParams struct {
	Title *string
	Body  *string
	Tags  *[]string
}

// Update applies a partial update. The acting user becomes the owner of any
// tags created through the payload.
func (s *PostService) Update(ctx context.Context, actorID, id string, p UpdatePostParams) (*model.Post, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	argIdx := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Body != nil {
		add("body", *p.Body)
	}

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d`, strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if p.Tags != nil {
		if _, err := s.db.Exec(ctx,
			`DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear post tags: %w", err)
		}
		if err := s.attachTags(ctx, actorID, id, *p.Tags); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// SetImage records the stored image path for the post.
func (s *PostService) SetImage(ctx context.Context, id, path string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE posts SET image_path = $1, updated_at = now() WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("set post image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post with its comments and tag attachments.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("detach post tags: %w", err)
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostService) attachTags(ctx context.Context, userID, postID string, names []string) error {
	for _, name := range names {
		tag, err := s.tags.GetOrCreate(ctx, userID, name)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, tag.ID); err != nil {
			return fmt.Errorf("attach tag %s: %w", tag.ID, err)
		}
	}
	return nil
}

func (s *PostService) loadRelations(ctx context.Context, p *model.Post) error {
	tagRows, err := s.db.Query(ctx,
		`SELECT t.id, t.user_id, t.name, t.created_at, t.updated_at
		 FROM tags t JOIN post_tags pt ON pt.tag_id = t.id
		 WHERE pt.post_id = $1 ORDER BY t.name`, p.ID)
	if err != nil {
		return fmt.Errorf("list post tags: %w", err)
	}
	defer tagRows.Close()

	p.Tags = []model.Tag{}
	for tagRows.Next() {
		var t model.Tag
		if err := tagRows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		p.Tags = append(p.Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterate post tags: %w", err)
	}

	commentRows, err := s.db.Query(ctx,
		`SELECT id FROM comments WHERE post_id = $1 ORDER BY created_at DESC`, p.ID)
	if err != nil {
		return fmt.Errorf("list post comments: %w", err)
	}
	defer commentRows.Close()

	p.CommentIDs = []string{}
	for commentRows.Next() {
		var id string
		if err := commentRows.Scan(&id); err != nil {
			return fmt.Errorf("scan post comment id: %w", err)
		}
		p.CommentIDs = append(p.CommentIDs, id)
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("iterate post comment ids: %w", err)
	}

	return nil
}
