package core

import (
	"context"
	"fmt"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// TagService manages blog tags. Reads are public; writes are restricted to
// staff at the handler layer.
type TagService struct {
	db DB
}

func NewTagService(db DB) *TagService {
	return &TagService{db: db}
}

const tagColumns = `id, user_id, name, created_at, updated_at`

// List returns all tags.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tagColumns+` FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}

func (s *TagService) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	var t model.Tag
	err := s.db.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// GetOrCreate returns the user's tag with the given name, creating it when
// absent. Used for tags nested in post payloads.
func (s *TagService) GetOrCreate(ctx context.Context, userID, name string) (*model.Tag, error) {
	var t model.Tag
	err := s.db.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = $1 AND name = $2`, userID, name,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err == nil {
		return &t, nil
	}

	now := time.Now()
	t = model.Tag{
		ID:        platform.NewID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.Exec(ctx,
		`INSERT INTO tags (id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.Name, t.CreatedAt, t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}

	return &t, nil
}

// Update renames a tag.
func (s *TagService) Update(ctx context.Context, id, name string) (*model.Tag, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE tags SET name = $1, updated_at = now() WHERE id = $2`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a tag and its post attachments.
func (s *TagService) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM post_tags WHERE tag_id = $1`, id); err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
