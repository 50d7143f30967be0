package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// ProductService manages a user's products. Every query is scoped to the
// owning user; a product belonging to someone else behaves as missing.
type ProductService struct {
	db DB
}

func NewProductService(db DB) *ProductService {
	return &ProductService{db: db}
}

const productColumns = `id, user_id, name, priority, price, link, image_path, notes, created_at, updated_at`

// NewProductParams holds the fields for product creation.
type NewProductParams struct {
	Name     string
	Priority string
	Price    string
	Link     *string
	Notes    string
}

// Create inserts a product for the user.
func (s *ProductService) Create(ctx context.Context, userID string, p NewProductParams) (*model.Product, error) {
	if p.Priority == "" {
		p.Priority = model.PriorityLow
	}

	now := time.Now()
	product := &model.Product{
		ID:        platform.NewID(),
		UserID:    userID,
		Name:      p.Name,
		Priority:  p.Priority,
		Price:     p.Price,
		Link:      p.Link,
		Notes:     p.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO products (id, user_id, name, priority, price, link, image_path, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.UserID, product.Name, product.Priority, product.Price,
		product.Link, product.ImagePath, product.Notes, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

// GetOrCreate returns the user's product matching name and price, creating
// it when absent. Used when products arrive nested in a wishlist payload.
func (s *ProductService) GetOrCreate(ctx context.Context, userID string, p NewProductParams) (*model.Product, error) {
	var existing model.Product
	err := s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE user_id = $1 AND name = $2 AND price = $3`,
		userID, p.Name, p.Price,
	).Scan(&existing.ID, &existing.UserID, &existing.Name, &existing.Priority, &existing.Price,
		&existing.Link, &existing.ImagePath, &existing.Notes, &existing.CreatedAt, &existing.UpdatedAt)
	if err == nil {
		return &existing, nil
	}

	return s.Create(ctx, userID, p)
}

// GetByID returns the user's product or ErrNotFound.
func (s *ProductService) GetByID(ctx context.Context, userID, id string) (*model.Product, error) {
	var p model.Product
	err := s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Priority, &p.Price,
		&p.Link, &p.ImagePath, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// List returns the user's products, name descending. With assignedOnly it
// keeps only products attached to at least one wishlist.
func (s *ProductService) List(ctx context.Context, userID string, assignedOnly bool) ([]model.Product, error) {
	query := `SELECT DISTINCT ` + productColumns + ` FROM products WHERE user_id = $1`
	if assignedOnly {
		query = `SELECT DISTINCT p.id, p.user_id, p.name, p.priority, p.price, p.link, p.image_path, p.notes, p.created_at, p.updated_at
		 FROM products p JOIN wishlist_products wp ON wp.product_id = p.id
		 WHERE p.user_id = $1`
	}
	query += ` ORDER BY name DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Priority, &p.Price,
			&p.Link, &p.ImagePath, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// UpdateProductParams carries optional fields; nil means unchanged.
type UpdateProductParams struct {
	Name     *string
	Priority *string
	Price    *string
	Link     *string
	Notes    *string
}

// Update applies a partial update to the user's product.
func (s *ProductService) Update(ctx context.Context, userID, id string, p UpdateProductParams) (*model.Product, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	argIdx := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Link != nil {
		add("link", *p.Link)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), argIdx, argIdx+1)
	args = append(args, id, userID)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, userID, id)
}

// SetImage records the stored image path for the product.
func (s *ProductService) SetImage(ctx context.Context, userID, id, path string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE products SET image_path = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		path, id, userID)
	if err != nil {
		return fmt.Errorf("set product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user's product.
func (s *ProductService) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
