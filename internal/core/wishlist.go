package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// WishlistService manages wishlists and their product attachments. All
// operations are scoped to the owning user.
type WishlistService struct {
	db       DB
	products *ProductService
}

func NewWishlistService(db DB, products *ProductService) *WishlistService {
	return &WishlistService{db: db, products: products}
}

const wishlistColumns = `id, user_id, title, description, occasion_date, address, created_at, updated_at`

// NewWishlistParams holds the fields for wishlist creation.
type NewWishlistParams struct {
	Title        string
	Description  string
	OccasionDate *time.Time
	Address      string
	Products     []NewProductParams
}

// Create inserts a wishlist and attaches its nested products, creating any
// that don't exist yet for this user.
func (s *WishlistService) Create(ctx context.Context, userID string, p NewWishlistParams) (*model.Wishlist, error) {
	now := time.Now()
	w := &model.Wishlist{
		ID:           platform.NewID(),
		UserID:       userID,
		Title:        p.Title,
		Description:  p.Description,
		OccasionDate: p.OccasionDate,
		Address:      p.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO wishlists (id, user_id, title, description, occasion_date, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.UserID, w.Title, w.Description, w.OccasionDate, w.Address, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert wishlist: %w", err)
	}

	if err := s.attachProducts(ctx, userID, w.ID, p.Products); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, userID, w.ID)
}

// GetByID returns the user's wishlist with its products, or ErrNotFound.
func (s *WishlistService) GetByID(ctx context.Context, userID, id string) (*model.Wishlist, error) {
	var w model.Wishlist
	err := s.db.QueryRow(ctx,
		`SELECT `+wishlistColumns+` FROM wishlists WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&w.ID, &w.UserID, &w.Title, &w.Description, &w.OccasionDate, &w.Address, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	products, err := s.productsFor(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Products = products

	return &w, nil
}

// List returns the user's wishlists, newest first, each with its products.
// productIDs, when non-empty, keeps only wishlists containing at least one
// of the given products.
func (s *WishlistService) List(ctx context.Context, userID string, productIDs []string) ([]model.Wishlist, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlists WHERE user_id = $1`
	args := []any{userID}

	if len(productIDs) > 0 {
		query = `SELECT DISTINCT w.id, w.user_id, w.title, w.description, w.occasion_date, w.address, w.created_at, w.updated_at
		 FROM wishlists w JOIN wishlist_products wp ON wp.wishlist_id = w.id
		 WHERE w.user_id = $1 AND wp.product_id = ANY($2)`
		args = append(args, productIDs)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wishlists: %w", err)
	}
	defer rows.Close()

	var lists []model.Wishlist
	for rows.Next() {
		var w model.Wishlist
		if err := rows.Scan(&w.ID, &w.UserID, &w.Title, &w.Description, &w.OccasionDate,
			&w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist: %w", err)
		}
		lists = append(lists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlists: %w", err)
	}

	for i := range lists {
		products, err := s.productsFor(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Products = products
	}

	return lists, nil
}

// UpdateWishlistParams carries optional fields; nil means unchanged. A
// non-nil empty Products slice clears attachments.
type UpdateWishlistParams struct {
	Title        *string
	Description  *string
	OccasionDate *time.Time
	Address      *string
	Products     *[]NewProductParams
}

// Update applies a partial update, replacing product attachments when the
// payload includes a products array.
func (s *WishlistService) Update(ctx context.Context, userID, id string, p UpdateWishlistParams) (*model.Wishlist, error) {
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
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.OccasionDate != nil {
		add("occasion_date", *p.OccasionDate)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}

	query := fmt.Sprintf(`UPDATE wishlists SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), argIdx, argIdx+1)
	args = append(args, id, userID)

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update wishlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if p.Products != nil {
		if _, err := s.db.Exec(ctx,
			`DELETE FROM wishlist_products WHERE wishlist_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear wishlist products: %w", err)
		}
		if err := s.attachProducts(ctx, userID, id, *p.Products); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, userID, id)
}

// Delete removes the user's wishlist. Attachments go with it; the products
// themselves stay.
func (s *WishlistService) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM wishlists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *WishlistService) attachProducts(ctx context.Context, userID, wishlistID string, products []NewProductParams) error {
	for _, np := range products {
		product, err := s.products.GetOrCreate(ctx, userID, np)
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(ctx,
			`INSERT INTO wishlist_products (wishlist_id, product_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			wishlistID, product.ID); err != nil {
			return fmt.Errorf("attach product %s: %w", product.ID, err)
		}
	}
	return nil
}

func (s *WishlistService) productsFor(ctx context.Context, wishlistID string) ([]model.Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.user_id, p.name, p.priority, p.price, p.link, p.image_path, p.notes, p.created_at, p.updated_at
		 FROM products p JOIN wishlist_products wp ON wp.product_id = p.id
		 WHERE wp.wishlist_id = $1 ORDER BY p.name`, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Priority, &p.Price,
			&p.Link, &p.ImagePath, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist products: %w", err)
	}

	return products, nil
}
