package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// ErrEmailTaken is returned when registering or changing to an email that
// already has an account.
var ErrEmailTaken = errors.New("a user with this email already exists")

// UserService manages account records.
type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, gender,
	birthday, is_active, is_staff, is_verified, created_at, updated_at`

// NewUserParams holds the fields for account creation.
type NewUserParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Gender    string
	Birthday  *time.Time
	IsStaff   bool
}

// Create registers a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, p NewUserParams) (*model.User, error) {
	email := NormalizeEmail(p.Email)

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           platform.NewID(),
		Email:        email,
		PasswordHash: &hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Gender:       p.Gender,
		Birthday:     p.Birthday,
		IsActive:     true,
		IsStaff:      p.IsStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, gender,
		   birthday, is_active, is_staff, is_verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Gender,
		user.Birthday, user.IsActive, user.IsStaff, user.IsVerified, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Gender,
		&u.Birthday, &u.IsActive, &u.IsStaff, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// UpdateProfileParams carries optional profile fields; nil means unchanged.
type UpdateProfileParams struct {
	FirstName *string
	LastName  *string
	Gender    *string
	Birthday  *time.Time
}

// UpdateProfile changes profile fields. Email and password have dedicated
// operations and are never touched here.
func (s *UserService) UpdateProfile(ctx context.Context, id string, p UpdateProfileParams) (*model.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	argIdx := 1

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Gender != nil {
		add("gender", *p.Gender)
	}
	if p.Birthday != nil {
		add("birthday", *p.Birthday)
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}

	return s.GetByID(ctx, id)
}

// UpdatePassword replaces the password hash.
func (s *UserService) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateEmail changes the login email and clears the verified flag, since
// the new address has not been confirmed.
func (s *UserService) UpdateEmail(ctx context.Context, id, email string) error {
	email = NormalizeEmail(email)

	var takenBy string
	err := s.db.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`, email,
	).Scan(&takenBy)
	if err == nil && takenBy != id {
		return ErrEmailTaken
	}

	_, err = s.db.Exec(ctx,
		`UPDATE users SET email = $1, is_verified = false, updated_at = now() WHERE id = $2`, email, id)
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	return nil
}

// SoftDelete deactivates the account. Rows are kept; tokens are removed so
// the account cannot be used again without reactivation.
func (s *UserService) SoftDelete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	_, err = s.db.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("remove tokens for deleted user: %w", err)
	}
	return nil
}

// NormalizeEmail lowercases the domain part, matching Django's
// BaseUserManager.normalize_email.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func scanUserByEmail(ctx context.Context, db DB, email string) (*model.User, error) {
	var u model.User
	err := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Gender,
		&u.Birthday, &u.IsActive, &u.IsStaff, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
