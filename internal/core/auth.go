package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dropwishes/api/internal/model"
	"github.com/dropwishes/api/internal/platform"
)

// ErrInvalidCredentials is returned for any authentication failure. It is
// deliberately uniform so responses do not leak which part was wrong.
var ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

const otpLifetime = 15 * time.Minute

// AuthService manages password logins, API tokens, and OTP login codes.
type AuthService struct {
	db DB
}

func NewAuthService(db DB) *AuthService {
	return &AuthService{db: db}
}

// Authenticate checks email and password and returns the matching active user.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := scanUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken creates a new auth token for the user and returns the raw key.
// Only the SHA-256 hash is persisted.
func (s *AuthService) IssueToken(ctx context.Context, userID string) (string, error) {
	key := platform.NewTokenKey()

	_, err := s.db.Exec(ctx,
		`INSERT INTO auth_tokens (id, user_id, token_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		platform.NewID(), userID, hashTokenKey(key), time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("insert auth token: %w", err)
	}

	return key, nil
}

// UserForToken resolves a raw token key to its active user.
func (s *AuthService) UserForToken(ctx context.Context, key string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.gender,
		        u.birthday, u.is_active, u.is_staff, u.is_verified, u.created_at, u.updated_at
		 FROM auth_tokens t JOIN users u ON u.id = t.user_id
		 WHERE t.token_hash = $1 AND u.is_active`, hashTokenKey(key),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Gender,
		&u.Birthday, &u.IsActive, &u.IsStaff, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// RevokeToken deletes the token identified by its raw key.
func (s *AuthService) RevokeToken(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM auth_tokens WHERE token_hash = $1`, hashTokenKey(key))
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeAllTokens deletes every token for the user. Called on password change.
func (s *AuthService) RevokeAllTokens(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("revoke tokens for user %s: %w", userID, err)
	}
	return nil
}

// CreateOTP generates a login code for the user with the given email and
// returns it for delivery. Unknown or inactive emails return ErrNotFound so
// the caller can hide the outcome from the client.
func (s *AuthService) CreateOTP(ctx context.Context, email string) (*model.User, string, error) {
	user, err := scanUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, "", notFound(err)
	}
	if !user.IsActive {
		return nil, "", ErrNotFound
	}

	code := platform.NewOTPCode()
	now := time.Now()
	_, err = s.db.Exec(ctx,
		`INSERT INTO otp_tokens (id, user_id, code, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		platform.NewID(), user.ID, code, now.Add(otpLifetime), now,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert otp token: %w", err)
	}

	return user, code, nil
}

// VerifyOTP consumes a valid, unexpired code, marks the user verified, and
// returns a fresh auth token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	user, err := scanUserByEmail(ctx, s.db, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	var otpID string
	err = s.db.QueryRow(ctx,
		`UPDATE otp_tokens SET consumed_at = now()
		 WHERE id = (
		   SELECT id FROM otp_tokens
		   WHERE user_id = $1 AND code = $2 AND consumed_at IS NULL AND expires_at > now()
		   ORDER BY created_at DESC LIMIT 1
		 )
		 RETURNING id`, user.ID, code,
	).Scan(&otpID)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE users SET is_verified = true, updated_at = now() WHERE id = $1`, user.ID,
	); err != nil {
		return "", fmt.Errorf("mark user verified: %w", err)
	}

	return s.IssueToken(ctx, user.ID)
}

func hashTokenKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
