package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// userRow yields a users-table row with the given password hash and flags.
func userRow(id, email string, passwordHash *string, isActive, isStaff bool) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		setString(dest[0], id)
		setString(dest[1], email)
		if passwordHash != nil {
			setString(dest[2], *passwordHash)
		}
		setString(dest[3], "Ada")
		setString(dest[4], "Lovelace")
		setString(dest[5], "")
		// dest[6] birthday stays nil
		*(dest[7].(*bool)) = isActive
		*(dest[8].(*bool)) = isStaff
		*(dest[9].(*bool)) = false
		*(dest[10].(*time.Time)) = time.Now()
		*(dest[11].(*time.Time)) = time.Now()
		return nil
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(userRow("u1", "ada@example.com", &hash, true, false))

	svc := NewAuthService(db)
	user, err := svc.Authenticate(context.Background(), "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(userRow("u1", "ada@example.com", &hash, true, false))

	svc := NewAuthService(db)
	_, err = svc.Authenticate(context.Background(), "ada@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow(pgx.ErrNoRows))

	svc := NewAuthService(db)
	_, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(userRow("u1", "ada@example.com", &hash, false, false))

	svc := NewAuthService(db)
	_, err = svc.Authenticate(context.Background(), "ada@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticatePasswordlessAccount(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(userRow("u1", "ada@example.com", nil, true, false))

	svc := NewAuthService(db)
	_, err := svc.Authenticate(context.Background(), "ada@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueTokenStoresHashNotKey(t *testing.T) {
	db := &mockDB{}
	var inserted []any
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]any)
		}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	svc := NewAuthService(db)
	key, err := svc.IssueToken(context.Background(), "u1")
	require.NoError(t, err)

	assert.Len(t, key, 40)
	require.Len(t, inserted, 4)
	assert.Equal(t, "u1", inserted[1])
	assert.Equal(t, hashTokenKey(key), inserted[2])
	assert.NotEqual(t, key, inserted[2])
}

func TestIssueTokenInsertError(t *testing.T) {
	db := &mockDB{}
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("insert failed"))

	svc := NewAuthService(db)
	_, err := svc.IssueToken(context.Background(), "u1")
	assert.Error(t, err)
}

func TestUserForTokenInvalidKey(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow(pgx.ErrNoRows))

	svc := NewAuthService(db)
	_, err := svc.UserForToken(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateOTPUnknownEmail(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow(pgx.ErrNoRows))

	svc := NewAuthService(db)
	_, _, err := svc.CreateOTP(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOTPReturnsSixDigitCode(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(userRow("u1", "ada@example.com", &hash, true, false))
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	svc := NewAuthService(db)
	user, code, err := svc.CreateOTP(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Regexp(t, `^[0-9]{6}$`, code)
}

func TestVerifyOTPBadCode(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	db := &mockDB{}
	// First QueryRow resolves the user, second fails to consume a code.
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return !strings.Contains(sql, "otp_tokens")
	}), mock.Anything).Return(userRow("u1", "ada@example.com", &hash, true, false))
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "otp_tokens")
	}), mock.Anything).Return(errRow(pgx.ErrNoRows))

	svc := NewAuthService(db)
	_, err = svc.VerifyOTP(context.Background(), "ada@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
