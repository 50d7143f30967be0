package core

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func existsRow(exists bool) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = exists
		return nil
	}}
}

func TestUserCreateSuccess(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(existsRow(false))

	var inserted []any
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]any)
		}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	svc := NewUserService(db)
	user, err := svc.Create(context.Background(), NewUserParams{
		Email:     "Ada@Example.COM",
		Password:  "secret123",
		FirstName: "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsVerified)
	require.NotNil(t, user.PasswordHash)
	assert.True(t, VerifyPassword("secret123", *user.PasswordHash))
	// Raw password never reaches the database.
	for _, arg := range inserted {
		s, ok := arg.(string)
		assert.False(t, ok && s == "secret123")
	}
}

func TestUserCreateEmailTaken(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(existsRow(true))

	svc := NewUserService(db)
	_, err := svc.Create(context.Background(), NewUserParams{
		Email:     "ada@example.com",
		Password:  "secret123",
		FirstName: "Ada",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserGetByIDNotFound(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow(pgx.ErrNoRows))

	svc := NewUserService(db)
	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserUpdateEmailTakenByOther(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			setString(dest[0], "someone-else")
			return nil
		}})

	svc := NewUserService(db)
	err := svc.UpdateEmail(context.Background(), "u1", "taken@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserUpdateEmailResetsVerified(t *testing.T) {
	db := &mockDB{}
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow(pgx.ErrNoRows))

	var query string
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			query = args.Get(1).(string)
		}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	svc := NewUserService(db)
	err := svc.UpdateEmail(context.Background(), "u1", "New@Example.COM")
	require.NoError(t, err)
	assert.Contains(t, query, "is_verified = false")
}

func TestUserSoftDeleteDeactivatesAndRevokesTokens(t *testing.T) {
	db := &mockDB{}
	var queries []string
	db.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			queries = append(queries, args.Get(1).(string))
		}).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	svc := NewUserService(db)
	err := svc.SoftDelete(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "is_active = false")
	assert.Contains(t, queries[1], "DELETE FROM auth_tokens")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Ada@example.com", NormalizeEmail("Ada@EXAMPLE.Com"))
	assert.Equal(t, "plain", NormalizeEmail("plain"))
	assert.Equal(t, "a@b.c", NormalizeEmail("  a@B.C  "))
}
