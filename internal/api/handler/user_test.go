package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dropwishes/api/internal/core"
)

// userRowScan fills the 12-column users select with an active account
// holding the given password hash.
func userRowScan(email string, hash *string) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*string) = "11111111-1111-1111-1111-111111111111"
		*dest[1].(*string) = email
		*dest[2].(**string) = hash
		*dest[3].(*string) = "Ada"
		*dest[7].(*bool) = true // is_active
		return nil
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()

	h.Register(rec, newRequestRaw(http.MethodPost, "/api/user/create", "{bad json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "invalid JSON")
}

func TestRegister_EmailMismatch(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/user/create", map[string]any{
		"email":            "ada@example.com",
		"confirm_email":    "other@example.com",
		"password":         "s3cretpw",
		"confirm_password": "s3cretpw",
		"first_name":       "Ada",
	})

	h.Register(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "email addresses do not match")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/user/create", map[string]any{
		"email":            "ada@example.com",
		"confirm_email":    "ada@example.com",
		"password":         "s3cretpw",
		"confirm_password": "different",
		"first_name":       "Ada",
	})

	h.Register(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "passwords do not match")
}

func TestRegister_AllNumericPassword(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/user/create", map[string]any{
		"email":            "ada@example.com",
		"confirm_email":    "ada@example.com",
		"password":         "12345678",
		"confirm_password": "12345678",
		"first_name":       "Ada",
	})

	h.Register(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToken_Success(t *testing.T) {
	hash, err := core.HashPassword("s3cretpw")
	require.NoError(t, err)

	db := new(handlerMockDB)
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "FROM users WHERE email")
	}), mock.Anything).Return(staticRow{scan: userRowScan("ada@example.com", &hash)})
	db.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "INSERT INTO auth_tokens")
	}), mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	h := NewUser(core.NewUserService(db), core.NewAuthService(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/user/token", map[string]any{
		"email":    "ada@example.com",
		"password": "s3cretpw",
	})

	h.Token(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, decodeJSON(rec, &body))
	assert.Len(t, body["token"], 40)
	db.AssertExpectations(t)
}

func TestToken_WrongPassword(t *testing.T) {
	hash, err := core.HashPassword("s3cretpw")
	require.NoError(t, err)

	db := new(handlerMockDB)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(staticRow{scan: userRowScan("ada@example.com", &hash)})

	h := NewUser(nil, core.NewAuthService(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/user/token", map[string]any{
		"email":    "ada@example.com",
		"password": "not-the-password",
	})

	h.Token(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_ReturnsProfile(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()
	r := asUser(newRequest(http.MethodGet, "/api/user/me", nil), testUser())

	h.Me(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")
	// Internal fields never leak.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "is_staff")
}

func TestMe_Unauthenticated(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()

	h.Me(rec, newRequest(http.MethodGet, "/api/user/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	hash, err := core.HashPassword("s3cretpw")
	require.NoError(t, err)
	user := testUser()
	user.PasswordHash = &hash

	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()
	r := asUser(newRequest(http.MethodPut, "/api/user/change-password", map[string]any{
		"old_password":  "wrong",
		"new_password1": "newsecret1",
		"new_password2": "newsecret1",
	}), user)

	h.ChangePassword(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "old password")
}

func TestChangeEmail_Mismatch(t *testing.T) {
	h := NewUser(nil, nil)
	rec := httptest.NewRecorder()
	r := asUser(newRequest(http.MethodPut, "/api/user/change-email", map[string]any{
		"new_email":     "new@example.com",
		"confirm_email": "other@example.com",
		"password":      "s3cretpw",
	}), testUser())

	h.ChangeEmail(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "email addresses do not match")
}
