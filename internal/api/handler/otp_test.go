package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dropwishes/api/internal/core"
)

// recordingMailer captures sent mail for assertions.
type recordingMailer struct {
	to      string
	subject string
	body    string
	sends   int
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sends++
	return nil
}

func TestOTPRequest_UnknownEmailStill200(t *testing.T) {
	db := new(handlerMockDB)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(errRow{err: pgx.ErrNoRows})

	mailer := &recordingMailer{}
	h := NewOTP(core.NewAuthService(db), mailer, zerolog.Nop())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/otp-auth", map[string]any{
		"email": "nobody@example.com",
	})

	h.Request(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, mailer.sends)
}

func TestOTPRequest_SendsCode(t *testing.T) {
	db := new(handlerMockDB)
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "FROM users WHERE email")
	}), mock.Anything).Return(staticRow{scan: userRowScan("ada@example.com", nil)})
	db.On("Exec", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "INSERT INTO otp_tokens")
	}), mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	mailer := &recordingMailer{}
	h := NewOTP(core.NewAuthService(db), mailer, zerolog.Nop())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/otp-auth", map[string]any{
		"email": "ada@example.com",
	})

	h.Request(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, mailer.sends)
	assert.Equal(t, "ada@example.com", mailer.to)
	assert.Contains(t, mailer.body, "expires in 15 minutes")
	db.AssertExpectations(t)
}

func TestOTPRequest_InvalidEmail(t *testing.T) {
	h := NewOTP(nil, nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/otp-auth", map[string]any{
		"email": "not-an-email",
	})

	h.Request(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOTPVerify_RejectsBadCodeShape(t *testing.T) {
	h := NewOTP(nil, nil, zerolog.Nop())

	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		rec := httptest.NewRecorder()
		r := newRequest(http.MethodPost, "/api/otp-auth/verify", map[string]any{
			"email": "ada@example.com",
			"code":  code,
		})

		h.Verify(rec, r)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "code %q", code)
	}
}

func TestOTPVerify_WrongCode(t *testing.T) {
	db := new(handlerMockDB)
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "FROM users WHERE email")
	}), mock.Anything).Return(staticRow{scan: userRowScan("ada@example.com", nil)})
	db.On("QueryRow", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "UPDATE otp_tokens")
	}), mock.Anything).Return(errRow{err: pgx.ErrNoRows})

	h := NewOTP(core.NewAuthService(db), nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/otp-auth/verify", map[string]any{
		"email": "ada@example.com",
		"code":  "123456",
	})

	h.Verify(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
