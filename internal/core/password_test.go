package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=4$"))
	assert.True(t, VerifyPassword("correct-horse", hash))
	assert.False(t, VerifyPassword("wrong-horse", hash))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("samepass")
	require.NoError(t, err)
	h2, err := HashPassword("samepass")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("samepass", h1))
	assert.True(t, VerifyPassword("samepass", h2))
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("x", ""))
	assert.False(t, VerifyPassword("x", "not-a-hash"))
	assert.False(t, VerifyPassword("x", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"))
	assert.False(t, VerifyPassword("x", "$argon2id$v=19$m=bad,t=3,p=4$c2FsdA$aGFzaA"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("abc123"))
	assert.Error(t, ValidatePassword("abc12"))

	err := ValidatePassword("12345678")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "numeric")
}
