package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "password123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "password124")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsWeak(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestVerifyPasswordBadFormat(t *testing.T) {
	_, err := VerifyPassword("not-a-hash", "password123")
	assert.Error(t, err)
}

func TestVerifyPasswordHonoursStoredParams(t *testing.T) {
	salt := []byte("0123456789abcdef")
	weak := argonParams{memory: 8 * 1024, iterations: 1, parallelism: 1, keyLength: 16}
	stored := "argon2id$m=8192,t=1,p=1$" +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(weak.key("password123", salt))

	ok, err := VerifyPassword(stored, "password123")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = VerifyPassword("argon2id$m=x$salt$hash", "password123")
	assert.ErrorIs(t, err, ErrInvalidHashFormat)
}
