// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	passwords := []string{"pw123", "correct horse battery staple", "", "ünïcødé-🙂"}

	for _, pw := range passwords {
		hash, err := HashPassword(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

		ok, err := VerifyPassword(pw, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q should verify", pw)

		ok, err = VerifyPassword(pw+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok, "wrong password for %q should not verify", pw)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same-input")
	require.NoError(t, err)
	b, err := HashPassword("same-input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, h := range []string{
		"",
		"plain-text",
		"$argon2id$v=19$m=65536,t=1,p=4$@@@$@@@",
		"$scrypt$v=1$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$2a$10$tooshort",
	} {
		ok, err := VerifyPassword("pw", h)
		assert.False(t, ok, "hash %q must not verify", h)
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", h)
	}
}

func TestVerifyPasswordWithRehash_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordWithRehash("pw123", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, newHash)
	assert.True(t, strings.HasPrefix(newHash, "$argon2id$"))

	ok, newHash, err = VerifyPasswordWithRehash("nope", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordWithRehash_CurrentParams(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordWithRehash("pw123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordTimingSafe_MissingHash(t *testing.T) {
	ok, newHash, err := VerifyPasswordTimingSafe("dummy_password_for_timing_attack_prevention", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}
