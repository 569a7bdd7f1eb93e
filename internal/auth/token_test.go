package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/fieldops-app/internal/apperr"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	token, err := svc.Issue(42, 7, "ADMIN", 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, uint(7), claims.AccountID)
	assert.Equal(t, "ADMIN", claims.RoleName)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	token, err := svc.Issue(1, 1, "ADMIN", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-a"), time.Hour)
	verifier := NewTokenService([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue(1, 1, "ADMIN", 0)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

// Any single-bit mutation of the token must be rejected with the same
// outcome as an expired or missing one.
func TestTokenBitFlip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	token, err := svc.Issue(42, 7, "ADMIN", 0)
	require.NoError(t, err)

	for i := 0; i < len(token); i += 7 {
		mutated := []byte(token)
		mutated[i] ^= 0x01
		if string(mutated) == token {
			continue
		}
		_, err := svc.Verify(string(mutated))
		assert.ErrorIs(t, err, apperr.ErrUnauthorized, "flipped byte %d", i)
	}
}

func TestTokenMalformed(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized, "token %q", tok)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), 0)

	token, err := svc.Issue(1, 1, "USER", 0)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 23*time.Hour)
	assert.LessOrEqual(t, remaining, 24*time.Hour)
}
