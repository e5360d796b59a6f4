package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func signExpired(t *testing.T, key []byte, username string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestTokenManager_IssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager(testKey, 10*time.Hour)

	token, expiresAt, err := tm.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Hour), expiresAt, time.Minute)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_VerifyExpired(t *testing.T) {
	tm := NewTokenManager(testKey, 10*time.Hour)

	expired := signExpired(t, testKey, "alice")

	_, err := tm.Verify(expired)
	require.ErrorIs(t, err, ErrTokenExpired)

	// Expiry is monotonic; a stale token never verifies again.
	_, err = tm.Verify(expired)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_VerifyTampered(t *testing.T) {
	tm := NewTokenManager(testKey, 10*time.Hour)

	token, _, err := tm.Issue("alice")
	require.NoError(t, err)

	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	_, err = tm.Verify(tampered)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestTokenManager_VerifyWrongKey(t *testing.T) {
	issuer := NewTokenManager(testKey, 10*time.Hour)
	verifier := NewTokenManager([]byte("another-signing-key-entirely!!!!"), 10*time.Hour)

	token, _, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestTokenManager_VerifyMalformed(t *testing.T) {
	tm := NewTokenManager(testKey, 10*time.Hour)

	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := tm.Verify(garbage)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", garbage)
	}
}

func TestTokenManager_VerifyRequiresExpiry(t *testing.T) {
	tm := NewTokenManager(testKey, 10*time.Hour)

	// A token signed with the right key but carrying no exp claim is not a
	// well-formed credential; validity depends on a bounded window.
	claims := jwt.RegisteredClaims{
		Subject:  "alice",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager(testKey, 0)
	assert.Equal(t, 10*time.Hour, tm.TTL())
}
