package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "pw123", hash)

	assert.NoError(t, ComparePassword(hash, "pw123"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
