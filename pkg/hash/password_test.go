package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hashed, err := h.Hash("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hashed)

	assert.NoError(t, h.Compare(hashed, "secret-password"))
	assert.Error(t, h.Compare(hashed, "wrong-password"))
}

func TestHashesAreSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("secret-password")
	require.NoError(t, err)
	second, err := h.Hash("secret-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCostOutOfRangeFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
}
