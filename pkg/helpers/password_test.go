package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CompareHashAndPassword(hash, "correct horse battery staple"))
	assert.False(t, CompareHashAndPassword(hash, "wrong password"))
	assert.False(t, CompareHashAndPassword("not-a-hash", "anything"))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("samesame")
	require.NoError(t, err)
	h2, err := HashPassword("samesame")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
