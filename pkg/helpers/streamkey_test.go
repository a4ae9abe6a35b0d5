package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenStreamKey(t *testing.T) {
	key, err := GenStreamKey()
	require.NoError(t, err)
	// 32 bytes base64url without padding.
	assert.Len(t, key, 43)
	assert.False(t, strings.ContainsAny(key, "+/="))
}

func TestGenStreamKeyUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key, err := GenStreamKey()
		require.NoError(t, err)
		assert.False(t, seen[key])
		seen[key] = true
	}
}
