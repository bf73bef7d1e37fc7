package invites

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		assert.Len(t, token, 32, "24 random bytes encode to 32 url-safe characters")
		assert.False(t, seen[token], "tokens must not repeat")
		seen[token] = true

		// URL-safe: no padding, no characters that need escaping in a link.
		assert.NotContains(t, token, "=")
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
	}
}

func TestTokenKeyNamespace(t *testing.T) {
	assert.True(t, strings.HasPrefix(tokenKey("abc"), "invite:"))
}
