package redemption

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := NewCode()
		require.NoError(t, err)

		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(charset, r), "unexpected character %q", r)
		}

		seen[code] = true
	}

	// 100 draws from a 36^8 space colliding down to a handful would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 90)
}
