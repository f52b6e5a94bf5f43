package hashutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code, err := ShareCode()
		require.NoError(t, err)
		assert.Len(t, code, 4)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AB12", NormalizeCode(" ab12 "))
	assert.Equal(t, "AB12", NormalizeCode("AB12"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestShareCodeRoundTripsNormalize(t *testing.T) {
	t.Parallel()

	code, err := ShareCode()
	require.NoError(t, err)
	assert.Equal(t, code, NormalizeCode(strings.ToLower(code)))
}
