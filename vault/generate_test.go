package vault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword(DefaultPasswordLength)
		require.NoError(t, err)
		require.Len(t, pw, DefaultPasswordLength)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected %q", r)
		}
		assert.False(t, seen[pw], "duplicate password %q", pw)
		seen[pw] = true
	}
}

func TestGeneratePasswordInvalidLength(t *testing.T) {
	_, err := GeneratePassword(0)
	assert.Error(t, err)
}
