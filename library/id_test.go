package library

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueIDFormat(t *testing.T) {
	id := GenerateUniqueID(nil)
	require.Len(t, id, 1+idDigits)
	assert.True(t, strings.HasPrefix(id, "#"))
	for _, r := range id[1:] {
		assert.True(t, r >= '0' && r <= '9', "unexpected rune %q", r)
	}
}

func TestGenerateUniqueIDAvoidsExisting(t *testing.T) {
	existing := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id := GenerateUniqueID(existing)
		_, seen := existing[id]
		require.False(t, seen, "generated id %q collides", id)
		existing[id] = struct{}{}
	}
}
