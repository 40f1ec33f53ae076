package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBlocklist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comments are ignored\nTrailer\n\n  Reaction Video  \n"), 0o600))

	b, err := LoadBlocklist(path)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	blocked, term := b.IsBlocked("Dune Official TRAILER")
	assert.True(t, blocked)
	assert.Equal(t, "Trailer", term)

	blocked, _ = b.IsBlocked("reaction-video compilation")
	assert.True(t, blocked)

	blocked, term = b.IsBlocked("Dune")
	assert.False(t, blocked)
	assert.Empty(t, term)
}

func TestLoadBlocklist_MissingFile(t *testing.T) {
	b, err := LoadBlocklist(filepath.Join(t.TempDir(), "missing.txt"))
	require.NoError(t, err)
	assert.Zero(t, b.Len())

	blocked, _ := b.IsBlocked("anything")
	assert.False(t, blocked)
}

func TestNewBlocklist(t *testing.T) {
	b := NewBlocklist("spoiler", " ", "")
	assert.Equal(t, 1, b.Len())

	blocked, _ := b.IsBlocked("No Spoilers Review")
	assert.True(t, blocked)
}
