package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp4"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	names, err := ListDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.mp4"}, names)

	names, err = ListDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestIsVideoAndStem(t *testing.T) {
	assert.True(t, IsVideo("match.MOV"))
	assert.False(t, IsVideo("match.mkv"))
	assert.Equal(t, "match", Stem("/data/inputs/match.avi"))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
}

func TestIsPlainName(t *testing.T) {
	for _, name := range []string{"derby", "match.v2"} {
		assert.True(t, IsPlainName(name), name)
	}
	for _, name := range []string{"", ".", "..", "../../tmp/x", "a/b", `a\b`, "/abs"} {
		assert.False(t, IsPlainName(name), name)
	}
}
