package marks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "marks.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	assert.False(t, s.IsMarked("a"))

	on, err := s.Toggle("a")
	require.NoError(t, err)
	assert.True(t, on)
	_, err = s.Toggle("b")
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.True(t, reopened.IsMarked("a"))
	assert.Equal(t, []string{"a", "b"}, reopened.List())

	off, err := reopened.Toggle("a")
	require.NoError(t, err)
	assert.False(t, off)

	again, err := Open(path)
	require.NoError(t, err)
	assert.False(t, again.IsMarked("a"))
	assert.True(t, again.IsMarked("b"))
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), expandPath("~/x"))
	assert.Equal(t, "/abs", expandPath("/abs"))
}

var _ Store = (*FileStore)(nil)
