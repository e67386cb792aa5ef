package sink

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

func TestWrite_CreatesDirectoriesAndOverwrites(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "services", "rcm", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o750))
	require.NoError(t, os.WriteFile(target, []byte("stale content that is longer than the new one"), 0o600))

	s := NewFileSystemSink(root)
	require.NoError(t, s.Write("services/rcm/index.html", "<html>new</html>"))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<html>new</html>", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, 1, s.Written())
}

func TestWrite_RejectsEscapingPaths(t *testing.T) {
	s := NewFileSystemSink(t.TempDir())
	for _, p := range []string{"", "../outside.html", "a/../../outside.html", "/etc/passwd"} {
		err := s.Write(p, "x")
		require.Error(t, err, p)
		assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem), p)
	}
	assert.Equal(t, 0, s.Written())
}

func TestWrite_FlagsDuplicatePaths(t *testing.T) {
	root := t.TempDir()
	s := NewFileSystemSink(root)

	require.NoError(t, s.Write("404.html", "first"))
	err := s.Write("./404.html", "second")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrDuplicateWrite))

	data, err := os.ReadFile(filepath.Join(root, "404.html"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data), "last writer wins")
}
