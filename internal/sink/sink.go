// Package sink writes assembled documents under the output directory.
package sink

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

// ErrDuplicateWrite is returned, after the write succeeded, when a path is
// written more than once by the same sink.
var ErrDuplicateWrite = stderrors.New("path written more than once in this run")

// FileSystemSink writes files atomically under a root directory. It is safe for
// concurrent use.
type FileSystemSink struct {
	root string

	mu      sync.Mutex
	written map[string]int
}

func NewFileSystemSink(root string) *FileSystemSink {
	return &FileSystemSink{root: root, written: make(map[string]int)}
}

// Root returns the output directory.
func (s *FileSystemSink) Root() string { return s.root }

// Resolve validates relPath and returns the absolute target path.
func (s *FileSystemSink) Resolve(relPath string) (string, error) {
	if s.root == "" {
		return "", errors.FileSystemError("output directory is required").Build()
	}
	if relPath == "" {
		return "", errors.FileSystemError("output path is required").Build()
	}
	cleanRel := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", errors.FileSystemError("output path must be relative to the output directory").
			WithContext("path", relPath).
			Build()
	}
	fullPath := filepath.Join(s.root, cleanRel)
	rel, err := filepath.Rel(s.root, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.FileSystemError("output path escapes the output directory").
			WithContext("path", relPath).
			Build()
	}
	return fullPath, nil
}

// Write replaces the file at relPath with doc. The file is written to a
// temporary sibling and renamed over the target, so readers never observe a
// partial document.
func (s *FileSystemSink) Write(relPath, doc string) error {
	fullPath, err := s.Resolve(relPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", dir).
			Build()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create temporary file").
			WithContext("path", fullPath).
			Build()
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(doc); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapError(err, errors.CategoryFileSystem, "write output file").WithContext("path", fullPath).Build()
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapError(err, errors.CategoryFileSystem, "chmod output file").WithContext("path", fullPath).Build()
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapError(err, errors.CategoryFileSystem, "close output file").WithContext("path", fullPath).Build()
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		cleanup()
		return errors.WrapError(err, errors.CategoryFileSystem, "rename output file").WithContext("path", fullPath).Build()
	}

	key := filepath.ToSlash(filepath.Clean(filepath.FromSlash(relPath)))
	s.mu.Lock()
	s.written[key]++
	n := s.written[key]
	s.mu.Unlock()
	if n > 1 {
		return fmt.Errorf("%w: %s", ErrDuplicateWrite, key)
	}
	return nil
}

// Written returns the number of distinct paths written.
func (s *FileSystemSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}
