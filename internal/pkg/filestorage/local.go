// Package filestorage persists uploaded documents on the local
// filesystem, addressed by their stored name. The attachments table and
// this directory must always agree; the reconciliation logic in the
// attachment service relies on the operations here being cheap to undo.
package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/rlopezj/catedra/internal/pkg/logger"
)

// ErrNotExists is returned by Rename when the source file is missing.
var ErrNotExists = errors.New("stored file does not exist")

// LocalStorage stores one file per attachment under a base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// validName guards against path traversal; stored names must be a single
// path segment.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid stored name %q", name)
	}
	return nil
}

// Save writes the uploaded file under the given stored name. It fails if
// the name is not a safe path segment; an existing file with the same
// name is overwritten, so callers check for collisions first.
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(ls.basePath, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		// Remove the partial write so no orphan remains on disk.
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to save file content: %w", err)
	}

	return nil
}

// Rename moves a stored file to a new name. Returns ErrNotExists when the
// source file is missing so callers can decide whether that is fatal.
func (ls *LocalStorage) Rename(oldName, newName string) error {
	if err := validName(oldName); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}

	err := os.Rename(filepath.Join(ls.basePath, oldName), filepath.Join(ls.basePath, newName))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotExists
		}
		return fmt.Errorf("failed to rename stored file: %w", err)
	}
	return nil
}

// Delete removes a stored file. A missing file is not an error, which
// keeps cleanup after a committed row delete idempotent.
func (ls *LocalStorage) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(ls.basePath, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return nil
}

// Exists reports whether a file with the stored name is present.
func (ls *LocalStorage) Exists(name string) bool {
	if validName(name) != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(ls.basePath, name))
	return err == nil
}

// FullPath returns the filesystem path for a stored name, or an empty
// string when the name is unsafe.
func (ls *LocalStorage) FullPath(name string) string {
	if validName(name) != nil {
		return ""
	}
	return filepath.Join(ls.basePath, name)
}
