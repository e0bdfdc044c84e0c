// Package repository provides persistence implementations for documents and
// user credentials.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/gophcms/internal/models"
	"github.com/google/uuid"
)

// FileDocumentRepository stores documents as plain files in a single flat
// directory. It performs no locking; callers serialize check-then-act
// sequences themselves.
type FileDocumentRepository struct {
	// Root is the document root directory.
	Root string
}

// NewFileDocumentRepository creates the root directory if needed and returns
// a repository serving it.
func NewFileDocumentRepository(root string) (*FileDocumentRepository, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create document root: %w", err)
	}
	return &FileDocumentRepository{Root: root}, nil
}

func (r *FileDocumentRepository) path(name string) string {
	return filepath.Join(r.Root, name)
}

// List returns the names of all documents in the root, sorted by name.
// Directories, temp files and files with unsupported extensions are skipped.
func (r *FileDocumentRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	// os.ReadDir returns entries sorted by filename.
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := models.KindOf(e.Name()); !ok {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Exists reports whether a document with the given name is present.
func (r *FileDocumentRepository) Exists(ctx context.Context, name string) (bool, error) {
	info, err := os.Stat(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return info.Mode().IsRegular(), nil
}

// Read returns the full content of a document.
func (r *FileDocumentRepository) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Create makes a new empty document. It fails with models.ErrAlreadyExists
// if the name is taken.
func (r *FileDocumentRepository) Create(ctx context.Context, name string) error {
	f, err := os.OpenFile(r.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create %s: %w", name, models.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return f.Close()
}

// Write replaces the content of a document, creating it if absent.
// The new content is written to a temp file first and moved into place.
func (r *FileDocumentRepository) Write(ctx context.Context, name string, content []byte) error {
	tmp := r.path(tempPrefix + uuid.NewString())
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, r.path(name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Rename moves a document to a new name, keeping its content.
// Renaming a document to its own name is a no-op.
func (r *FileDocumentRepository) Rename(ctx context.Context, oldName, newName string) error {
	exists, err := r.Exists(ctx, oldName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("rename %s: %w", oldName, models.ErrNotFound)
	}
	if oldName == newName {
		return nil
	}

	taken, err := r.Exists(ctx, newName)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("rename %s to %s: %w", oldName, newName, models.ErrAlreadyExists)
	}

	if err := os.Rename(r.path(oldName), r.path(newName)); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldName, newName, err)
	}
	return nil
}

// Delete removes a document.
func (r *FileDocumentRepository) Delete(ctx context.Context, name string) error {
	err := os.Remove(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Copy duplicates src into a new document named dst.
func (r *FileDocumentRepository) Copy(ctx context.Context, src, dst string) error {
	content, err := r.Read(ctx, src)
	if err != nil {
		return err
	}
	if err := r.Create(ctx, dst); err != nil {
		return err
	}
	return r.Write(ctx, dst, content)
}
