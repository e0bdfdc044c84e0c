// Package service provides document and authentication business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/atinyakov/gophcms/internal/models"
)

// DuplicatePrefix is prepended to a document name to form the name of its copy.
const DuplicatePrefix = "dup_"

// DocumentRepository defines the persistence operations needed by the DocumentService.
type DocumentRepository interface {
	// List returns the names of all stored documents, sorted.
	List(ctx context.Context) ([]string, error)
	// Exists reports whether a document is present.
	Exists(ctx context.Context, name string) (bool, error)
	// Read returns a document's content or models.ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)
	// Create makes an empty document or fails with models.ErrAlreadyExists.
	Create(ctx context.Context, name string) error
	// Write replaces a document's content, creating it if absent.
	Write(ctx context.Context, name string, content []byte) error
	// Rename moves a document; same-name renames are a no-op.
	Rename(ctx context.Context, oldName, newName string) error
	// Delete removes a document or fails with models.ErrNotFound.
	Delete(ctx context.Context, name string) error
	// Copy duplicates src into dst.
	Copy(ctx context.Context, src, dst string) error
}

// DocumentService implements document management on top of a DocumentRepository.
// Mutating operations are serialized so uniqueness checks hold until the
// change is applied.
type DocumentService struct {
	repo DocumentRepository
	mu   sync.Mutex
}

// NewDocumentService constructs a DocumentService with the provided repository.
func NewDocumentService(repo DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

var nameRules = []validation.Rule{
	validation.Required.Error("name is required"),
	validation.By(func(value any) error {
		name, _ := value.(string)
		if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") || filepath.Base(name) != name {
			return validation.NewError("document_name_path", "name must not contain a path")
		}
		if _, ok := models.KindOf(name); !ok {
			return validation.NewError("document_name_extension", "name must end in .txt or .md")
		}
		return nil
	}),
}

// ValidateName checks that name is a plain file name ending in .txt or .md.
// Failures wrap models.ErrInvalidName.
func ValidateName(name string) error {
	if err := validation.Validate(name, nameRules...); err != nil {
		return fmt.Errorf("%w: %q: %v", models.ErrInvalidName, name, err)
	}
	return nil
}

// List returns the names of all documents.
func (s *DocumentService) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}

// Get loads a document. Names with an unsupported extension are reported as
// models.ErrNotFound, since such files are never served.
func (s *DocumentService) Get(ctx context.Context, name string) (models.Document, error) {
	kind, ok := models.KindOf(name)
	if !ok || ValidateName(name) != nil {
		return models.Document{}, fmt.Errorf("get %q: %w", name, models.ErrNotFound)
	}
	content, err := s.repo.Read(ctx, name)
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{Name: name, Content: content, Kind: kind}, nil
}

// Create makes a new empty document. The name is trimmed before validation and
// the trimmed name is returned.
func (s *DocumentService) Create(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return name, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return name, s.repo.Create(ctx, name)
}

// Update renames a document to newName when it differs from name, then
// replaces its content. A blank newName keeps the current name. The name the
// document ends up with is returned.
func (s *DocumentService) Update(ctx context.Context, name, newName string, content []byte) (string, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		newName = name
	}
	if err := ValidateName(newName); err != nil {
		return newName, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if newName != name {
		if err := ValidateName(name); err != nil {
			return newName, fmt.Errorf("update %q: %w", name, models.ErrNotFound)
		}
		if err := s.repo.Rename(ctx, name, newName); err != nil {
			return newName, err
		}
	}
	return newName, s.repo.Write(ctx, newName, content)
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, name string) error {
	if ValidateName(name) != nil {
		return fmt.Errorf("delete %q: %w", name, models.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Delete(ctx, name)
}

// Duplicate copies a document to DuplicatePrefix+name and returns the new name.
// It fails with models.ErrAlreadyExists if the copy's name is taken.
func (s *DocumentService) Duplicate(ctx context.Context, name string) (string, error) {
	target := DuplicatePrefix + name
	if ValidateName(name) != nil {
		return target, fmt.Errorf("duplicate %q: %w", name, models.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.repo.Exists(ctx, target)
	if err != nil {
		return target, err
	}
	if taken {
		return target, fmt.Errorf("duplicate %q: %w", name, models.ErrAlreadyExists)
	}
	return target, s.repo.Copy(ctx, name, target)
}
