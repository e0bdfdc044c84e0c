package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/atinyakov/gophcms/internal/models"
	"github.com/atinyakov/gophcms/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentService(t *testing.T, files map[string]string) (*DocumentService, *repository.FileDocumentRepository) {
	t.Helper()
	repo, err := repository.NewFileDocumentRepository(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, repo.Write(context.Background(), name, []byte(content)))
	}
	return NewDocumentService(repo), repo
}

func TestValidateName(t *testing.T) {
	valid := []string{"a.txt", "about.md", "my notes.md", "dup_a.txt"}
	invalid := []string{"", "a", "a.exe", ".md", ".hidden.txt", "../a.md", "sub/a.md", `sub\a.md`, "a.MD"}

	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range invalid {
		err := ValidateName(name)
		assert.ErrorIs(t, err, models.ErrInvalidName, name)
	}
}

func TestCreate_ListsOnce(t *testing.T) {
	svc, _ := newDocumentService(t, nil)
	ctx := context.Background()

	for _, name := range []string{"notes.txt", "readme.md"} {
		got, err := svc.Create(ctx, "  "+name+" ")
		require.NoError(t, err)
		assert.Equal(t, name, got)

		names, err := svc.List(ctx)
		require.NoError(t, err)
		count := 0
		for _, n := range names {
			if n == name {
				count++
			}
		}
		assert.Equal(t, 1, count, name)
	}
}

func TestCreate_Errors(t *testing.T) {
	svc, _ := newDocumentService(t, map[string]string{"taken.md": "x"})
	ctx := context.Background()

	_, err := svc.Create(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidName)
	_, err = svc.Create(ctx, "bad.doc")
	assert.ErrorIs(t, err, models.ErrInvalidName)
	_, err = svc.Create(ctx, "taken.md")
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	names, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"taken.md"}, names)
}

func TestGet(t *testing.T) {
	svc, repo := newDocumentService(t, map[string]string{"a.txt": "plain", "b.md": "# B"})
	require.NoError(t, repo.Write(context.Background(), "c.txt", nil))
	ctx := context.Background()

	doc, err := svc.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, models.PlainText, doc.Kind)
	assert.Equal(t, "plain", string(doc.Content))

	doc, err = svc.Get(ctx, "b.md")
	require.NoError(t, err)
	assert.Equal(t, models.Markdown, doc.Kind)

	_, err = svc.Get(ctx, "missing.md")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Get(ctx, "a.png")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		wantName string
		wantErr  error
		wantList []string
	}{
		{name: "content only", from: "a.txt", to: "", wantName: "a.txt", wantList: []string{"a.txt", "b.txt"}},
		{name: "same name", from: "a.txt", to: "a.txt", wantName: "a.txt", wantList: []string{"a.txt", "b.txt"}},
		{name: "rename", from: "a.txt", to: "c.md", wantName: "c.md", wantList: []string{"b.txt", "c.md"}},
		{name: "collision", from: "a.txt", to: "b.txt", wantName: "b.txt", wantErr: models.ErrAlreadyExists, wantList: []string{"a.txt", "b.txt"}},
		{name: "invalid", from: "a.txt", to: "a.exe", wantName: "a.exe", wantErr: models.ErrInvalidName, wantList: []string{"a.txt", "b.txt"}},
		{name: "missing source renamed", from: "z.txt", to: "y.txt", wantName: "y.txt", wantErr: models.ErrNotFound, wantList: []string{"a.txt", "b.txt"}},
		{name: "missing source kept", from: "z.txt", to: "", wantName: "z.txt", wantList: []string{"a.txt", "b.txt", "z.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newDocumentService(t, map[string]string{"a.txt": "A", "b.txt": "B"})
			ctx := context.Background()

			got, err := svc.Update(ctx, tt.from, tt.to, []byte("updated"))
			assert.Equal(t, tt.wantName, got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				a, _ := repo.Read(ctx, "a.txt")
				b, _ := repo.Read(ctx, "b.txt")
				assert.Equal(t, "A", string(a))
				assert.Equal(t, "B", string(b))
			} else {
				require.NoError(t, err)
				data, err := repo.Read(ctx, tt.wantName)
				require.NoError(t, err)
				assert.Equal(t, "updated", string(data))
			}

			names, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantList, names)
		})
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newDocumentService(t, map[string]string{"a.txt": "A"})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "a.txt"))
	names, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.ErrorIs(t, svc.Delete(ctx, "a.txt"), models.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "../etc.txt"), models.ErrNotFound)
}

func TestDuplicate(t *testing.T) {
	svc, repo := newDocumentService(t, map[string]string{"a.md": "# A"})
	ctx := context.Background()

	name, err := svc.Duplicate(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "dup_a.md", name)
	data, err := repo.Read(ctx, "dup_a.md")
	require.NoError(t, err)
	assert.Equal(t, "# A", string(data))

	// A second copy would collide with the first one.
	_, err = svc.Duplicate(ctx, "a.md")
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	_, err = svc.Duplicate(ctx, "missing.md")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

type mockDocumentRepo struct {
	DocumentRepository
	ExistsFunc func(ctx context.Context, name string) (bool, error)
	CreateFunc func(ctx context.Context, name string) error
}

func (m *mockDocumentRepo) Exists(ctx context.Context, name string) (bool, error) {
	return m.ExistsFunc(ctx, name)
}

func (m *mockDocumentRepo) Create(ctx context.Context, name string) error {
	return m.CreateFunc(ctx, name)
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	wantErr := errors.New("disk full")
	svc := NewDocumentService(&mockDocumentRepo{
		ExistsFunc: func(ctx context.Context, name string) (bool, error) { return false, wantErr },
		CreateFunc: func(ctx context.Context, name string) error { return wantErr },
	})
	ctx := context.Background()

	_, err := svc.Create(ctx, "a.txt")
	assert.ErrorIs(t, err, wantErr)

	_, err = svc.Duplicate(ctx, "a.txt")
	assert.ErrorIs(t, err, wantErr)
}
