package registry

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

func lookup(reg *Registry, c Category, slug string) (PageDefinition, bool) {
	for _, d := range reg.Definitions(c) {
		if d.Slug == slug {
			return d, true
		}
	}
	return PageDefinition{}, false
}

func TestLoadEmbedded(t *testing.T) {
	reg, err := LoadEmbedded()
	require.NoError(t, err)

	rcm, ok := lookup(reg, CategoryService, "rcm")
	require.True(t, ok)
	assert.Equal(t, "Revenue Cycle Management", rcm.Title)
	assert.Equal(t, CategoryService, rcm.Category)

	dental, ok := lookup(reg, CategorySpecialty, "dental")
	require.True(t, ok)
	assert.Equal(t, []string{"D0120", "D1110"}, dental.ExtraCodes)

	notFound, ok := lookup(reg, CategoryStatic, "404")
	require.True(t, ok)
	assert.True(t, notFound.NoIndex)

	_, ok = lookup(reg, CategoryStatic, "home")
	assert.True(t, ok)
	assert.Positive(t, reg.Len())
}

func TestNew_DuplicateSlugWithinCategory(t *testing.T) {
	_, err := New([]PageDefinition{
		{Title: "RCM", Slug: "rcm", Category: CategoryService},
		{Title: "RCM again", Slug: "rcm", Category: CategoryService},
	})
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	var dup *DuplicateSlugError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, CategoryService, dup.Category)
	assert.Equal(t, "rcm", dup.Slug)
}

func TestNew_SameSlugAcrossCategories(t *testing.T) {
	reg, err := New([]PageDefinition{
		{Title: "Dental Billing", Slug: "dental", Category: CategoryService},
		{Title: "Dental", Slug: "dental", Category: CategorySpecialty},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
}

func TestNew_UnknownCategory(t *testing.T) {
	_, err := New([]PageDefinition{{Title: "X", Slug: "x", Category: "blog"}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Contains(t, err.Error(), "unknown category")
}

func TestDefinitions_ReturnsCopies(t *testing.T) {
	reg, err := New([]PageDefinition{
		{Title: "A", Slug: "a", Category: CategoryService, Keywords: []string{"one"}},
		{Title: "B", Slug: "b", Category: CategoryService},
	})
	require.NoError(t, err)

	defs := reg.Definitions(CategoryService)
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].Slug)
	assert.Equal(t, "b", defs[1].Slug)

	defs[0].Keywords[0] = "mutated"
	defs[0].Title = "mutated"
	again := reg.Definitions(CategoryService)
	assert.Equal(t, "A", again[0].Title)
	assert.Equal(t, []string{"one"}, again[0].Keywords)
	assert.Empty(t, reg.Definitions(CategoryStatic))
}

func TestLoad_FileCategoryDefaultsAndOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"b.yaml":    {Data: []byte("category: specialty\npages:\n  - title: Podiatry\n    slug: podiatry\n")},
		"a.yml":     {Data: []byte("category: service\npages:\n  - title: Coding\n    slug: coding\n  - title: Audit\n    slug: audit\n    category: service\n")},
		"notes.txt": {Data: []byte("ignored")},
	}
	reg, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
	defs := reg.Definitions(CategoryService)
	require.Len(t, defs, 2)
	assert.Equal(t, "coding", defs[0].Slug)
	_, ok := lookup(reg, CategorySpecialty, "podiatry")
	assert.True(t, ok)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "services.yaml"),
		[]byte("category: service\npages:\n  - title: Coding\n    slug: coding\n    keywords: [coding]\n"), 0o644))

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	def, ok := lookup(reg, CategoryService, "coding")
	require.True(t, ok)
	assert.Equal(t, []string{"coding"}, def.Keywords)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("pages: [\n"), 0o644))
	_, err = LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse broken.yaml")
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
