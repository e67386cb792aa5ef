// Package registry holds the immutable table of static page definitions.
package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

// Category names a group of statically defined pages.
type Category string

const (
	CategoryService   Category = "service"
	CategorySpecialty Category = "specialty"
	CategoryStatic    Category = "static"
)

// Categories lists the definition categories in generation order.
var Categories = []Category{CategoryService, CategorySpecialty, CategoryStatic}

func (c Category) valid() bool {
	return slices.Contains(Categories, c)
}

// PageDefinition describes one page before content synthesis.
type PageDefinition struct {
	Title      string   `yaml:"title"`
	Slug       string   `yaml:"slug"`
	Category   Category `yaml:"category,omitempty"`
	Keywords   []string `yaml:"keywords,omitempty"`
	ExtraCodes []string `yaml:"extra_codes,omitempty"`
	Summary    string   `yaml:"summary,omitempty"`
	Body       string   `yaml:"body,omitempty"` // Markdown, static pages only
	NoIndex    bool     `yaml:"noindex,omitempty"`
}

// Registry is a read-only view over page definitions, safe for concurrent use.
type Registry struct {
	defs  map[Category][]PageDefinition
	index map[Category]map[string]int
}

// DuplicateSlugError reports two definitions sharing a slug within a category.
type DuplicateSlugError struct {
	Category Category
	Slug     string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate %s slug %q", e.Category, e.Slug)
}

// New builds a registry, preserving input order per category.
func New(defs []PageDefinition) (*Registry, error) {
	r := &Registry{
		defs:  make(map[Category][]PageDefinition, len(Categories)),
		index: make(map[Category]map[string]int, len(Categories)),
	}
	for _, d := range defs {
		if !d.Category.valid() {
			return nil, errors.ValidationError(fmt.Sprintf("definition %q: unknown category %q", d.Slug, d.Category)).
				WithContext("slug", d.Slug).
				Build()
		}
		idx, ok := r.index[d.Category]
		if !ok {
			idx = make(map[string]int)
			r.index[d.Category] = idx
		}
		if _, dup := idx[d.Slug]; dup {
			return nil, errors.WrapError(&DuplicateSlugError{Category: d.Category, Slug: d.Slug},
				errors.CategoryValidation, "invalid page definitions").
				WithContext("slug", d.Slug).
				Build()
		}
		d.Keywords = slices.Clone(d.Keywords)
		d.ExtraCodes = slices.Clone(d.ExtraCodes)
		idx[d.Slug] = len(r.defs[d.Category])
		r.defs[d.Category] = append(r.defs[d.Category], d)
	}
	return r, nil
}

// Definitions returns a copy of the definitions of category c in load order.
func (r *Registry) Definitions(c Category) []PageDefinition {
	src := r.defs[c]
	out := make([]PageDefinition, len(src))
	for i, d := range src {
		d.Keywords = slices.Clone(d.Keywords)
		d.ExtraCodes = slices.Clone(d.ExtraCodes)
		out[i] = d
	}
	return out
}

// Len returns the total number of definitions.
func (r *Registry) Len() int {
	n := 0
	for _, defs := range r.defs {
		n += len(defs)
	}
	return n
}

// definitionFile is the on-disk layout of one YAML definition file.
type definitionFile struct {
	Category Category         `yaml:"category"`
	Pages    []PageDefinition `yaml:"pages"`
}

//go:embed data/*.yaml
var embedded embed.FS

// LoadEmbedded builds the registry from the definitions compiled into the binary.
func LoadEmbedded() (*Registry, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "open embedded definitions").Build()
	}
	return Load(sub)
}

// LoadDir builds the registry from *.yaml files in dir.
func LoadDir(dir string) (*Registry, error) {
	return Load(os.DirFS(dir))
}

// Load reads every top-level *.yaml file of fsys in lexical order.
func Load(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read definitions").Fatal().Build()
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); strings.EqualFold(ext, ".yaml") || strings.EqualFold(ext, ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var defs []PageDefinition
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "read "+name).
				WithContext("file", name).
				Fatal().
				Build()
		}
		var f definitionFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "parse "+name).
				WithContext("file", name).
				Fatal().
				Build()
		}
		for _, p := range f.Pages {
			if p.Category == "" {
				p.Category = f.Category
			}
			defs = append(defs, p)
		}
	}
	return New(defs)
}
