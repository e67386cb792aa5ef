// Package render turns content records into HTML body fragments.
//
// Each content kind maps to an ordered list of named blocks defined in the
// embedded templates. Rendering executes the blocks in order against the record,
// so the section order of a page is data, not code.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/claimpilot/pagegen/internal/content"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var blockOrder = map[content.Kind][]string{
	content.KindService:     {"hero", "overview", "benefits", "steps", "challenges", "metrics", "faqs", "cta"},
	content.KindSpecialty:   {"hero", "overview", "benefits", "procedures", "steps", "challenges", "metrics", "compliance", "faqs", "cta"},
	content.KindStatic:      {"hero", "body", "overview", "benefits", "steps", "challenges", "faqs", "cta"},
	content.KindLocation:    {"hero", "overview", "benefits", "steps", "challenges", "location", "faqs", "cta"},
	content.KindResource:    {"hero", "overview", "benefits", "steps", "challenges", "code", "faqs", "cta"},
	content.KindIntegration: {"hero", "overview", "benefits", "steps", "challenges", "features", "faqs", "cta"},
	content.KindCollection:  {"hero", "overview", "entries", "faqs", "cta"},
}

// Renderer executes the block templates. It is safe for concurrent use.
type Renderer struct {
	tpl *template.Template
}

// New parses the embedded block templates.
func New() (*Renderer, error) {
	tpl, err := template.New("blocks").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse block templates: %w", err)
	}
	for kind, blocks := range blockOrder {
		for _, name := range blocks {
			if tpl.Lookup(name) == nil {
				return nil, fmt.Errorf("block %q for kind %s is not defined", name, kind)
			}
		}
	}
	return &Renderer{tpl: tpl}, nil
}

// Blocks returns the block order for kind, or nil for an unknown kind.
func Blocks(kind content.Kind) []string {
	return append([]string(nil), blockOrder[kind]...)
}

// Render returns the HTML body fragment for rec.
func (r *Renderer) Render(rec content.Record) (string, error) {
	if rec == nil {
		return "", errors.RenderError("nil content record").Build()
	}
	base := rec.Common()
	blocks, ok := blockOrder[base.Kind]
	if !ok {
		return "", errors.RenderError("no blocks registered for content kind").
			WithContext("kind", string(base.Kind)).
			WithContext("slug", base.Slug).
			Build()
	}

	var buf bytes.Buffer
	for _, name := range blocks {
		if err := r.tpl.ExecuteTemplate(&buf, name, rec); err != nil {
			return "", errors.WrapError(err, errors.CategoryRender, "render block").
				WithContext("block", name).
				WithContext("kind", string(base.Kind)).
				WithContext("slug", base.Slug).
				Build()
		}
	}
	return buf.String(), nil
}
