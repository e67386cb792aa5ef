// Package audit re-reads a generated output tree and verifies the per-document
// head invariants and site-wide canonical uniqueness.
package audit

import (
	"cmp"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

// Severity indicates the importance level of an audit finding.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "ERROR"
	}
	return "WARNING"
}

// Rule identifiers.
const (
	RuleTitle       = "single-title"
	RuleDescription = "single-description"
	RuleCanonical   = "single-canonical"
	RuleJSONLD      = "single-json-ld"
	RuleRoot        = "root-content"
	RuleDuplicate   = "unique-canonical"
	RuleParse       = "parse"
)

// Issue is one finding in one file.
type Issue struct {
	FilePath string   `json:"file"`
	Severity Severity `json:"-"`
	Level    string   `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
}

// Result contains all findings of an audit.
type Result struct {
	Issues     []Issue `json:"issues"`
	FilesTotal int     `json:"files_total"`
}

func (r *Result) add(path string, sev Severity, rule, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		FilePath: path,
		Severity: sev,
		Level:    sev.String(),
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

func (r *Result) ErrorCount() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Err returns a validation error when the audit found errors.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return errors.ValidationError(fmt.Sprintf("audit found %d error(s) in %d file(s)", r.ErrorCount(), r.FilesTotal)).
		WithContext("issues", r.ErrorCount()).
		Build()
}

// Options tune the audit.
type Options struct {
	RootID string // id of the content container; empty skips the root check
}

// Dir audits every .html file under root. The returned error is non-nil only
// when the tree cannot be walked; findings are reported in the Result.
func Dir(root string, opts Options) (*Result, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "output directory not readable").
			WithContext("path", root).
			Build()
	}
	res := &Result{Issues: []Issue{}}
	canonicals := map[string][]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		res.FilesTotal++
		if href := auditFile(path, rel, opts, res); href != "" {
			canonicals[href] = append(canonicals[href], rel)
		}
		return nil
	})
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "walk output directory").
			WithContext("path", root).
			Build()
	}
	for href, files := range canonicals {
		slices.Sort(files)
		for _, dup := range files[1:] {
			res.add(dup, SeverityError, RuleDuplicate, "canonical %s already used by %s", href, files[0])
		}
	}
	slices.SortStableFunc(res.Issues, func(a, b Issue) int {
		return cmp.Compare(a.FilePath, b.FilePath)
	})
	return res, nil
}

// auditFile checks one document and returns its canonical URL.
func auditFile(path, rel string, opts Options, res *Result) string {
	// #nosec G304 -- path comes from walking the output directory.
	f, err := os.Open(path)
	if err != nil {
		res.add(rel, SeverityError, RuleParse, "open: %v", err)
		return ""
	}
	defer func() { _ = f.Close() }()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		res.add(rel, SeverityError, RuleParse, "parse: %v", err)
		return ""
	}

	head := doc.Find("head")
	exactlyOne := func(sel, rule, what string) {
		if n := head.Find(sel).Length(); n != 1 {
			res.add(rel, SeverityError, rule, "found %d %s, want exactly 1", n, what)
		}
	}
	exactlyOne("title", RuleTitle, "<title> elements")
	exactlyOne(`meta[name="description"]`, RuleDescription, "meta descriptions")
	exactlyOne(`link[rel="canonical"]`, RuleCanonical, "canonical links")
	if n := doc.Find(`script[type="application/ld+json"]`).Length(); n > 1 {
		res.add(rel, SeverityError, RuleJSONLD, "found %d JSON-LD blocks, want at most 1", n)
	}
	if opts.RootID != "" {
		if root := doc.Find("#" + opts.RootID); root.Length() != 1 {
			res.add(rel, SeverityError, RuleRoot, "found %d #%s containers, want exactly 1", root.Length(), opts.RootID)
		} else if strings.TrimSpace(root.Text()) == "" {
			res.add(rel, SeverityWarning, RuleRoot, "#%s is empty", opts.RootID)
		}
	}
	if t := head.Find("title"); t.Length() == 1 && strings.TrimSpace(t.Text()) == "" {
		res.add(rel, SeverityWarning, RuleTitle, "title is empty")
	}
	href, _ := head.Find(`link[rel="canonical"]`).First().Attr("href")
	return href
}
