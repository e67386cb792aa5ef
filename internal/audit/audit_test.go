package audit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

func page(title, canonical string, extraHead string) string {
	return `<!doctype html><html><head><title>` + title + `</title>
<meta name="description" content="d">
<link rel="canonical" href="` + canonical + `">
<script type="application/ld+json">{}</script>` + extraHead + `
</head><body><div id="root"><h1>` + title + `</h1></div></body></html>`
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return root
}

func rules(res *Result) []string {
	var out []string
	for _, is := range res.Issues {
		out = append(out, is.Rule)
	}
	return out
}

func TestDir_CleanTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html":              page("Home", "https://x.test/", ""),
		"services/rcm/index.html": page("RCM", "https://x.test/services/rcm", ""),
		"robots.txt":              "User-agent: *",
	})

	res, err := Dir(root, Options{RootID: "root"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesTotal)
	assert.Empty(t, res.Issues)
	assert.NoError(t, res.Err())
}

func TestDir_Violations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		rule string
	}{
		{"two titles", page("A", "https://x.test/a", "<title>B</title>"), RuleTitle},
		{"two descriptions", page("A", "https://x.test/a", `<meta name="description" content="e">`), RuleDescription},
		{"two canonicals", page("A", "https://x.test/a", `<link rel="canonical" href="https://x.test/b">`), RuleCanonical},
		{"two json-ld", page("A", "https://x.test/a", `<script type="application/ld+json">{}</script>`), RuleJSONLD},
		{"no canonical", `<html><head><title>A</title><meta name="description" content="d"></head><body><div id="root">x</div></body></html>`, RuleCanonical},
		{"no root", `<html><head><title>A</title><meta name="description" content="d"><link rel="canonical" href="/a"></head><body></body></html>`, RuleRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t, map[string]string{"a/index.html": tt.doc})
			res, err := Dir(root, Options{RootID: "root"})
			require.NoError(t, err)
			assert.Contains(t, rules(res), tt.rule)
			require.Error(t, res.Err())
			assert.True(t, errors.HasCategory(res.Err(), errors.CategoryValidation))
		})
	}
}

func TestDir_DuplicateCanonical(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/index.html": page("A", "https://x.test/same", ""),
		"b/index.html": page("B", "https://x.test/same", ""),
		"c/index.html": page("C", "https://x.test/same", ""),
	})

	res, err := Dir(root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "b/index.html", res.Issues[0].FilePath)
	assert.Equal(t, "c/index.html", res.Issues[1].FilePath)
	assert.Equal(t, RuleDuplicate, res.Issues[0].Rule)
	assert.Contains(t, res.Issues[0].Message, "a/index.html")
}

func TestDir_MissingRoot(t *testing.T) {
	_, err := Dir(filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestWrite(t *testing.T) {
	res := &Result{FilesTotal: 3}
	res.add("a/index.html", SeverityError, RuleTitle, "found %d <title> elements, want exactly 1", 2)

	var text bytes.Buffer
	require.NoError(t, Write(&text, res, "dist", "text"))
	assert.Contains(t, text.String(), "ERROR: a/index.html [single-title]")
	assert.Contains(t, text.String(), "3 files scanned")
	assert.Contains(t, text.String(), "1 error, 0 warnings")

	var js bytes.Buffer
	require.NoError(t, Write(&js, res, "dist", "json"))
	assert.Contains(t, js.String(), `"rule": "single-title"`)
	assert.Contains(t, js.String(), `"files_total": 3`)
}
