package assemble

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/seo"
)

const viteShell = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <link rel="icon" href="/favicon.ico" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <meta name="description" content="Default site description" />
    <meta property="og:title" content="Default" />
    <link rel="canonical" href="https://www.example.com/" />
    <title>ClaimPilot</title>
    <script type="module" crossorigin src="/assets/index-abc123.js"></script>
    <link rel="stylesheet" href="/assets/index-def456.css">
  </head>
  <body>
    <div id="root"><div class="loading"><div>Loading</div></div></div>
    <noscript>Enable JavaScript</noscript>
  </body>
</html>
`

func testMetadata() seo.PageMetadata {
	return seo.PageMetadata{
		Title:           "Dental Medical Billing | ClaimPilot",
		MetaDescription: `Specialized "dental" billing & coding`,
		CanonicalURL:    "https://www.example.com/specialties/dental",
		H1:              "Dental Medical Billing Services",
		Content:         `<section class="hero"><p>Billing for <b>dental</b></p></section>`,
		Schema:          map[string]any{"@context": "https://schema.org", "@type": "MedicalSpecialty", "name": "</script><script>alert(1)"},
		Robots:          seo.RobotsIndex,
		Keywords:        []string{"dental billing", "dental coding"},
		OGType:          "website",
		Image:           "https://www.example.com/og.png",
		SiteName:        "ClaimPilot",
		TwitterSite:     "@claimpilot",
	}
}

func doc(t *testing.T, s string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return d
}

func TestAssemble_InjectsEachTagOnce(t *testing.T) {
	out, err := Assemble(viteShell, testMetadata())
	require.NoError(t, err)

	d := doc(t, out)
	assert.Equal(t, 1, d.Find("title").Length())
	assert.Equal(t, "Dental Medical Billing | ClaimPilot", d.Find("title").Text())
	assert.Equal(t, 1, d.Find(`meta[name="description"]`).Length())
	assert.Equal(t, `Specialized "dental" billing & coding`, d.Find(`meta[name="description"]`).AttrOr("content", ""))
	assert.Equal(t, 1, d.Find(`link[rel="canonical"]`).Length())
	assert.Equal(t, "https://www.example.com/specialties/dental", d.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	assert.Equal(t, 1, d.Find(`meta[name="robots"]`).Length())
	assert.Equal(t, 1, d.Find(`meta[property="og:title"]`).Length())
	assert.Equal(t, 1, d.Find(`meta[name="twitter:site"]`).Length())
	assert.Equal(t, 1, d.Find(`script[type="application/ld+json"]`).Length())

	assert.Equal(t, "Dental Medical Billing Services", d.Find("#root header h1").Text())
	assert.Equal(t, 1, d.Find("#root section.hero").Length())
	assert.Equal(t, 0, d.Find("#root .loading").Length())

	assert.Equal(t, 1, d.Find(`script[type="module"]`).Length(), "unmanaged head tags are kept")
	assert.Equal(t, 1, d.Find(`meta[charset]`).Length())
	assert.Equal(t, 1, d.Find("noscript").Length())
	assert.NotContains(t, out, "</script><script>alert(1)")
}

func TestAssemble_IsIdempotent(t *testing.T) {
	m := testMetadata()

	once, err := Assemble(viteShell, m)
	require.NoError(t, err)
	twice, err := Assemble(once, m)
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	thrice, err := Assemble(twice, m)
	require.NoError(t, err)
	assert.Equal(t, once, thrice)
}

func TestAssemble_ReassemblyReplacesMetadata(t *testing.T) {
	first, err := Assemble(viteShell, testMetadata())
	require.NoError(t, err)

	m := testMetadata()
	m.Title = "Cardiology"
	m.CanonicalURL = "https://www.example.com/specialties/cardiology"
	m.Schema = nil
	m.Content = "<p>cardio</p>"
	second, err := Assemble(first, m)
	require.NoError(t, err)

	d := doc(t, second)
	assert.Equal(t, "Cardiology", d.Find("title").Text())
	assert.Equal(t, 1, d.Find(`link[rel="canonical"]`).Length())
	assert.Equal(t, "https://www.example.com/specialties/cardiology", d.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	assert.Equal(t, 0, d.Find(`script[type="application/ld+json"]`).Length())
	assert.NotContains(t, second, "dental</b>")

	fresh, err := Assemble(viteShell, m)
	require.NoError(t, err)
	assert.Equal(t, fresh, second)
}

func TestShell_FillIsReusable(t *testing.T) {
	sh, err := ParseShell(viteShell, Options{})
	require.NoError(t, err)

	a, err := sh.Fill(testMetadata())
	require.NoError(t, err)
	b, err := sh.Fill(testMetadata())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseShell_MissingAnchors(t *testing.T) {
	tests := []struct {
		name   string
		shell  string
		anchor string
		count  int
	}{
		{"no title", `<html><head></head><body><div id="root"></div></body></html>`, "<title>", 0},
		{"two titles", `<html><head><title>a</title><title>b</title></head><body><div id="root"></div></body></html>`, "<title>", 2},
		{"no head close", `<html><head><title>a</title><body><div id="root"></div></body></html>`, "</head>", 0},
		{"no root", `<html><head><title>a</title></head><body><main></main></body></html>`, "#root", 0},
		{"two roots", `<html><head><title>a</title></head><body><div id="root"></div><div id="root"></div></body></html>`, "#root", 2},
		{"unclosed root", `<html><head><title>a</title></head><body><div id="root">`, "#root in body", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseShell(tt.shell, Options{})
			require.Error(t, err)
			var anchorErr *MissingAnchorError
			require.True(t, stderrors.As(err, &anchorErr))
			assert.Equal(t, tt.anchor, anchorErr.Anchor)
			assert.Equal(t, tt.count, anchorErr.Count)
		})
	}
}

func TestParseShell_CustomRootID(t *testing.T) {
	shell := `<html><head><title>a</title></head><body><main id="app"><section><main>x</main></section></main><footer>f</footer></body></html>`
	sh, err := ParseShell(shell, Options{RootID: "app"})
	require.NoError(t, err)

	out, err := sh.Fill(testMetadata())
	require.NoError(t, err)
	d := doc(t, out)
	assert.Equal(t, "Dental Medical Billing Services", d.Find("#app > header > h1").Text())
	assert.Equal(t, "f", d.Find("footer").Text())
	assert.NotContains(t, out, "<main>x</main>")
}

func TestFill_RequiresTitleAndCanonical(t *testing.T) {
	sh, err := ParseShell(viteShell, Options{})
	require.NoError(t, err)

	m := testMetadata()
	m.Title = " "
	_, err = sh.Fill(m)
	assert.Error(t, err)

	m = testMetadata()
	m.CanonicalURL = ""
	_, err = sh.Fill(m)
	assert.Error(t, err)
}
