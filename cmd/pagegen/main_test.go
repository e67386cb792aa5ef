package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

const shell = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <title>ClaimPilot</title>
  </head>
  <body><div id="root"></div></body>
</html>
`

const snapshot = `state_pages:
  - slug: texas
    name: Texas
    abbreviation: TX
city_pages:
  - slug: austin
    name: Austin
    state_slug: texas
  - slug: nowhere-city
    name: Nowhere
    state_slug: atlantis
cpt_codes:
  - slug: cpt-99213
    code: "99213"
    title: Office visit
emr_integrations:
  - slug: epic
    name: Epic
`

type fixture struct {
	dir    string
	config string
	output string
}

func newFixture(t *testing.T, extra string) fixture {
	t.Helper()
	t.Setenv("PAGEGEN_LOG_LEVEL", "")
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}
	shellPath := write("shell.html", shell)
	records := write("records.yaml", snapshot)
	output := filepath.Join(dir, "dist")
	cfg := write("pagegen.yaml", `site:
  name: ClaimPilot
  base_url: https://www.example.com
  shell_path: `+shellPath+`
records:
  kind: file
  dsn: `+records+`
output:
  directory: `+output+`
  report_dir: `+filepath.Join(dir, "reports")+`
`+extra)
	return fixture{dir: dir, config: cfg, output: output}
}

func TestRun_BuildThenAudit(t *testing.T) {
	f := newFixture(t, "")

	require.Equal(t, errors.ExitOK, run([]string{"-c", f.config}))
	assert.FileExists(t, filepath.Join(f.output, "index.html"))
	assert.FileExists(t, filepath.Join(f.output, "medical-billing-services", "texas", "austin", "index.html"))
	assert.FileExists(t, filepath.Join(f.output, "resources", "cpt-99213", "index.html"))
	assert.FileExists(t, filepath.Join(f.output, "integrations", "index.html"))
	assert.NoDirExists(t, filepath.Join(f.output, "medical-billing-services", "atlantis"))
	assert.FileExists(t, filepath.Join(f.dir, "reports", "build-report.json"))

	assert.Equal(t, errors.ExitOK, run([]string{"-c", f.config, "audit"}))
}

func TestRun_MissingShell(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "shell.html")))

	assert.Equal(t, errors.ExitPrecondition, run([]string{"-c", f.config, "build"}))
	assert.NoDirExists(t, f.output)
}

func TestRun_StrictModeFailsOnBrokenPage(t *testing.T) {
	f := newFixture(t, "")
	defs := filepath.Join(f.dir, "defs")
	require.NoError(t, os.Mkdir(defs, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(defs, "pages.yaml"), []byte(`pages:
  - title: Revenue Cycle Management
    slug: rcm
    category: service
  - title: ""
    slug: broken
    category: service
`), 0o600))
	cfg, err := os.ReadFile(f.config)
	require.NoError(t, err)
	withDefs := strings.Replace(string(cfg), "records:", "  definitions_dir: "+defs+"\nrecords:", 1)
	require.NoError(t, os.WriteFile(f.config, []byte(withDefs), 0o600))

	assert.Equal(t, errors.ExitOK, run([]string{"-c", f.config}))
	assert.Equal(t, errors.ExitItemFailures, run([]string{"-c", f.config, "build", "--strict"}))
	assert.FileExists(t, filepath.Join(f.output, "services", "rcm", "index.html"))
	assert.NoDirExists(t, filepath.Join(f.output, "services", "broken"))
}

func TestRun_AuditFailure(t *testing.T) {
	f := newFixture(t, "")
	page := filepath.Join(f.output, "bad", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(page), 0o750))
	require.NoError(t, os.WriteFile(page, []byte(`<html><head><title>a</title><title>b</title></head><body></body></html>`), 0o600))

	assert.Equal(t, errors.ExitValidation, run([]string{"-c", f.config, "audit"}))
}

func TestRun_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagegen.yaml")
	require.Equal(t, errors.ExitOK, run([]string{"-c", path, "init"}))
	assert.FileExists(t, path)
	assert.Equal(t, errors.ExitPrecondition, run([]string{"-c", path, "init"}))
}

func TestRun_UnknownFlag(t *testing.T) {
	assert.Equal(t, errors.ExitValidation, run([]string{"--no-such-flag"}))
}
