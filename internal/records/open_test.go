package records

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/metrics"
)

func TestOpen_MissingCredentials(t *testing.T) {
	_, err := Open(context.Background(), config.RecordsConfig{Kind: config.RecordsPostgres}, metrics.NoopRecorder{}, nil)
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryPrecondition, ce.Category())
	assert.True(t, ce.IsFatal())
}

func TestOpen_None(t *testing.T) {
	conn, err := Open(context.Background(), config.RecordsConfig{Kind: config.RecordsNone}, nil, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	states, err := conn.StatePages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, states)
	assert.NoError(t, conn.Ping(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	conn, err := Open(context.Background(), config.RecordsConfig{
		Kind:              config.RecordsSQLite,
		DSN:               path,
		RetryBackoff:      config.RetryBackoffFixed,
		RetryInitialDelay: "1ms",
		RetryMaxDelay:     "1ms",
		QueryTimeout:      "5s",
	}, metrics.NoopRecorder{}, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	sp, ok := conn.Provider.(*SQLProvider)
	require.True(t, ok)
	require.NoError(t, EnsureSchema(context.Background(), sp.db))

	states, err := conn.StatePages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, states)
	require.NoError(t, conn.Ping(context.Background()))
}

func TestOpen_FileSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, WriteSnapshot(path, Snapshot{StatePages: []State{{Slug: "utah", Name: "Utah"}}}))

	conn, err := Open(context.Background(), config.RecordsConfig{Kind: config.RecordsFile, DSN: path}, nil, nil)
	require.NoError(t, err)
	states, err := conn.StatePages(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
}

func TestOpen_BadCacheURL(t *testing.T) {
	_, err := Open(context.Background(), config.RecordsConfig{
		Kind:  config.RecordsNone,
		Cache: config.CacheConfig{Enabled: true, RedisURL: "://nope"},
	}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
