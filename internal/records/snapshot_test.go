package records

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

func TestMemoryProvider_OrdersAndCopies(t *testing.T) {
	p := NewMemoryProvider(Snapshot{
		StatePages: []State{{Slug: "texas", Name: "Texas"}, {Slug: "alabama", Name: "Alabama"}},
		CPTCodes:   []Code{{Slug: "b", Code: "99214"}, {Slug: "a", Code: "99213"}},
	})
	ctx := context.Background()

	states, err := p.StatePages(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alabama", states[0].Slug)

	states[0].Name = "mutated"
	again, _ := p.StatePages(ctx)
	assert.Equal(t, "Alabama", again[0].Name)

	codes, err := p.CPTCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "99213", codes[0].Code)
	assert.Equal(t, SystemCPT, codes[0].System)

	cities, err := p.CityPages(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)
}

func TestMemoryProvider_FaultInjection(t *testing.T) {
	p := NewMemoryProvider(Snapshot{})
	boom := stderrors.New("connection reset by peer")
	p.Errors[TableICD10Codes] = boom

	_, err := p.ICD10Codes(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, errors.HasCategory(err, errors.CategoryStore))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.DentalCodes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, WriteSnapshot(path, Snapshot{
		CityPages:       []City{{Slug: "austin", Name: "Austin", StateSlug: "texas", Population: 961855}},
		EMRIntegrations: []Integration{{Slug: "epic", Name: "Epic", Features: []string{"HL7 interface"}}},
	}))

	p, err := NewFileProvider(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path())

	cities, err := p.CityPages(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "texas", cities[0].StateSlug)

	emr, err := p.EMRIntegrations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"HL7 interface"}, emr[0].Features)
}

func TestFileProvider_Errors(t *testing.T) {
	_, err := NewFileProvider(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryPrecondition))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("state_pages: {"), 0o644))
	_, err = NewFileProvider(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse record snapshot")
}
