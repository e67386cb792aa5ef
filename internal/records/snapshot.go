package records

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
)

// Snapshot is an in-process copy of every record table.
type Snapshot struct {
	StatePages       []State       `yaml:"state_pages,omitempty"`
	CityPages        []City        `yaml:"city_pages,omitempty"`
	CPTCodes         []Code        `yaml:"cpt_codes,omitempty"`
	ICD10Codes       []Code        `yaml:"icd10_codes,omitempty"`
	DentalCodes      []Code        `yaml:"dental_codes,omitempty"`
	BillingModifiers []Code        `yaml:"billing_modifiers,omitempty"`
	EMRIntegrations  []Integration `yaml:"emr_integrations,omitempty"`
}

// MemoryProvider serves a Snapshot from memory. Errors injects a failure per table.
type MemoryProvider struct {
	snap    Snapshot
	Errors  map[Table]error
	PingErr error
}

// NewMemoryProvider returns a provider over a copy of snap, ordered like the SQL provider.
func NewMemoryProvider(snap Snapshot) *MemoryProvider {
	return &MemoryProvider{snap: sortSnapshot(snap), Errors: map[Table]error{}}
}

func (m *MemoryProvider) Ping(context.Context) error { return m.PingErr }

func (m *MemoryProvider) StatePages(ctx context.Context) ([]State, error) {
	return serve(ctx, m, TableStatePages, m.snap.StatePages)
}

func (m *MemoryProvider) CityPages(ctx context.Context) ([]City, error) {
	return serve(ctx, m, TableCityPages, m.snap.CityPages)
}

func (m *MemoryProvider) CPTCodes(ctx context.Context) ([]Code, error) {
	return serve(ctx, m, TableCPTCodes, m.snap.CPTCodes)
}

func (m *MemoryProvider) ICD10Codes(ctx context.Context) ([]Code, error) {
	return serve(ctx, m, TableICD10Codes, m.snap.ICD10Codes)
}

func (m *MemoryProvider) DentalCodes(ctx context.Context) ([]Code, error) {
	return serve(ctx, m, TableDentalCodes, m.snap.DentalCodes)
}

func (m *MemoryProvider) BillingModifiers(ctx context.Context) ([]Code, error) {
	return serve(ctx, m, TableBillingModifiers, m.snap.BillingModifiers)
}

func (m *MemoryProvider) EMRIntegrations(ctx context.Context) ([]Integration, error) {
	return serve(ctx, m, TableEMRIntegrations, m.snap.EMRIntegrations)
}

func serve[T any](ctx context.Context, m *MemoryProvider, t Table, rows []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Errors[t]; err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "query "+string(t)).
			WithContext("table", string(t)).
			Build()
	}
	return append(make([]T, 0, len(rows)), rows...), nil
}

// FileProvider serves a YAML snapshot file read once at construction.
type FileProvider struct {
	*MemoryProvider
	path string
}

// NewFileProvider reads the snapshot at path. A missing or unreadable file is a
// fatal precondition.
func NewFileProvider(path string) (*FileProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPrecondition, "read record snapshot").
			Fatal().
			WithContext("path", path).
			Build()
	}
	var snap Snapshot
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return nil, errors.WrapError(err, errors.CategoryPrecondition, "parse record snapshot").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return &FileProvider{MemoryProvider: NewMemoryProvider(snap), path: path}, nil
}

// Path returns the snapshot file location.
func (f *FileProvider) Path() string { return f.path }

// WriteSnapshot stores snap as YAML at path.
func WriteSnapshot(path string, snap Snapshot) error {
	raw, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func sortSnapshot(s Snapshot) Snapshot {
	byName := func(a, b string, sa, sb string) int {
		return cmp.Or(cmp.Compare(a, b), cmp.Compare(sa, sb))
	}
	s.StatePages = slices.Clone(s.StatePages)
	slices.SortStableFunc(s.StatePages, func(a, b State) int { return byName(a.Name, b.Name, a.Slug, b.Slug) })
	s.CityPages = slices.Clone(s.CityPages)
	slices.SortStableFunc(s.CityPages, func(a, b City) int { return byName(a.Name, b.Name, a.Slug, b.Slug) })
	s.EMRIntegrations = slices.Clone(s.EMRIntegrations)
	slices.SortStableFunc(s.EMRIntegrations, func(a, b Integration) int { return byName(a.Name, b.Name, a.Slug, b.Slug) })

	codes := func(rows []Code, t Table) []Code {
		out := slices.Clone(rows)
		for i := range out {
			if out[i].System == "" {
				out[i].System = SystemFor(t)
			}
		}
		slices.SortStableFunc(out, func(a, b Code) int { return byName(a.Code, b.Code, a.Slug, b.Slug) })
		return out
	}
	s.CPTCodes = codes(s.CPTCodes, TableCPTCodes)
	s.ICD10Codes = codes(s.ICD10Codes, TableICD10Codes)
	s.DentalCodes = codes(s.DentalCodes, TableDentalCodes)
	s.BillingModifiers = codes(s.BillingModifiers, TableBillingModifiers)
	return s
}
