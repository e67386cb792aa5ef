package records

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/retry"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the record tables when they do not exist. It is used by
// tests and local sqlite stores; production schemas are owned by the store.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SQLProvider reads records through database/sql. The same queries run on
// Postgres (lib/pq) and SQLite (modernc.org/sqlite).
type SQLProvider struct {
	db       *sql.DB
	policy   retry.Policy
	timeout  time.Duration
	recorder metrics.Recorder
	logger   *slog.Logger
}

// SQLOption configures a SQLProvider.
type SQLOption func(*SQLProvider)

func WithRetryPolicy(p retry.Policy) SQLOption {
	return func(s *SQLProvider) { s.policy = p }
}

// WithQueryTimeout bounds each query attempt; zero disables the bound.
func WithQueryTimeout(d time.Duration) SQLOption {
	return func(s *SQLProvider) { s.timeout = d }
}

func WithRecorder(r metrics.Recorder) SQLOption {
	return func(s *SQLProvider) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) SQLOption {
	return func(s *SQLProvider) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQLProvider wraps an open database handle.
func NewSQLProvider(db *sql.DB, opts ...SQLOption) *SQLProvider {
	p := &SQLProvider{
		db:       db,
		policy:   retry.DefaultPolicy(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Ping verifies connectivity. Failure is a fatal precondition of the run.
func (p *SQLProvider) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryPrecondition, "record store unreachable").
			Fatal().
			WithRetry(errors.RetryUserAction).
			Build()
	}
	return nil
}

func (p *SQLProvider) StatePages(ctx context.Context) ([]State, error) {
	const q = `SELECT slug, name, COALESCE(abbreviation, ''), COALESCE(top_payers, ''), COALESCE(medicaid_program, '')
FROM state_pages ORDER BY name, slug`
	return query(ctx, p, TableStatePages, q, func(rows *sql.Rows) (State, error) {
		var s State
		var payers string
		if err := rows.Scan(&s.Slug, &s.Name, &s.Abbreviation, &payers, &s.MedicaidProgram); err != nil {
			return s, err
		}
		s.TopPayers = p.decodeList(TableStatePages, s.Slug, payers)
		return s, nil
	})
}

func (p *SQLProvider) CityPages(ctx context.Context) ([]City, error) {
	const q = `SELECT slug, name, state_slug, COALESCE(population, 0), COALESCE(top_specialties, '')
FROM city_pages ORDER BY name, slug`
	return query(ctx, p, TableCityPages, q, func(rows *sql.Rows) (City, error) {
		var c City
		var specialties string
		if err := rows.Scan(&c.Slug, &c.Name, &c.StateSlug, &c.Population, &specialties); err != nil {
			return c, err
		}
		c.TopSpecialties = p.decodeList(TableCityPages, c.Slug, specialties)
		return c, nil
	})
}

func (p *SQLProvider) CPTCodes(ctx context.Context) ([]Code, error) {
	return p.codes(ctx, TableCPTCodes)
}

func (p *SQLProvider) ICD10Codes(ctx context.Context) ([]Code, error) {
	return p.codes(ctx, TableICD10Codes)
}

func (p *SQLProvider) DentalCodes(ctx context.Context) ([]Code, error) {
	return p.codes(ctx, TableDentalCodes)
}

func (p *SQLProvider) BillingModifiers(ctx context.Context) ([]Code, error) {
	return p.codes(ctx, TableBillingModifiers)
}

// codes reads one of the fixed code tables; t never comes from user input.
func (p *SQLProvider) codes(ctx context.Context, t Table) ([]Code, error) {
	q := `SELECT slug, code, title, COALESCE(description, ''), COALESCE(category, ''), COALESCE(usage_notes, '')
FROM ` + string(t) + ` ORDER BY code, slug`
	system := SystemFor(t)
	return query(ctx, p, t, q, func(rows *sql.Rows) (Code, error) {
		c := Code{System: system}
		err := rows.Scan(&c.Slug, &c.Code, &c.Title, &c.Description, &c.Category, &c.Usage)
		return c, err
	})
}

func (p *SQLProvider) EMRIntegrations(ctx context.Context) ([]Integration, error) {
	const q = `SELECT slug, name, COALESCE(vendor, ''), COALESCE(description, ''), COALESCE(features, '')
FROM emr_integrations ORDER BY name, slug`
	return query(ctx, p, TableEMRIntegrations, q, func(rows *sql.Rows) (Integration, error) {
		var in Integration
		var features string
		if err := rows.Scan(&in.Slug, &in.Name, &in.Vendor, &in.Description, &features); err != nil {
			return in, err
		}
		in.Features = p.decodeList(TableEMRIntegrations, in.Slug, features)
		return in, nil
	})
}

// decodeList decodes a JSON array column. Malformed values degrade to an empty list.
func (p *SQLProvider) decodeList(t Table, slug, raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		p.logger.Debug("Ignoring malformed list column",
			logfields.Table(string(t)), logfields.Slug(slug), logfields.Error(err))
		return nil
	}
	return out
}

// query runs q under the retry policy and scans every row with scan.
func query[T any](ctx context.Context, p *SQLProvider, t Table, q string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	start := time.Now()
	var out []T
	attempt := 0
	err := p.policy.Do(ctx, transientFor(ctx), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			p.recorder.IncQueryRetry(string(t))
			p.logger.Warn("Retrying record query", logfields.Table(string(t)), logfields.Attempt(attempt))
		}
		var err error
		out, err = runQuery(ctx, p, q, scan)
		return err
	})
	p.recorder.ObserveQueryDuration(string(t), time.Since(start), err == nil)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "query "+string(t)).
			WithContext("table", string(t)).
			WithContext("attempts", attempt).
			Build()
	}
	p.logger.Debug("Loaded records", logfields.Table(string(t)), logfields.Count(len(out)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return out, nil
}

func runQuery[T any](ctx context.Context, p *SQLProvider, q string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// transientFor reports whether a failed query is worth another attempt. Only
// the caller's context ending stops retries; an attempt that hit the per-query
// timeout while parent is still live is retried.
func transientFor(parent context.Context) func(error) bool {
	return func(err error) bool {
		if parent.Err() != nil {
			return false
		}
		return !stderrors.Is(err, context.Canceled)
	}
}
