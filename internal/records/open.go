package records

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/metrics"
	"github.com/claimpilot/pagegen/internal/retry"
)

// Conn is an opened Provider together with the resources backing it.
type Conn struct {
	Provider
	closers []func() error
}

// Close releases database and cache connections.
func (c *Conn) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Ping delegates to the provider when it supports connectivity checks.
func (c *Conn) Ping(ctx context.Context) error {
	if p, ok := c.Provider.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Open builds the provider selected by rc and verifies connectivity. Missing
// credentials and unreachable stores are returned as fatal precondition errors.
func Open(ctx context.Context, rc config.RecordsConfig, recorder metrics.Recorder, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn := &Conn{}

	switch rc.Kind {
	case config.RecordsNone:
		logger.Warn("No record store configured; dynamic categories produce no pages")
		conn.Provider = NewMemoryProvider(Snapshot{})
	case config.RecordsFile:
		fp, err := NewFileProvider(rc.DSN)
		if err != nil {
			return nil, err
		}
		conn.Provider = fp
	case config.RecordsPostgres, config.RecordsSQLite:
		if rc.DSN == "" {
			return nil, errors.PreconditionError("record store credentials missing: set records.dsn or DATABASE_URL").
				WithContext("kind", string(rc.Kind)).
				Build()
		}
		driver := "postgres"
		if rc.Kind == config.RecordsSQLite {
			driver = "sqlite"
		}
		db, err := sql.Open(driver, rc.DSN)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryPrecondition, "open record store").Fatal().Build()
		}
		conn.closers = append(conn.closers, db.Close)
		_, _, timeout := rc.Durations()
		sp := NewSQLProvider(db,
			WithRetryPolicy(retry.FromConfig(rc)),
			WithQueryTimeout(timeout),
			WithRecorder(recorder),
			WithLogger(logger),
		)
		if err := sp.Ping(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		conn.Provider = sp
	default:
		return nil, errors.ConfigError("unsupported records.kind").WithContext("kind", string(rc.Kind)).Build()
	}

	if rc.Cache.Enabled {
		rcache, err := NewRedisCache(ctx, rc.Cache.RedisURL, rc.Cache.KeyPrefix)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		conn.closers = append(conn.closers, rcache.Close)
		conn.Provider = NewCachingProvider(conn.Provider, rcache, rc.Cache.TTLDuration(), logger)
	}

	logger.Info("Record store ready", slog.String("kind", string(rc.Kind)), slog.Bool("cache", rc.Cache.Enabled))
	return conn, nil
}
