package config

import "os"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles Site configuration defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Name == "" {
		cfg.Site.Name = "ClaimPilot Medical Billing"
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "https://www.example.com"
	}
	if cfg.Site.ShellPath == "" {
		cfg.Site.ShellPath = "./dist/index.html"
	}
	if cfg.Site.RootID == "" {
		cfg.Site.RootID = "root"
	}
	return nil
}

// RecordsDefaultApplier handles record store defaults.
type RecordsDefaultApplier struct{}

func (r *RecordsDefaultApplier) Domain() string { return "records" }

func (r *RecordsDefaultApplier) ApplyDefaults(cfg *Config) error {
	rc := &cfg.Records
	if rc.Kind == "" {
		rc.Kind = RecordsPostgres
	}
	if rc.DSN == "" && rc.Kind == RecordsPostgres {
		rc.DSN = os.Getenv("DATABASE_URL")
	}
	if rc.MaxRetries < 0 {
		rc.MaxRetries = 0
	}
	if rc.MaxRetries == 0 && !rc.maxRetriesSpecified {
		rc.MaxRetries = 2
	}
	if rc.RetryBackoff == "" {
		rc.RetryBackoff = RetryBackoffExponential
	}
	if rc.RetryInitialDelay == "" {
		rc.RetryInitialDelay = "500ms"
	}
	if rc.RetryMaxDelay == "" {
		rc.RetryMaxDelay = "5s"
	}
	if rc.QueryTimeout == "" {
		rc.QueryTimeout = "30s"
	}
	if rc.Cache.Enabled {
		if rc.Cache.RedisURL == "" {
			rc.Cache.RedisURL = os.Getenv("REDIS_URL")
		}
		if rc.Cache.TTL == "" {
			rc.Cache.TTL = "1h"
		}
		if rc.Cache.KeyPrefix == "" {
			rc.Cache.KeyPrefix = "pagegen:records:"
		}
	}
	return nil
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = 4
	}
	if cfg.Build.Schedule == "" {
		cfg.Build.Schedule = "0 3 * * *"
	}
	return nil
}

// OutputDefaultApplier handles Output configuration defaults.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./dist"
	}
	return nil
}

// LoggingDefaultApplier lets PAGEGEN_LOG_LEVEL override the configured level.
type LoggingDefaultApplier struct{}

func (l *LoggingDefaultApplier) Domain() string { return "logging" }

func (l *LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if env := os.Getenv("PAGEGEN_LOG_LEVEL"); env != "" {
		cfg.Logging.Level = NormalizeLogLevel(env)
	}
	return nil
}

// NotifyDefaultApplier handles notification defaults once a NATS URL is set.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.NATSURL == "" {
		return nil
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "pagegen.runs"
	}
	if cfg.Notify.Timeout == "" {
		cfg.Notify.Timeout = "5s"
	}
	return nil
}

// CompositeDefaultApplier runs the domain appliers in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier chain used by Load.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		&SiteDefaultApplier{},
		&RecordsDefaultApplier{},
		&BuildDefaultApplier{},
		&OutputDefaultApplier{},
		&LoggingDefaultApplier{},
		&NotifyDefaultApplier{},
	}}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
