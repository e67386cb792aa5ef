package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSite(); err != nil {
		return err
	}
	if err := cv.validateRecords(); err != nil {
		return err
	}
	if err := cv.validatePaths(); err != nil {
		return err
	}
	return cv.validateNotify()
}

func (cv *configurationValidator) validateSite() error {
	u, err := url.Parse(cv.config.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid site.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL: %q", cv.config.Site.BaseURL)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("site.base_url must be an origin without path, query or fragment: %q", cv.config.Site.BaseURL)
	}
	return nil
}

func (cv *configurationValidator) validateRecords() error {
	rc := cv.config.Records
	for name, raw := range map[string]string{
		"records.retry_initial_delay": rc.RetryInitialDelay,
		"records.retry_max_delay":     rc.RetryMaxDelay,
		"records.query_timeout":       rc.QueryTimeout,
	} {
		if err := validateDuration(name, raw); err != nil {
			return err
		}
	}
	if rc.Kind == RecordsFile && rc.DSN == "" {
		return errors.New("records.dsn must name a snapshot file when records.kind is file")
	}
	if rc.Cache.Enabled {
		if rc.Cache.RedisURL == "" {
			return errors.New("records.cache.redis_url is required when the cache is enabled")
		}
		if err := validateDuration("records.cache.ttl", rc.Cache.TTL); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	out := filepath.Clean(cv.config.Output.Directory)
	if cv.config.Output.ReportDir != "" && filepath.Clean(cv.config.Output.ReportDir) == out {
		return fmt.Errorf("output.report_dir must differ from output.directory (%s)", out)
	}
	return nil
}

func (cv *configurationValidator) validateNotify() error {
	if cv.config.Notify.NATSURL == "" {
		return nil
	}
	return validateDuration("notify.timeout", cv.config.Notify.Timeout)
}

func validateDuration(name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid %s: must not be negative", name)
	}
	return nil
}
