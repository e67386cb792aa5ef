package config

import (
	"errors"
	"strings"
)

// NormalizeConfig canonicalizes enumerated and free-form fields prior to default application.
// Unknown enumeration values that cannot be defaulted safely are returned as errors.
func NormalizeConfig(c *Config) error {
	if c == nil {
		return errors.New("config nil")
	}

	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
	c.Site.RootID = strings.TrimSpace(c.Site.RootID)
	c.Site.ShellPath = strings.TrimSpace(c.Site.ShellPath)

	kind, err := NormalizeRecordsKind(string(c.Records.Kind))
	if err != nil {
		return err
	}
	c.Records.Kind = kind
	c.Records.DSN = strings.TrimSpace(c.Records.DSN)
	if c.Records.RetryBackoff != "" {
		c.Records.RetryBackoff = NormalizeRetryBackoff(string(c.Records.RetryBackoff))
	}
	c.Records.Cache.RedisURL = strings.TrimSpace(c.Records.Cache.RedisURL)

	if c.Build.Concurrency < 0 {
		c.Build.Concurrency = 0
	}
	c.Build.Schedule = strings.TrimSpace(c.Build.Schedule)

	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	return nil
}
