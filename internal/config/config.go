package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "pagegen.yaml"

// Config is the complete pagegen configuration.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Records    RecordsConfig    `yaml:"records"`
	Build      BuildConfig      `yaml:"build"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
}

// SiteConfig describes the public site the pages belong to.
type SiteConfig struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"base_url"`        // Canonical origin, no trailing slash
	ShellPath      string `yaml:"shell_path"`      // Pre-built HTML shell the pages are injected into
	RootID         string `yaml:"root_id"`         // id of the root content container
	DefaultImage   string `yaml:"default_image"`   // og:image / twitter:image
	TwitterSite    string `yaml:"twitter_site"`    // Optional @handle
	DefinitionsDir string `yaml:"definitions_dir"` // Overrides the embedded page definitions
}

// RecordsConfig configures the external record store.
type RecordsConfig struct {
	Kind              RecordsKind      `yaml:"kind"`
	DSN               string           `yaml:"dsn"` // Connection string, sqlite path, or snapshot file
	MaxRetries        int              `yaml:"max_retries"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff"`
	RetryInitialDelay string           `yaml:"retry_initial_delay"`
	RetryMaxDelay     string           `yaml:"retry_max_delay"`
	QueryTimeout      string           `yaml:"query_timeout"`
	Cache             CacheConfig      `yaml:"cache,omitempty"`

	maxRetriesSpecified bool
}

// UnmarshalYAML records whether max_retries was given so an explicit 0 disables retries.
func (r *RecordsConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain RecordsConfig
	var tmp plain
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*r = RecordsConfig(tmp)
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "max_retries" {
			r.maxRetriesSpecified = true
		}
	}
	return nil
}

// CacheConfig configures the Redis read-through cache in front of the store.
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	RedisURL  string `yaml:"redis_url"`
	TTL       string `yaml:"ttl"`
	KeyPrefix string `yaml:"key_prefix"`
}

// BuildConfig controls batch execution.
type BuildConfig struct {
	Concurrency     int    `yaml:"concurrency"`
	FailOnItemError bool   `yaml:"fail_on_item_error"`
	Schedule        string `yaml:"schedule"` // Cron expression used by the schedule command
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	ReportDir string `yaml:"report_dir"` // Empty disables the build report
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringConfig configures metrics export.
type MonitoringConfig struct {
	MetricsTextfile string `yaml:"metrics_textfile"` // node-exporter textfile collector target
}

// NotifyConfig configures the run summary notification.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
	Timeout string `yaml:"timeout"`
}

// Load reads, normalizes, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but falls back to defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		loadEnvFiles()
		return Parse(nil)
	}
	return Load(path)
}

// Parse builds a Config from YAML, expanding ${VAR} references from the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := NormalizeConfig(&cfg); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env; variables already set in the process win.
func loadEnvFiles() {
	for _, p := range []string{".env.local", ".env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Durations parses the retry and timeout settings of the records section.
// Validation guarantees these parse.
func (r RecordsConfig) Durations() (initial, maxDelay, queryTimeout time.Duration) {
	initial, _ = time.ParseDuration(r.RetryInitialDelay)
	maxDelay, _ = time.ParseDuration(r.RetryMaxDelay)
	queryTimeout, _ = time.ParseDuration(r.QueryTimeout)
	return initial, maxDelay, queryTimeout
}

// TTLDuration returns the cache entry lifetime.
func (c CacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// TimeoutDuration returns the publish flush timeout.
func (n NotifyConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(n.Timeout)
	return d
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Config{
		Site: SiteConfig{
			Name:         "ClaimPilot Medical Billing",
			BaseURL:      "https://www.example.com",
			ShellPath:    "./dist/index.html",
			RootID:       "root",
			DefaultImage: "https://www.example.com/og-image.png",
		},
		Records: RecordsConfig{
			Kind:              RecordsPostgres,
			DSN:               "${DATABASE_URL}",
			MaxRetries:        2,
			RetryBackoff:      RetryBackoffExponential,
			RetryInitialDelay: "500ms",
			RetryMaxDelay:     "5s",
			QueryTimeout:      "30s",
			Cache: CacheConfig{
				RedisURL: "${REDIS_URL}",
				TTL:      "1h",
			},
		},
		Build: BuildConfig{
			Concurrency: 4,
			Schedule:    "0 3 * * *",
		},
		Output: OutputConfig{
			Directory: "./dist",
			ReportDir: "./build-report",
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
