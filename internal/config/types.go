package config

import (
	"github.com/claimpilot/pagegen/internal/foundation/normalization"
)

// RecordsKind selects the external record provider implementation.
type RecordsKind string

const (
	RecordsPostgres RecordsKind = "postgres"
	RecordsSQLite   RecordsKind = "sqlite"
	RecordsFile     RecordsKind = "file"
	RecordsNone     RecordsKind = "none"
)

var recordsKindNormalizer = normalization.NewNormalizer("records.kind", map[string]RecordsKind{
	"postgres":   RecordsPostgres,
	"postgresql": RecordsPostgres,
	"pg":         RecordsPostgres,
	"sqlite":     RecordsSQLite,
	"sqlite3":    RecordsSQLite,
	"file":       RecordsFile,
	"yaml":       RecordsFile,
	"none":       RecordsNone,
}, RecordsPostgres)

// NormalizeRecordsKind folds raw into a RecordsKind, returning an error for unknown values.
// An empty value selects postgres.
func NormalizeRecordsKind(raw string) (RecordsKind, error) {
	return recordsKindNormalizer.NormalizeWithError(raw)
}

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer("records.retry_backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff converts arbitrary user input into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("logging.level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("logging.format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}
