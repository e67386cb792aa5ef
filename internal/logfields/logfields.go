package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyCategory   = "category"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyTable      = "table"
	KeyWorker     = "worker"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyAttempt    = "attempt"
	KeySchedule   = "schedule"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Table(t string) slog.Attr        { return slog.String(KeyTable, t) }
func Worker(id int) slog.Attr         { return slog.Int(KeyWorker, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func Schedule(expr string) slog.Attr  { return slog.String(KeySchedule, expr) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
