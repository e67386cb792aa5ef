// Package notify publishes the outcome of a generation run to NATS.
package notify

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
	"github.com/claimpilot/pagegen/internal/site/models"
)

const defaultTimeout = 5 * time.Second

// RunEvent is the message published after every run.
type RunEvent struct {
	RunID         string              `json:"run_id"`
	Outcome       string              `json:"outcome"`
	Timestamp     time.Time           `json:"timestamp"`
	DurationMS    int64               `json:"duration_ms"`
	TotalSuccess  int                 `json:"total_success"`
	TotalError    int                 `json:"total_error"`
	TotalSkipped  int                 `json:"total_skipped"`
	TotalCanceled int                 `json:"total_canceled"`
	Failed        []models.ItemResult `json:"failed,omitempty"`
	Issues        []string            `json:"issues,omitempty"`
}

// NewRunEvent builds the event for a finished report.
func NewRunEvent(report *models.BuildReport) RunEvent {
	ev := RunEvent{
		RunID:      report.RunID,
		Outcome:    string(report.Outcome),
		Timestamp:  report.End,
		DurationMS: report.End.Sub(report.Start).Milliseconds(),
	}
	if s := report.Summary; s != nil {
		ev.TotalSuccess = s.TotalSuccess
		ev.TotalError = s.TotalError
		ev.TotalSkipped = s.TotalSkipped
		ev.TotalCanceled = s.TotalCanceled
		ev.Failed = s.Failed()
	}
	for _, is := range report.Issues {
		ev.Issues = append(ev.Issues, string(is.Code)+": "+is.Message)
	}
	return ev
}

// conn is the subset of *nats.Conn used by the notifier.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Notifier publishes a RunEvent when a run completes. It is a BuildObserver so
// it can be attached to a generator directly.
type Notifier struct {
	models.NoopObserver
	conn    conn
	subject string
	timeout time.Duration
	logger  *slog.Logger
}

// Connect dials the configured NATS server. It returns nil and no error when
// notifications are not configured.
func Connect(cfg config.NotifyConfig, logger *slog.Logger) (*Notifier, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("pagegen"), nats.Timeout(timeout))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPrecondition, "connect to NATS").
			WithContext("url", cfg.NATSURL).
			Build()
	}
	return newNotifier(nc, cfg.Subject, timeout, logger), nil
}

func newNotifier(c conn, subject string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = "pagegen.runs"
	}
	return &Notifier{conn: c, subject: subject, timeout: timeout, logger: logger}
}

// Publish sends the event and waits for the server to acknowledge the flush.
func (n *Notifier) Publish(ev RunEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal run event").Build()
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryStore, "publish run event").
			WithContext("subject", n.subject).
			Build()
	}
	if err := n.conn.FlushTimeout(n.timeout); err != nil {
		return errors.WrapError(err, errors.CategoryStore, "flush run event").
			WithContext("subject", n.subject).
			Build()
	}
	n.logger.Debug("Published run event", logfields.RunID(ev.RunID), slog.String("subject", n.subject))
	return nil
}

// OnBuildComplete publishes the report. A failed publish is logged; it never
// changes the outcome of the run.
func (n *Notifier) OnBuildComplete(report *models.BuildReport) {
	if err := n.Publish(NewRunEvent(report)); err != nil {
		n.logger.Warn("Run notification failed", logfields.RunID(report.RunID), logfields.Error(err))
	}
}

// Close closes the connection.
func (n *Notifier) Close() {
	if n != nil && n.conn != nil {
		n.conn.Close()
	}
}
