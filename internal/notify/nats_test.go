package notify

import (
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/config"
	"github.com/claimpilot/pagegen/internal/site/models"
)

type fakeConn struct {
	subject  string
	data     []byte
	pubErr   error
	flushErr error
	flushed  time.Duration
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.pubErr
}

func (f *fakeConn) FlushTimeout(d time.Duration) error {
	f.flushed = d
	return f.flushErr
}

func (f *fakeConn) Close() { f.closed = true }

func testReport() *models.BuildReport {
	r := models.NewBuildReport("run-7")
	r.Summary.Add(
		models.ItemResult{Category: "service", Slug: "rcm", Status: models.ItemSuccess},
		models.ItemResult{Category: "service", Slug: "broken", Status: models.ItemError, Error: "empty title"},
	)
	r.AddIssue(models.IssueItemFailure, models.StageServices, models.SeverityWarning, "1 of 2 pages failed", false, stderrors.New("x"))
	r.Finish()
	r.DeriveOutcome()
	return r
}

func TestNewRunEvent(t *testing.T) {
	ev := NewRunEvent(testReport())
	assert.Equal(t, "run-7", ev.RunID)
	assert.Equal(t, string(models.OutcomeWarning), ev.Outcome)
	assert.Equal(t, 1, ev.TotalSuccess)
	assert.Equal(t, 1, ev.TotalError)
	require.Len(t, ev.Failed, 1)
	assert.Equal(t, "broken", ev.Failed[0].Slug)
	assert.Equal(t, []string{"ITEM_FAILURE: 1 of 2 pages failed"}, ev.Issues)
}

func TestNotifier_PublishesOnBuildComplete(t *testing.T) {
	fc := &fakeConn{}
	n := newNotifier(fc, "", 2*time.Second, nil)

	n.OnBuildComplete(testReport())

	assert.Equal(t, "pagegen.runs", fc.subject)
	assert.Equal(t, 2*time.Second, fc.flushed)
	var got RunEvent
	require.NoError(t, json.Unmarshal(fc.data, &got))
	assert.Equal(t, "run-7", got.RunID)

	n.Close()
	assert.True(t, fc.closed)
}

func TestNotifier_PublishErrors(t *testing.T) {
	n := newNotifier(&fakeConn{pubErr: stderrors.New("no responders")}, "x", time.Second, nil)
	require.Error(t, n.Publish(RunEvent{RunID: "a"}))

	n = newNotifier(&fakeConn{flushErr: stderrors.New("timeout")}, "x", time.Second, nil)
	err := n.Publish(RunEvent{RunID: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush")

	assert.NotPanics(t, func() { n.OnBuildComplete(testReport()) })
}

func TestConnect_Disabled(t *testing.T) {
	n, err := Connect(config.NotifyConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.NotPanics(t, n.Close)
}
