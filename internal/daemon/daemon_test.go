package daemon

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/sink"
)

func TestRunner_QueuesSingleFollowUp(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	var calls atomic.Int32
	r := NewRunner(func(context.Context) error {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}, nil)

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Trigger(ctx, "first")
	}()
	<-started

	// Three triggers while running collapse into one follow-up.
	r.Trigger(ctx, "a")
	r.Trigger(ctx, "b")
	r.Trigger(ctx, "c")

	release <- struct{}{}
	<-started
	release <- struct{}{}
	wg.Wait()

	assert.Equal(t, int32(2), calls.Load())
	runs, failed := r.Stats()
	assert.Equal(t, 2, runs)
	assert.Zero(t, failed)
}

func TestRunner_CountsFailures(t *testing.T) {
	r := NewRunner(func(context.Context) error { return stderrors.New("boom") }, nil)
	r.Trigger(context.Background(), "test")
	runs, failed := r.Stats()
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, failed)
}

func TestRunner_SkipsWhenCanceled(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(func(context.Context) error { calls.Add(1); return nil }, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Trigger(ctx, "test")
	assert.Zero(t, calls.Load())
}

func TestScheduler_InvalidExpression(t *testing.T) {
	s, err := NewScheduler(NewRunner(func(context.Context) error { return nil }, nil), nil)
	require.NoError(t, err)

	err = s.Add(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	err = s.Add(context.Background(), "not a cron")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	var calls atomic.Int32
	s, err := NewScheduler(NewRunner(func(context.Context) error { calls.Add(1); return nil }, nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Add(ctx, "* * * * * *"))
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_TriggersOnShellChange(t *testing.T) {
	dir := t.TempDir()
	shell := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(shell, []byte("<html></html>"), 0o600))
	defs := filepath.Join(dir, "definitions")
	require.NoError(t, os.Mkdir(defs, 0o750))

	var calls atomic.Int32
	r := NewRunner(func(context.Context) error { calls.Add(1); return nil }, nil)
	w, err := NewWatcher(r, nil, []string{shell}, []string{defs}, WithQuietWindow(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated file next to the shell does not trigger.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, os.WriteFile(shell, []byte("<html><head></head></html>"), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(defs, "services.yaml"), []byte("[]"), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_IgnoresShellRewrittenByGeneration(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, os.Mkdir(out, 0o750))
	shell := filepath.Join(out, "index.html")
	require.NoError(t, os.WriteFile(shell, []byte(`<html><div id="root"></div></html>`), 0o600))

	var calls atomic.Int32
	r := NewRunner(func(context.Context) error {
		calls.Add(1)
		return sink.NewFileSystemSink(out).Write("index.html", `<html><div id="root"><h1>Home</h1></div></html>`)
	}, nil)
	w, err := NewWatcher(r, nil, []string{shell}, nil,
		WithQuietWindow(20*time.Millisecond), WithOutputDir(out))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	go r.Trigger(ctx, "startup")
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a generation must not retrigger itself")

	require.NoError(t, os.WriteFile(shell, []byte(`<html lang="en"><div id="root"></div></html>`), 0o600))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_Generated(t *testing.T) {
	out := t.TempDir()
	w := &Watcher{output: out}
	assert.True(t, w.generated(filepath.Join(out, "index.html")))
	assert.True(t, w.generated(filepath.Join(out, "services", "rcm", "index.html")))
	assert.False(t, w.generated(filepath.Join(filepath.Dir(out), "shell.html")))
	assert.False(t, w.generated(out+"-other"))
	assert.False(t, (&Watcher{}).generated(filepath.Join(out, "index.html")))
}

func TestWatcher_MissingDirectory(t *testing.T) {
	r := NewRunner(func(context.Context) error { return nil }, nil)
	_, err := NewWatcher(r, nil, nil, []string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
