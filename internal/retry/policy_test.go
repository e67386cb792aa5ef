package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimpilot/pagegen/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 5*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial, "initial clamped to max")
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	unknown := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	assert.Equal(t, config.RetryBackoffExponential, unknown.Mode)
}

func TestDelayModes(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration
	}{
		{
			name:   "fixed",
			policy: NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3),
			want:   []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond},
		},
		{
			name:   "linear capped",
			policy: NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5),
			want:   []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
		},
		{
			name:   "exponential capped",
			policy: NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5),
			want:   []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 160 * time.Millisecond, 160 * time.Millisecond},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				assert.Equal(t, want, tt.policy.Delay(i+1), "attempt %d", i+1)
			}
			assert.Zero(t, tt.policy.Delay(0))
			assert.Zero(t, tt.policy.Delay(-1))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
	assert.NoError(t, Policy{Initial: time.Second, Max: 2 * time.Second}.Validate())
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RecordsConfig{
		MaxRetries:        3,
		RetryBackoff:      config.RetryBackoffLinear,
		RetryInitialDelay: "20ms",
		RetryMaxDelay:     "1s",
	})
	assert.Equal(t, Policy{Mode: config.RetryBackoffLinear, Initial: 20 * time.Millisecond, Max: time.Second, MaxRetries: 3}, p)
}

func TestDo(t *testing.T) {
	fast := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	transient := errors.New("connection reset")

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := fast.Do(context.Background(), nil, func(context.Context) error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := fast.Do(context.Background(), nil, func(context.Context) error {
			calls++
			return transient
		})
		require.ErrorIs(t, err, transient)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		permanent := errors.New("relation does not exist")
		calls := 0
		err := fast.Do(context.Background(), func(err error) bool { return err != permanent }, func(context.Context) error {
			calls++
			return permanent
		})
		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context stops waiting", func(t *testing.T) {
		slow := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := slow.Do(ctx, nil, func(context.Context) error {
			calls++
			cancel()
			return transient
		})
		require.ErrorIs(t, err, transient)
		assert.Equal(t, 1, calls)
	})
}
