package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		kind        Kind
		rateLimited bool
		attempt     int
		want        time.Duration
	}{
		{"provider first retry", KindProvider, false, 0, 500 * time.Millisecond},
		{"provider doubles", KindProvider, false, 2, 2 * time.Second},
		{"provider capped at 30s", KindProvider, false, 10, 30 * time.Second},
		{"rate limited starts at 1s", KindProvider, true, 0, time.Second},
		{"rate limited doubles", KindProvider, true, 3, 8 * time.Second},
		{"rate limited capped at 60s", KindProvider, true, 10, 60 * time.Second},
		{"timeout linear", KindTimeout, false, 0, 2 * time.Second},
		{"timeout linear grows", KindTimeout, false, 2, 6 * time.Second},
		{"timeout capped", KindTimeout, false, 40, 30 * time.Second},
		{"validation never waits", KindValidation, false, 5, 0},
		{"cost limit never waits", KindCostLimit, false, 5, 0},
		{"negative attempt clamps", KindProvider, false, -1, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RetryDelay(tt.kind, tt.rateLimited, tt.attempt))
		})
	}
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), 5, "test", func(ctx context.Context) error {
		calls++
		return NewValidation("empty document")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "validation errors must not be retried")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDoRetriesProviderErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), 3, "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewProvider(eris.New("503"), false)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, 5, "test", func(ctx context.Context) error {
		calls++
		cancel()
		return NewProvider(eris.New("503"), false)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "cancellation stops retries immediately")
}

func TestDoValReturnsValue(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), 3, "test", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, NewTimeout(context.DeadlineExceeded)
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}
