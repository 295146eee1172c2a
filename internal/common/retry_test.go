package common

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRetry(attempts int) RetryOptions {
	return RetryOptions{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
	}
}

func TestRetry(t *testing.T) {
	flaky := errors.New("flaky")
	fatal := errors.New("fatal")

	tests := []struct {
		name      string
		failures  []error
		wantErr   error
		wantCalls int
	}{
		{name: "succeeds first time", wantCalls: 1},
		{name: "succeeds after failures", failures: []error{flaky, flaky}, wantCalls: 3},
		{name: "gives up", failures: []error{flaky, flaky, flaky, flaky}, wantErr: ErrMaxRetries, wantCalls: 3},
		{name: "permanent stops at once", failures: []error{Permanent(fatal)}, wantErr: fatal, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), quietRetry(3), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRetryKeepsLastError(t *testing.T) {
	transport := &TransportError{Provider: "nominatim", StatusCode: 503, Err: errors.New("unavailable")}
	err := Retry(context.Background(), quietRetry(2), func() error { return transport })

	var got *TransportError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 503, got.StatusCode)
	assert.ErrorIs(t, err, ErrMaxRetries)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := quietRetry(5)
	opts.InitialDelay = time.Hour

	calls := 0
	err := Retry(ctx, opts, func() error {
		calls++
		cancel()
		return errors.New("down")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
