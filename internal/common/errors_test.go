package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	inner := errors.New("boom")
	err := NewUserError("Bitte erneut versuchen.", inner)

	assert.Equal(t, "Bitte erneut versuchen.: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "Bitte erneut versuchen.", UserMessage(err, "fallback"))
	assert.Equal(t, "fallback", UserMessage(inner, "fallback"))
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("llm.api_key", nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "llm.api_key", cfgErr.Setting)
	assert.ErrorIs(t, err, ErrMissingConfig)
	assert.False(t, IsDownstream(err))
}

func TestIsDownstream(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "transport",
			err:  &TransportError{Provider: "anthropic", Err: errors.New("connection refused")},
			want: true,
		},
		{
			name: "wrapped extraction",
			err:  fmt.Errorf("decode: %w", &ExtractionError{Reason: "no object"}),
			want: true,
		},
		{
			name: "schema",
			err:  &SchemaError{Path: "ergebnis", Expected: "number", Actual: "string"},
			want: true,
		},
		{
			name: "storage",
			err:  &StorageError{Op: "write", Key: "k", Err: errors.New("disk full")},
			want: false,
		},
		{
			name: "plain",
			err:  errors.New("plain"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDownstream(tt.err))
		})
	}
}

func TestTransportErrorMessage(t *testing.T) {
	err := &TransportError{Provider: "openai", StatusCode: 503, Err: errors.New("unavailable")}
	assert.Equal(t, "openai request failed (status 503): unavailable", err.Error())

	err = &TransportError{Provider: "openai", Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "openai request failed: dial tcp: refused", err.Error())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	_, err = ParseLevel("loud")
	require.Error(t, err)
}
