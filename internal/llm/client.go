package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/immowert/internal/common"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 120 * time.Second

// CallOptions tunes one invocation.
type CallOptions struct {
	// Operation labels the call in logs.
	Operation   string
	Temperature float64
	MaxTokens   int
	// WebSearch enables the provider's server-side search tool.
	WebSearch bool
}

// Invoker sends one system/user prompt pair and returns the raw reply text.
// Every call is independent; nothing is retried.
type Invoker interface {
	Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, system, user string, opts CallOptions) (string, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	return f(ctx, system, user, opts)
}

// Config holds provider settings.
type Config struct {
	HTTPClient *http.Client
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
}

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Providers lists the supported provider names.
func Providers() []string {
	return []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini}
}

// APIKeyEnv returns the conventional environment variable for a provider's key.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) requireKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return common.NewConfigurationError("llm.api_key",
			fmt.Errorf("%w: %s API key is required (set llm.api_key or %s)",
				common.ErrMissingConfig, c.Provider, APIKeyEnv(c.Provider)))
	}
	return nil
}

func emptyReply(provider string) error {
	return &common.TransportError{Provider: provider, Err: common.ErrEmptyResponse}
}
