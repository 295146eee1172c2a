package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/immowert/internal/common"
)

// New creates an Invoker for the configured provider.
func New(cfg Config) (Invoker, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderAnthropic
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		return newAnthropicInvoker(cfg)
	case ProviderOpenAI:
		return newOpenAIInvoker(cfg)
	case ProviderGemini:
		return newGeminiInvoker(cfg)
	default:
		return nil, common.NewConfigurationError("llm.provider",
			fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider))
	}
}
