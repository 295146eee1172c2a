package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// anthropicInvoker calls the Anthropic Messages API.
type anthropicInvoker struct {
	client anthropic.Client
	cfg    Config
}

func newAnthropicInvoker(cfg Config) (*anthropicInvoker, error) {
	if err := cfg.requireKey(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &anthropicInvoker{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

// Invoke sends one message and concatenates the text blocks of the reply.
func (a *anthropicInvoker) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.timeout())
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.cfg.Model),
		MaxTokens: int64(opts.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(opts.Temperature),
	}
	if opts.WebSearch {
		params.Tools = []anthropic.ToolUnionParam{
			{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(5),
			}},
		}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", a.transportError(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", emptyReply(ProviderAnthropic)
	}
	return b.String(), nil
}

func (a *anthropicInvoker) transportError(err error) error {
	te := &common.TransportError{Provider: ProviderAnthropic, Err: err}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		te.StatusCode = apiErr.StatusCode
	}
	return te
}
