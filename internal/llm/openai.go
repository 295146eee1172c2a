package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4.1"

// openAIInvoker calls the OpenAI Responses API.
type openAIInvoker struct {
	client openai.Client
	cfg    Config
}

func newOpenAIInvoker(cfg Config) (*openAIInvoker, error) {
	if err := cfg.requireKey(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
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

	return &openAIInvoker{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

// Invoke creates one response and returns its aggregated output text.
func (o *openAIInvoker) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.timeout())
	defer cancel()

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(o.cfg.Model),
		Instructions: openai.String(system),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(user),
		},
		MaxOutputTokens: openai.Int(int64(opts.MaxTokens)),
		Temperature:     openai.Float(opts.Temperature),
	}
	if opts.WebSearch {
		params.Tools = []responses.ToolUnionParam{
			responses.ToolParamOfWebSearchPreview(responses.WebSearchToolTypeWebSearchPreview),
		}
	}

	result, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", o.transportError(err)
	}

	text := result.OutputText()
	if strings.TrimSpace(text) == "" {
		return "", emptyReply(ProviderOpenAI)
	}
	return text, nil
}

func (o *openAIInvoker) transportError(err error) error {
	te := &common.TransportError{Provider: ProviderOpenAI, Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		te.StatusCode = apiErr.StatusCode
	}
	return te
}
