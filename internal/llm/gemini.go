package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/immowert/internal/common"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiInvoker calls the Gemini API through the genai SDK.
type geminiInvoker struct {
	client *genai.Client
	cfg    Config
}

func newGeminiInvoker(cfg Config) (*geminiInvoker, error) {
	if err := cfg.requireKey(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, common.NewConfigurationError("llm.provider",
			fmt.Errorf("failed to create GenAI client: %w", err))
	}

	return &geminiInvoker{client: client, cfg: cfg}, nil
}

// Invoke generates content for a single user turn.
func (g *geminiInvoker) Invoke(ctx context.Context, system, user string, opts CallOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.timeout())
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens:   int32(opts.MaxTokens),
	}
	if opts.WebSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	contents := []*genai.Content{
		genai.NewContentFromText(user, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return "", g.transportError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", emptyReply(ProviderGemini)
	}
	return text, nil
}

func (g *geminiInvoker) transportError(err error) error {
	te := &common.TransportError{Provider: ProviderGemini, Err: err}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		te.StatusCode = apiErr.Code
	case errors.As(err, &apiErrPtr):
		te.StatusCode = apiErrPtr.Code
	}
	return te
}
