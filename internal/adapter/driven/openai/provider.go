// Package openai implements the ReviewProvider port using the openai-go SDK.
// Any OpenAI-compatible chat completions endpoint can be targeted via BaseURL.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
	"github.com/ericfisherdev/aireviewer/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewProvider = (*Provider)(nil)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 2048
	schemaName       = "code_review"
)

// Config configures the OpenAI provider.
type Config struct {
	APIKey    string
	BaseURL   string // Optional: for OpenAI-compatible endpoints.
	Model     string
	MaxTokens int
	// Temperature is nil for the model default; an explicit 0 is deterministic.
	Temperature *float64
}

// Provider sends code to a chat completions endpoint and decodes the
// structured review it returns.
type Provider struct {
	client    oai.Client
	model     string
	maxTokens int
	temp      *float64
	schema    any
}

// NewProvider creates a Provider. The SDK's built-in retries are disabled:
// a failed call is reported to the caller as-is.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	m := cfg.Model
	if m == "" {
		m = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:    oai.NewClient(opts...),
		model:     m,
		maxTokens: maxTokens,
		temp:      cfg.Temperature,
		schema:    generateSchema(),
	}, nil
}

// Name implements driven.ReviewProvider.
func (p *Provider) Name() string { return "openai" }

// Model returns the configured model name.
func (p *Provider) Model() string { return p.model }

// Review implements driven.ReviewProvider.
func (p *Provider) Review(ctx context.Context, code string) (model.ReviewResult, error) {
	params := oai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(buildUserPrompt(code)),
		},
		MaxTokens: oai.Int(int64(p.maxTokens)),
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &oai.ResponseFormatJSONSchemaParam{
				JSONSchema: oai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: oai.String("Structured code review"),
					Schema:      p.schema,
					Strict:      oai.Bool(true),
				},
			},
		},
	}
	if p.temp != nil {
		params.Temperature = oai.Float(*p.temp)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return model.ReviewResult{}, fmt.Errorf("%w: no choices in response", model.ErrMalformedReview)
	}

	choice := resp.Choices[0]
	slog.DebugContext(ctx, "review completion received",
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", choice.FinishReason)

	if choice.Message.Refusal != "" {
		return model.ReviewResult{}, fmt.Errorf("%w: model refused: %s", model.ErrMalformedReview, choice.Message.Refusal)
	}

	result, err := parseReview(choice.Message.Content)
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("parsing review (finish_reason=%s): %w", choice.FinishReason, err)
	}
	return result, nil
}
