package gemini

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/logger"

	"google.golang.org/genai"
)

// Client implements ai.Generator with the Gemini API.
type Client struct {
	ai.MetricsRecorder

	model string
	cli   *genai.Client
}

type NewClientParams struct {
	Model   string
	APIKey  string
	BaseURL string

	HTTPClient *http.Client
}

func NewClient(ctx context.Context, params NewClientParams) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     params.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: params.HTTPClient,
	}
	if params.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: params.BaseURL}
	}

	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{model: params.Model, cli: cli}, nil
}

func (c *Client) Name() string { return "gemini/" + c.model }

func (c *Client) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.NewGenerateOptions(c.model, opts...)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(options.Temperature)),
		MaxOutputTokens: int32(options.MaxTokens),
	}
	if len(options.SystemPrompts) > 0 {
		parts := make([]*genai.Part, 0, len(options.SystemPrompts))
		for _, sp := range options.SystemPrompts {
			parts = append(parts, &genai.Part{Text: sp})
		}
		config.SystemInstruction = &genai.Content{Parts: parts}
	}

	start := time.Now()
	resp, err := c.cli.Models.GenerateContent(ctx, options.Model, genai.Text(prompt), config)
	if err != nil {
		return "", classify(ctx, err)
	}

	metrics := ai.ModelMetrics{DurationMs: time.Since(start).Milliseconds()}
	if u := resp.UsageMetadata; u != nil {
		metrics.InputTokens = int(u.PromptTokenCount)
		metrics.OutputTokens = int(u.CandidatesTokenCount)
		metrics.TotalTokens = int(u.TotalTokenCount)
	}
	c.Record(metrics)
	logger.Debug("[AI] Completion finished",
		"adapter", c.Name(),
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"duration_ms", metrics.DurationMs,
	)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ai.ErrEmptyCompletion
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			text += part.Text
		}
	}
	if text == "" {
		return "", ai.ErrEmptyCompletion
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ai.NewUpstreamError(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return ai.NewUpstreamError(apiErrPtr.Code, apiErrPtr.Message)
	}
	return ai.ClassifyError(ctx, err)
}
