package ollama

import (
	"context"
	"errors"

	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/logger"

	"github.com/ollama/ollama/api"
)

// defaultContext is Ollama's default context window. Larger prompts get
// num_ctx raised so the article is not silently cut.
const defaultContext = 4096

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *Client) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.NewGenerateOptions(c.model, opts...)

	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": options.Temperature,
			"num_predict": options.MaxTokens,
		},
	}

	promptTokens := ai.CountTokens(prompt)
	if needed := promptTokens + options.MaxTokens; needed > defaultContext {
		req.Options["num_ctx"] = needed
	}
	logger.Debug("[AI] Sending prompt", "adapter", c.Name(), "prompt_tokens", promptTokens)

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			body := statusErr.ErrorMessage
			if body == "" {
				body = statusErr.Status
			}
			return "", ai.NewUpstreamError(statusErr.StatusCode, body)
		}
		return "", ai.ClassifyError(ctx, err)
	}

	metrics := ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	}
	c.Record(metrics)
	logger.Debug("[AI] Completion finished",
		"adapter", c.Name(),
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"duration_ms", metrics.DurationMs,
	)

	if final.Message.Content == "" {
		return "", ai.ErrEmptyCompletion
	}
	return final.Message.Content, nil
}
