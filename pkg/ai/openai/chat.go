package openai

import (
	"context"
	"errors"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/logger"

	"github.com/openai/openai-go/v3"
)

// GenerateCompletion sends a single-turn prompt to the chat model and
// returns the generated completion as plain text.
//
// Example:
//
//	resp, err := client.GenerateCompletion(ctx, "Analyze this article...")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(resp)
func (c *Client) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.NewGenerateOptions(c.model, opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{}
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	body := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(options.Model),
		Messages:    msgs,
		Temperature: openai.Float(options.Temperature),
		MaxTokens:   openai.Int(int64(options.MaxTokens)),
	}

	start := time.Now()
	response, err := c.ChatClient.Chat.Completions.New(ctx, body)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			raw := apiErr.RawJSON()
			if raw == "" {
				raw = apiErr.Error()
			}
			return "", ai.NewUpstreamError(apiErr.StatusCode, raw)
		}
		return "", ai.ClassifyError(ctx, err)
	}

	metrics := ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	c.Record(metrics)
	logger.Debug("[AI] Completion finished",
		"adapter", c.Name(),
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"duration_ms", metrics.DurationMs,
	)

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", ai.ErrEmptyCompletion
	}
	return response.Choices[0].Message.Content, nil
}
