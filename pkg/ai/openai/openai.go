package openai

import (
	"net/http"

	"github.com/lumen-atj/lumen/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client generates completions through any OpenAI-compatible chat endpoint.
//
// A Client should be created using NewClient.
type Client struct {
	ai.MetricsRecorder

	model   string
	chatURL string

	ChatClient *openai.Client
}

// NewClientParams configures NewClient.
//
// ChatURL is the base URL of the API, empty for api.openai.com. ChatKey is
// the bearer token. HTTPClient is optional.
type NewClientParams struct {
	Model   string
	ChatURL string
	ChatKey string

	HTTPClient *http.Client
}

// NewClient creates a Client. The SDK's own retries are disabled: every
// GenerateCompletion makes exactly one request.
//
// Example:
//
//	client := openai.NewClient(openai.NewClientParams{
//		Model:   "gpt-4o-mini",
//		ChatKey: os.Getenv("AI_CHAT_KEY"),
//	})
func NewClient(params NewClientParams) *Client {
	options := []option.RequestOption{
		option.WithAPIKey(params.ChatKey),
		option.WithMaxRetries(0),
	}
	if params.ChatURL != "" {
		options = append(options, option.WithBaseURL(params.ChatURL))
	}
	if params.HTTPClient != nil {
		options = append(options, option.WithHTTPClient(params.HTTPClient))
	}

	client := openai.NewClient(options...)

	return &Client{
		model:      params.Model,
		chatURL:    params.ChatURL,
		ChatClient: &client,
	}
}

func (c *Client) Name() string {
	return "openai/" + c.model
}
