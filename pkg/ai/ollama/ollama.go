package ollama

import (
	"net/http"
	"net/url"

	"github.com/lumen-atj/lumen/backend/pkg/ai"

	"github.com/ollama/ollama/api"
)

// Client implements ai.Generator against an Ollama server.
type Client struct {
	ai.MetricsRecorder

	model string

	Client *api.Client
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	Model string

	BaseURL string
	ApiKey  string
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewClient creates a new Ollama-backed generator. An empty BaseURL falls
// back to OLLAMA_HOST and then to the local default.
func NewClient(params NewClientParams) (*Client, error) {
	if params.BaseURL == "" {
		cli, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
		return &Client{model: params.Model, Client: cli}, nil
	}

	u, err := url.Parse(params.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := http.DefaultClient
	if params.ApiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.ApiKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	return &Client{
		model:  params.Model,
		Client: api.NewClient(u, httpClient),
	}, nil
}

func (c *Client) Name() string {
	return "ollama/" + c.model
}
