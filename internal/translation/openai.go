package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/storytl/internal/dictionary"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	client       *openai.Client
	config       Config
	systemPrompt string
}

// NewOpenAIClient creates a client that POSTs every completion to
// cfg.APIURL exactly as configured, query string included
func NewOpenAIClient(cfg Config, dict *dictionary.Dictionary) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not found")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model not configured")
	}

	doer := &samplingDoer{
		client: &http.Client{Timeout: cfg.timeout()},
		params: cfg.samplingParams(),
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		endpoint, err := url.Parse(strings.TrimSpace(cfg.APIURL))
		if err != nil {
			return nil, fmt.Errorf("invalid api_url %q: %w", cfg.APIURL, err)
		}
		if endpoint.Scheme == "" || endpoint.Host == "" {
			return nil, fmt.Errorf("invalid api_url %q: scheme and host required", cfg.APIURL)
		}
		clientConfig.BaseURL = BaseURL(cfg.APIURL)
		doer.endpoint = endpoint
	}
	clientConfig.HTTPClient = doer

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(clientConfig),
		config:       cfg,
		systemPrompt: BuildSystemPrompt(cfg.SystemPrompt, dict),
	}, nil
}

// BaseURL strips the endpoint path from a full chat completions URL. Only
// the model listing derives its URL from it.
func BaseURL(apiURL string) string {
	u := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return strings.TrimRight(u, "/")
}

// Translate sends text as the user turn and returns the first choice verbatim
func (c *OpenAIClient) Translate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: float32(c.config.Temperature),
	}

	log.Debugw("completion request", "model", c.config.Model, "chars", len(text))
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", requestFailed(fmt.Errorf("status %d: %w", apiErr.HTTPStatusCode, err))
		}
		return "", requestFailed(err)
	}

	if len(resp.Choices) == 0 {
		return "", requestFailed(errors.New("no choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// samplingParams collects the body members go-openai cannot express
// faithfully: temperature 0 and top_p 0 would be dropped by omitempty, and
// top_k and repetition_penalty have no request field at all.
func (c *Config) samplingParams() map[string]any {
	params := map[string]any{"temperature": c.Temperature}
	if c.TopP != nil {
		params["top_p"] = *c.TopP
	}
	if c.TopK != nil {
		params["top_k"] = *c.TopK
	}
	if c.MaxTokens != nil {
		params["max_tokens"] = *c.MaxTokens
	}
	if c.RepetitionPenalty != nil {
		params["repetition_penalty"] = *c.RepetitionPenalty
	}
	return params
}

// samplingDoer sends completion POSTs to the configured endpoint and
// merges the sampling parameters into their JSON bodies
type samplingDoer struct {
	client *http.Client
	params map[string]any
	// endpoint replaces the URL go-openai builds; nil keeps it
	endpoint *url.URL
}

func (d *samplingDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil {
		return d.client.Do(req)
	}

	if d.endpoint != nil {
		endpoint := *d.endpoint
		req.URL = &endpoint
		req.Host = endpoint.Host
	}
	if len(d.params) == 0 {
		return d.client.Do(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	body, err = mergeParams(body, d.params)
	if err != nil {
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return d.client.Do(req)
}

func mergeParams(body []byte, params map[string]any) ([]byte, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding request body: %w", err)
	}
	for key, value := range params {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		payload[key] = raw
	}
	return json.Marshal(payload)
}
