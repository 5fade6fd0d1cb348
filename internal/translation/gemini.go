package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"codeberg.org/snonux/storytl/internal/dictionary"
)

// GeminiClient translates through the Gemini API
type GeminiClient struct {
	client       *genai.Client
	config       Config
	systemPrompt string
}

// NewGeminiClient creates a Gemini client. cfg.APIURL overrides the
// default endpoint when set.
func NewGeminiClient(ctx context.Context, cfg Config, dict *dictionary.Dictionary) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not found")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.timeout()},
	}
	if cfg.APIURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.APIURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if cfg.RepetitionPenalty != nil {
		log.Warnw("repetition_penalty is not supported by gemini and is ignored")
	}

	return &GeminiClient{
		client:       client,
		config:       cfg,
		systemPrompt: BuildSystemPrompt(cfg.SystemPrompt, dict),
	}, nil
}

// Translate sends text as user content with the dictionary prompt as system
// instruction and returns the response text
func (g *GeminiClient) Translate(ctx context.Context, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(text), g.generateConfig())
	if err != nil {
		return "", requestFailed(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", requestFailed(errors.New("no candidates in response"))
	}
	return resp.Text(), nil
}

func (g *GeminiClient) generateConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.config.Temperature)),
	}
	if g.config.TopP != nil {
		gc.TopP = genai.Ptr(float32(*g.config.TopP))
	}
	if g.config.TopK != nil {
		gc.TopK = genai.Ptr(float32(*g.config.TopK))
	}
	if g.config.MaxTokens != nil {
		gc.MaxOutputTokens = int32(*g.config.MaxTokens)
	}
	return gc
}
