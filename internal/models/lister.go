package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/storytl/internal/translation"
)

// Lister handles listing available models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister for apiURL; an empty apiURL means
// the public OpenAI endpoint
func NewLister(apiKey, apiURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if apiURL != "" {
		config.BaseURL = translation.BaseURL(apiURL)
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// Models returns the model ids sorted by name
func (l *Lister) Models(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("API key not found. Set STORYTL_API_KEY or OPENAI_API_KEY, or server.api_key in config.toml")
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		ids = append(ids, model.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// IsTextModel guesses whether id can serve chat completions
func IsTextModel(id string) bool {
	lower := strings.ToLower(id)
	for _, marker := range []string{"tts", "whisper", "dall-e", "embedding", "moderation", "audio", "image", "transcribe"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// ListAvailableModels prints the models, text models first
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	ids, err := l.Models(ctx)
	if err != nil {
		return err
	}

	textModels := []string{}
	otherModels := []string{}
	for _, id := range ids {
		if IsTextModel(id) {
			textModels = append(textModels, id)
		} else {
			otherModels = append(otherModels, id)
		}
	}

	fmt.Fprintln(w, "Text Models (usable for translation):")
	if len(textModels) == 0 {
		fmt.Fprintln(w, "  No text models found")
	}
	for _, id := range textModels {
		fmt.Fprintf(w, "  %s\n", id)
	}

	if len(otherModels) > 0 {
		fmt.Fprintln(w, "\nOther Models:")
		for _, id := range otherModels {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	return nil
}
