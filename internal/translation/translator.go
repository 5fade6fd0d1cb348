package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"codeberg.org/snonux/storytl/internal/dictionary"
)

var log = logging.Logger("storytl/translation")

// ErrRequestFailed is returned for every failed completion call: transport
// errors, non-success status codes and responses without a completion
var ErrRequestFailed = errors.New("translation request failed")

// Supported providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultTimeout bounds a single completion round trip
const DefaultTimeout = 120 * time.Second

// Translator translates one source string
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TranslatorFunc adapts a plain function to Translator
type TranslatorFunc func(ctx context.Context, text string) (string, error)

// Translate calls f
func (f TranslatorFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Config holds the remote completion settings. The pointer fields are
// optional sampling knobs; nil means the parameter is left out of the
// request entirely.
type Config struct {
	Provider     string
	APIURL       string
	APIKey       string
	Model        string
	Temperature  float64
	SystemPrompt string

	TopP              *float64
	TopK              *int
	MaxTokens         *int
	RepetitionPenalty *float64

	Timeout time.Duration
}

// Validate reports every missing required setting at once
func (c *Config) Validate() error {
	var missing []string
	provider := c.provider()
	if provider != ProviderOpenAI && provider != ProviderGemini {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if provider == ProviderOpenAI && c.APIURL == "" {
		missing = append(missing, "api_url")
	}
	if c.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if c.Model == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		missing = append(missing, "system_prompt")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing server settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) provider() string {
	if c.Provider == "" {
		return ProviderOpenAI
	}
	return strings.ToLower(c.Provider)
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// New creates the client for the configured provider
func New(ctx context.Context, cfg Config, dict *dictionary.Dictionary) (Translator, error) {
	if dict == nil {
		dict = dictionary.Empty()
	}

	switch cfg.provider() {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, dict)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, dict)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// requestFailed wraps a provider error so callers can match ErrRequestFailed
func requestFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrRequestFailed, err)
}
