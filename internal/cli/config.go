package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/storytl/internal/translation"
)

var log = logging.Logger("storytl/cli")

// EnvPrefix prefixes every environment override, e.g. STORYTL_SERVER_MODEL
const EnvPrefix = "STORYTL"

// Configuration keys
const (
	KeyProvider          = "server.provider"
	KeyAPIURL            = "server.api_url"
	KeyAPIKey            = "server.api_key"
	KeyModel             = "server.model"
	KeyTemperature       = "server.temperature"
	KeySystemPrompt      = "server.system_prompt"
	KeyTopP              = "server.top_p"
	KeyTopK              = "server.top_k"
	KeyMaxTokens         = "server.max_tokens"
	KeyRepetitionPenalty = "server.repetition_penalty"
	KeyTimeout           = "server.timeout"
	KeyBreakerFailures   = "server.breaker_failures"
	KeyDictionary        = "paths.dictionary"
	KeyCharSource        = "paths.char_source"
	KeyCharDict          = "paths.char_dict"
	KeyFixups            = "paths.fixups"
	KeyRoots             = "corpus.roots"
	KeyScaffoldMarker    = "postprocess.scaffold_marker"
	KeyWhitespace        = "postprocess.whitespace"
	KeyMonologue         = "pipeline.monologue_sentinel"
	KeyLogLevel          = "log.level"
)

// SetDefaults registers the defaults of every optional setting. The
// sampling knobs have no default: unset means "leave out of the request".
func SetDefaults() {
	viper.SetDefault(KeyProvider, translation.ProviderOpenAI)
	viper.SetDefault(KeyTimeout, translation.DefaultTimeout.String())
	viper.SetDefault(KeyBreakerFailures, translation.DefaultBreakerFailures)
	viper.SetDefault(KeyDictionary, "dictionary.json")
	viper.SetDefault(KeyCharSource, "character_system_text.json")
	viper.SetDefault(KeyCharDict, "character_system_text_dict.json")
	viper.SetDefault(KeyRoots, []string{filepath.Join("raw", "story"), filepath.Join("raw", "home")})
	viper.SetDefault(KeyScaffoldMarker, "### Response:")
	viper.SetDefault(KeyWhitespace, "single-pass")
	viper.SetDefault(KeyMonologue, "Monologue")
	viper.SetDefault(KeyLogLevel, "warn")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// Secrets may live in a .env file next to the corpus
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnw("failed to load .env", "error", err)
	}

	SetDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config.toml in the working directory, then in the user config dir
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "storytl"))
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	// Environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		log.Infow("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// GetAPIKey retrieves the API key from environment or config
func GetAPIKey() string {
	// First check environment variables
	if key := os.Getenv(EnvPrefix + "_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString(KeyAPIKey)
}

// LoadTranslationConfig assembles the remote completion settings. Every
// missing required setting is reported in one error.
func LoadTranslationConfig() (translation.Config, error) {
	cfg := translation.Config{
		Provider:          viper.GetString(KeyProvider),
		APIURL:            viper.GetString(KeyAPIURL),
		APIKey:            GetAPIKey(),
		Model:             viper.GetString(KeyModel),
		Temperature:       viper.GetFloat64(KeyTemperature),
		SystemPrompt:      viper.GetString(KeySystemPrompt),
		TopP:              optionalFloat(KeyTopP),
		TopK:              optionalInt(KeyTopK),
		MaxTokens:         optionalInt(KeyMaxTokens),
		RepetitionPenalty: optionalFloat(KeyRepetitionPenalty),
		Timeout:           durationSetting(KeyTimeout, translation.DefaultTimeout),
	}

	var errs []error
	if !viper.IsSet(KeyTemperature) {
		errs = append(errs, errors.New("missing server setting: temperature"))
	}
	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

func optionalFloat(key string) *float64 {
	if !viper.IsSet(key) || viper.Get(key) == nil {
		return nil
	}
	v := viper.GetFloat64(key)
	return &v
}

func optionalInt(key string) *int {
	if !viper.IsSet(key) || viper.Get(key) == nil {
		return nil
	}
	v := viper.GetInt(key)
	return &v
}

// durationSetting accepts "90s" style strings as well as plain numbers,
// which are taken as seconds
func durationSetting(key string, def time.Duration) time.Duration {
	switch v := viper.Get(key).(type) {
	case nil:
		return def
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return def
}
