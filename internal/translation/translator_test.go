package translation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/storytl/internal/dictionary"
)

func testDictionary(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	dict, err := dictionary.Parse([]byte(`{"ミホノブルボン": "Mihono Bourbon"}`))
	require.NoError(t, err)
	return dict
}

// completionServer answers chat completion requests with reply and records
// the decoded request bodies
func completionServer(t *testing.T, reply string, bodies *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(data, &body))
		*bodies = append(*bodies, body)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"choices": []any{},
		}
		if reply != "" {
			resp["choices"] = []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig(url string) Config {
	return Config{
		Provider:     ProviderOpenAI,
		APIURL:       url + "/v1/chat/completions",
		APIKey:       "test-key",
		Model:        "test-model",
		Temperature:  0,
		SystemPrompt: "You translate game dialogue.",
	}
}

func TestOpenAIClient_Translate(t *testing.T) {
	var bodies []map[string]any
	srv := completionServer(t, "Hello\n### Response:\nignored", &bodies)

	client, err := NewOpenAIClient(baseConfig(srv.URL), testDictionary(t))
	require.NoError(t, err)

	out, err := client.Translate(context.Background(), "こんにちは")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n### Response:\nignored", out, "output is returned unmodified")

	require.Len(t, bodies, 1)
	body := bodies[0]
	assert.Equal(t, "test-model", body["model"])
	assert.Equal(t, float64(0), body["temperature"], "temperature is always sent")
	for _, key := range []string{"top_p", "top_k", "max_tokens", "repetition_penalty"} {
		assert.NotContains(t, body, key)
	}

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "You translate game dialogue.")
	assert.Contains(t, system["content"], `{"ミホノブルボン":"Mihono Bourbon"}`)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "こんにちは", user["content"])
}

func TestOpenAIClient_OptionalParams(t *testing.T) {
	var bodies []map[string]any
	srv := completionServer(t, "Hello", &bodies)

	topP, topK, maxTokens, penalty := 0.9, 40, 256, 1.1
	cfg := baseConfig(srv.URL)
	cfg.Temperature = 0.7
	cfg.TopP = &topP
	cfg.TopK = &topK
	cfg.MaxTokens = &maxTokens
	cfg.RepetitionPenalty = &penalty

	client, err := NewOpenAIClient(cfg, nil)
	require.NoError(t, err)
	_, err = client.Translate(context.Background(), "こんにちは")
	require.NoError(t, err)

	require.Len(t, bodies, 1)
	body := bodies[0]
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	assert.InDelta(t, 0.9, body["top_p"], 1e-9)
	assert.Equal(t, float64(40), body["top_k"])
	assert.Equal(t, float64(256), body["max_tokens"])
	assert.InDelta(t, 1.1, body["repetition_penalty"], 1e-9)
}

func TestOpenAIClient_PostsToConfiguredURL(t *testing.T) {
	tests := []struct {
		name      string
		suffix    string
		wantPath  string
		wantQuery string
	}{
		{name: "chat completions", suffix: "/v1/chat/completions", wantPath: "/v1/chat/completions"},
		{name: "custom path", suffix: "/api/v1/generate", wantPath: "/api/v1/generate"},
		{name: "legacy completions", suffix: "/v1/completions", wantPath: "/v1/completions"},
		{name: "bare host", suffix: "", wantPath: "/"},
		{name: "query parameters", suffix: "/openai/deployments/tl/chat/completions?api-version=2024-02-01",
			wantPath: "/openai/deployments/tl/chat/completions", wantQuery: "api-version=2024-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			var body map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				if gotPath == "" {
					gotPath = "/"
				}
				gotQuery = r.URL.RawQuery
				_ = json.NewDecoder(r.Body).Decode(&body)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello"}}]}`))
			}))
			defer srv.Close()

			cfg := baseConfig(srv.URL)
			cfg.APIURL = srv.URL + tt.suffix

			client, err := NewOpenAIClient(cfg, nil)
			require.NoError(t, err)
			out, err := client.Translate(context.Background(), "こんにちは")
			require.NoError(t, err)

			assert.Equal(t, "Hello", out)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.wantQuery, gotQuery)
			assert.Equal(t, "test-model", body["model"])
		})
	}
}

func TestNewOpenAIClient_InvalidURL(t *testing.T) {
	for _, apiURL := range []string{"localhost:8080/v1", "://broken", "/v1/chat/completions"} {
		cfg := baseConfig("")
		cfg.APIURL = apiURL
		_, err := NewOpenAIClient(cfg, nil)
		assert.Error(t, err, apiURL)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	var bodies []map[string]any
	srv := completionServer(t, "", &bodies)

	client, err := NewOpenAIClient(baseConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = client.Translate(context.Background(), "こんにちは")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "model crashed", "type": "server_error"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(baseConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = client.Translate(context.Background(), "こんにちは")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.Contains(t, err.Error(), "500")
}

func TestOpenAIClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewOpenAIClient(baseConfig(url), nil)
	require.NoError(t, err)

	_, err = client.Translate(context.Background(), "こんにちは")
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestNewOpenAIClient_NoAPIKey(t *testing.T) {
	cfg := baseConfig("http://localhost")
	cfg.APIKey = ""

	_, err := NewOpenAIClient(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, "API key not found", err.Error())
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://localhost:5000/v1/chat/completions", "http://localhost:5000/v1"},
		{"http://localhost:5000/v1/chat/completions/", "http://localhost:5000/v1"},
		{"https://api.openai.com/v1", "https://api.openai.com/v1"},
		{" https://api.openai.com/v1/ ", "https://api.openai.com/v1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseURL(tt.input), tt.input)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"api_url", "api_key", "model", "system_prompt"} {
		assert.Contains(t, err.Error(), key)
	}

	cfg = baseConfig("http://localhost")
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "gemini"
	cfg.APIURL = ""
	assert.NoError(t, cfg.Validate(), "gemini has a default endpoint")

	cfg.Provider = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt("  Translate to English.  ", testDictionary(t))

	assert.True(t, strings.HasPrefix(prompt, "Translate to English. "))
	assert.Contains(t, prompt, `"ミホノブルボン": "Mihono Bourbon"`)
	assert.Contains(t, prompt, "\n"+`{"ミホノブルボン":"Mihono Bourbon"}`+"\n")
	assert.True(t, strings.HasSuffix(prompt, "Translate the text below."))

	empty := BuildSystemPrompt("Base.", nil)
	assert.Contains(t, empty, "\n{}\n")
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := baseConfig("http://localhost")
	cfg.Provider = "carrier-pigeon"

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestGeminiClient_Translate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "Hello"}]}}]}`))
	}))
	defer srv.Close()

	cfg := baseConfig(srv.URL)
	cfg.Provider = ProviderGemini
	cfg.APIURL = srv.URL + "/"

	tr, err := New(context.Background(), cfg, testDictionary(t))
	require.NoError(t, err)

	out, err := tr.Translate(context.Background(), "こんにちは")
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
	assert.Contains(t, captured, "systemInstruction")
	assert.Contains(t, captured, "contents")
}

func TestOpenAIClient_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	client, err := NewOpenAIClient(Config{
		APIURL:       "https://api.openai.com/v1/chat/completions",
		APIKey:       apiKey,
		Model:        "gpt-4o-mini",
		Temperature:  0,
		SystemPrompt: "Translate the Japanese game dialogue into English. Reply with the translation only.",
	}, nil)
	require.NoError(t, err)

	out, err := client.Translate(context.Background(), "こんにちは")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	t.Logf("Translation of 'こんにちは': %s", out)
}
