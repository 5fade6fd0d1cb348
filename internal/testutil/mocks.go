package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockTranslator mocks the completion boundary. Unknown inputs are
// answered with "EN:" plus the input.
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error

	mu    sync.Mutex
	calls []string
}

// NewMockTranslator creates a mock answering from translations
func NewMockTranslator(translations map[string]string) *MockTranslator {
	return &MockTranslator{
		Translations: translations,
		Errors:       make(map[string]error),
	}
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return "EN:" + text, nil
}

// Calls returns the source strings seen so far, in order
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how often text was requested
func (m *MockTranslator) CallCount(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == text {
			n++
		}
	}
	return n
}

// NewCompletionServer starts an OpenAI-compatible fake that answers every
// chat completion with reply and lists the given model ids on /models
func NewCompletionServer(t *testing.T, reply string, models ...string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"id":     "cmpl-test",
			"object": "chat.completion",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		data := make([]any, 0, len(models))
		for _, id := range models {
			data = append(data, map[string]any{"id": id, "object": "model", "owned_by": "test"})
		}
		writeJSON(w, map[string]any{"object": "list", "data": data})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
