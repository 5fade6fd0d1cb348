package models

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"codeberg.org/snonux/storytl/internal/testutil"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "")

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestListAvailableModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "")

	err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	if !strings.HasPrefix(err.Error(), "API key not found") {
		t.Errorf("Expected 'API key not found' error, got: %v", err)
	}
}

func TestListAvailableModels_FakeEndpoint(t *testing.T) {
	srv := testutil.NewCompletionServer(t, "", "whisper-1", "qwen2.5-14b-instruct", "gpt-4o-mini", "tts-1")

	lister := NewLister("test-key", srv.URL+"/v1/chat/completions")
	ids, err := lister.Models(context.Background())
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}

	want := []string{"gpt-4o-mini", "qwen2.5-14b-instruct", "tts-1", "whisper-1"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("Models() = %v, want %v", ids, want)
	}

	var buf bytes.Buffer
	if err := lister.ListAvailableModels(context.Background(), &buf); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}
	out := buf.String()
	textIdx := strings.Index(out, "qwen2.5-14b-instruct")
	otherIdx := strings.Index(out, "Other Models:")
	if textIdx < 0 || otherIdx < 0 || textIdx > otherIdx {
		t.Errorf("unexpected listing:\n%s", out)
	}
	if !strings.Contains(out[otherIdx:], "whisper-1") {
		t.Errorf("whisper-1 should be listed under other models:\n%s", out)
	}
}

func TestIsTextModel(t *testing.T) {
	tests := map[string]bool{
		"gpt-4o-mini":            true,
		"text-embedding-3-small": false,
		"tts-1-hd":               false,
		"dall-e-3":               false,
		"llama-3-8b":             true,
	}
	for id, want := range tests {
		if got := IsTextModel(id); got != want {
			t.Errorf("IsTextModel(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestListAvailableModels_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	lister := NewLister(apiKey, "")
	if err := lister.ListAvailableModels(context.Background(), &bytes.Buffer{}); err != nil {
		t.Errorf("ListAvailableModels failed: %v", err)
	}
}
