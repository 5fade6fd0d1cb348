package translation

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestTranslationCache(t *testing.T) {
	cache := NewTranslationCache()

	// Test empty cache
	if _, found := cache.Get("トレーナー"); found {
		t.Error("Expected not found in empty cache")
	}

	cache.Add("トレーナー", "Trainer")
	cache.Add("ウマ娘", "Uma Musume")

	translation, found := cache.Get("トレーナー")
	if !found || translation != "Trainer" {
		t.Errorf("Expected 'Trainer', got '%s'", translation)
	}

	// Test overwriting
	cache.Add("トレーナー", "Trainer-san")
	translation, _ = cache.Get("トレーナー")
	if translation != "Trainer-san" {
		t.Errorf("Expected 'Trainer-san', got '%s'", translation)
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}
}

func TestTranslationCache_GetAll(t *testing.T) {
	cache := NewTranslationCache()
	cache.Add("トレーナー", "Trainer")
	cache.Add("ウマ娘", "Uma Musume")

	all := cache.GetAll()
	expected := map[string]string{
		"トレーナー": "Trainer",
		"ウマ娘":   "Uma Musume",
	}
	if !reflect.DeepEqual(all, expected) {
		t.Errorf("GetAll() = %v, want %v", all, expected)
	}

	// Modifying the returned map must not touch the cache
	all["new"] = "value"
	if _, found := cache.Get("new"); found {
		t.Error("GetAll() should return a copy")
	}
}

func TestCachingTranslator(t *testing.T) {
	calls := 0
	next := TranslatorFunc(func(ctx context.Context, text string) (string, error) {
		calls++
		if text == "broken" {
			return "", errors.New("boom")
		}
		return "EN:" + text, nil
	})

	ct := NewCachingTranslator(next, nil)
	for i := 0; i < 3; i++ {
		out, err := ct.Translate(context.Background(), "トレーナー")
		if err != nil || out != "EN:トレーナー" {
			t.Fatalf("Translate() = %q, %v", out, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	// Failures are not cached
	for i := 0; i < 2; i++ {
		if _, err := ct.Translate(context.Background(), "broken"); err == nil {
			t.Error("expected error")
		}
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if ct.Cache().Len() != 1 {
		t.Errorf("cache size = %d, want 1", ct.Cache().Len())
	}
}
