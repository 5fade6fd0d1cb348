package translation

import (
	"context"
	"sync"
)

// TranslationCache stores translations in memory for one run
type TranslationCache struct {
	mu           sync.RWMutex
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(source, translation string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.translations[source] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(source string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	translation, ok := tc.translations[source]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.translations)
}

// GetAll returns all cached translations
func (tc *TranslationCache) GetAll() map[string]string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	// Return a copy to prevent external modification
	result := make(map[string]string, len(tc.translations))
	for k, v := range tc.translations {
		result[k] = v
	}
	return result
}

// CachingTranslator answers repeated source strings from a cache. Only
// successful raw outputs are stored.
type CachingTranslator struct {
	next  Translator
	cache *TranslationCache
}

// NewCachingTranslator wraps next with cache
func NewCachingTranslator(next Translator, cache *TranslationCache) *CachingTranslator {
	if cache == nil {
		cache = NewTranslationCache()
	}
	return &CachingTranslator{next: next, cache: cache}
}

// Translate returns the cached output for text or asks the wrapped translator
func (c *CachingTranslator) Translate(ctx context.Context, text string) (string, error) {
	if out, ok := c.cache.Get(text); ok {
		log.Debugw("name cache hit", "source", text)
		return out, nil
	}
	out, err := c.next.Translate(ctx, text)
	if err != nil {
		return "", err
	}
	c.cache.Add(text, out)
	return out, nil
}

// Cache returns the underlying cache
func (c *CachingTranslator) Cache() *TranslationCache {
	return c.cache
}
