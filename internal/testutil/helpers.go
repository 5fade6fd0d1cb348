package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestCorpus creates a temporary corpus with the conventional
// story and home roots and returns its base directory
func CreateTestCorpus(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()

	dirs := []string{
		filepath.Join("raw", "story"),
		filepath.Join("raw", "home"),
	}

	for _, dir := range dirs {
		path := filepath.Join(tempDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("Failed to create test directory %s: %v", path, err)
		}
	}

	return tempDir
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateJSONFile marshals v with four-space indentation into path
func CreateJSONFile(t *testing.T, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		t.Fatalf("Failed to marshal %s: %v", path, err)
	}
	CreateTestFile(t, path, data)
}

// ReadJSONFile decodes the JSON document at path into a generic value
func ReadJSONFile(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
	return v
}

// EntryField returns member key of the i-th entry of a decoded dialogue file
func EntryField(t *testing.T, doc map[string]any, i int, key string) any {
	t.Helper()

	entries, ok := doc["text"].([]any)
	if !ok || i >= len(entries) {
		t.Fatalf("document has no entry %d", i)
	}
	entry, ok := entries[i].(map[string]any)
	if !ok {
		t.Fatalf("entry %d is not an object", i)
	}
	return entry[key]
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
