package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.json")
	content := `{
    "ミホノブルボン": "Mihono Bourbon",
    "トレーナー": "Trainer",
    "<tag>": "A & B"
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	dict, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, dict.Len())
	target, ok := dict.Lookup("ミホノブルボン")
	assert.True(t, ok)
	assert.Equal(t, "Mihono Bourbon", target)

	_, ok = dict.Lookup("ウマ娘")
	assert.False(t, ok)

	// key order and literal characters survive, whitespace does not
	assert.Equal(t, `{"ミホノブルボン":"Mihono Bourbon","トレーナー":"Trainer","<tag>":"A & B"}`, dict.PromptBlock())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/dictionary.json")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": `), 0644))
	_, err = Load(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a", "b"]`), 0644))
	_, err = Load(path)
	assert.Error(t, err, "a dictionary must be a JSON object")
}

func TestEmpty(t *testing.T) {
	dict := Empty()
	assert.Equal(t, 0, dict.Len())
	assert.Equal(t, "{}", dict.PromptBlock())
}
