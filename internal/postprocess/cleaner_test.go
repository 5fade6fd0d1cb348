package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Hello", want: "Hello"},
		{name: "scaffold echo", input: "Hello\n### Response:\nignored", want: "Hello"},
		{name: "scaffold at start", input: "### Response: Hello", want: ""},
		{name: "newlines folded", input: "Good\nmorning,\nTrainer.", want: "Good morning, Trainer."},
		{name: "windows newlines", input: "Good\r\nmorning", want: "Good morning"},
		{name: "crlf leaves no carriage return", input: "a\r\nb\r\n", want: "a b"},
		{name: "double space collapsed", input: "Hi  there", want: "Hi there"},
		{name: "blank line becomes one space", input: "Hi\n\nthere", want: "Hi there"},
		{name: "surrounding whitespace", input: "  \n Hello \n", want: "Hello"},
		{name: "triple space keeps one double", input: "a   b", want: "a  b"},
		{name: "marker split across lines", input: "Hello ###\nResponse: more", want: "Hello"},
		{name: "bare hash kept", input: "Chapter ### One", want: "Chapter ### One"},
		{name: "empty", input: "", want: ""},
	}

	c := NewCleaner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Clean(tt.input))
		})
	}
}

func TestClean_FullWhitespace(t *testing.T) {
	c := Cleaner{ScaffoldMarker: DefaultScaffoldMarker, Whitespace: WhitespaceFull}

	assert.Equal(t, "a b", c.Clean("a   b"))
	assert.Equal(t, "a b c", c.Clean("a \n\n b      c"))
}

func TestClean_NoMarker(t *testing.T) {
	c := Cleaner{Whitespace: WhitespaceSinglePass}
	assert.Equal(t, "Hello ### Response: world", c.Clean("Hello\n### Response:\nworld"))
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello",
		"Hello\n### Response:\nignored",
		"Good\nmorning,\nTrainer.",
		"Hi  there",
		"  leading and trailing  ",
		"###\nResponse: echoed",
		"Hello ###  Response: twice",
		"a\tb",
		"ウマ娘　です",
		"",
	}

	modes := []WhitespaceMode{WhitespaceSinglePass, WhitespaceFull}
	for _, mode := range modes {
		c := Cleaner{ScaffoldMarker: DefaultScaffoldMarker, Whitespace: mode}
		for _, in := range inputs {
			once := c.Clean(in)
			assert.Equal(t, once, c.Clean(once), "mode %s input %q", mode, in)
		}
	}

	// runs of three or more spaces only converge in one pass in full mode
	full := Cleaner{ScaffoldMarker: DefaultScaffoldMarker, Whitespace: WhitespaceFull}
	for _, in := range []string{"a   b", "a \n\n b", "x          y"} {
		once := full.Clean(in)
		assert.Equal(t, once, full.Clean(once), "input %q", in)
	}
}

func TestParseWhitespaceMode(t *testing.T) {
	mode, err := ParseWhitespaceMode("")
	require.NoError(t, err)
	assert.Equal(t, WhitespaceSinglePass, mode)

	mode, err = ParseWhitespaceMode(" Full ")
	require.NoError(t, err)
	assert.Equal(t, WhitespaceFull, mode)

	_, err = ParseWhitespaceMode("aggressive")
	assert.Error(t, err)
}

func TestTruncateAtHash(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		changed bool
	}{
		{"Hello ### Response: junk", "Hello", true},
		{"Hello\n###", "Hello", true},
		{"###", "", true},
		{"No markers here", "No markers here", false},
		{"Only ## two", "Only ## two", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, changed := TruncateAtHash(tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, tt.changed, changed, "input %q", tt.input)

		// a second pass never changes anything
		again, changedAgain := TruncateAtHash(got)
		assert.Equal(t, got, again)
		assert.False(t, changedAgain)
	}
}
