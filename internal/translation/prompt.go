package translation

import (
	"strings"

	"codeberg.org/snonux/storytl/internal/dictionary"
)

const dictionaryPreamble = `Refer to the dictionary below, a JSON object ordered japanese_text : english_text. ` +
	`For example "ミホノブルボン": "Mihono Bourbon" means ミホノブルボン is always translated as Mihono Bourbon.`

// BuildSystemPrompt joins the configured base instruction, the dictionary
// explanation and the serialized dictionary into one system message
func BuildSystemPrompt(base string, dict *dictionary.Dictionary) string {
	if dict == nil {
		dict = dictionary.Empty()
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(base))
	b.WriteString(" ")
	b.WriteString(dictionaryPreamble)
	b.WriteString("\n")
	b.WriteString(dict.PromptBlock())
	b.WriteString("\nTranslate the text below.")
	return b.String()
}
