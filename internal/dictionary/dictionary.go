package dictionary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Dictionary maps source-language proper nouns to their canonical English
// spelling. It is immutable once loaded.
type Dictionary struct {
	terms map[string]string
	block string
}

// Load reads a JSON object of the form {"ミホノブルボン": "Mihono Bourbon", ...}
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	dict, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", path, err)
	}
	return dict, nil
}

// Parse builds a Dictionary from raw JSON. The prompt block keeps the
// source key order, compacted onto a single line.
func Parse(data []byte) (*Dictionary, error) {
	terms := make(map[string]string)
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, err
	}

	return &Dictionary{
		terms: terms,
		block: compact.String(),
	}, nil
}

// Empty returns a dictionary without any terms
func Empty() *Dictionary {
	return &Dictionary{terms: map[string]string{}, block: "{}"}
}

// Lookup returns the canonical spelling for a source term
func (d *Dictionary) Lookup(source string) (string, bool) {
	target, ok := d.terms[source]
	return target, ok
}

// Len returns the number of terms
func (d *Dictionary) Len() int {
	return len(d.terms)
}

// PromptBlock returns the serialized dictionary exactly as it is embedded
// into the system instruction
func (d *Dictionary) PromptBlock() string {
	return d.block
}
