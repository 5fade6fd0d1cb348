package chardict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"codeberg.org/snonux/storytl/internal"
	"codeberg.org/snonux/storytl/internal/postprocess"
	"codeberg.org/snonux/storytl/internal/record"
	"codeberg.org/snonux/storytl/internal/translation"
)

var log = logging.Logger("storytl/chardict")

// Default file names of the corpus layout
const (
	DefaultSourceFile = "character_system_text.json"
	DefaultOutputFile = "character_system_text_dict.json"
)

// Dict maps character id to text id to text
type Dict map[string]map[string]string

// Clone returns a deep copy
func (d Dict) Clone() Dict {
	out := make(Dict, len(d))
	for charID, texts := range d {
		inner := make(map[string]string, len(texts))
		for textID, v := range texts {
			inner[textID] = v
		}
		out[charID] = inner
	}
	return out
}

// Get returns the text for a pair
func (d Dict) Get(charID, textID string) (string, bool) {
	texts, ok := d[charID]
	if !ok {
		return "", false
	}
	v, ok := texts[textID]
	return v, ok
}

// Set stores the text for a pair
func (d Dict) Set(charID, textID, value string) {
	texts, ok := d[charID]
	if !ok {
		texts = make(map[string]string)
		d[charID] = texts
	}
	texts[textID] = value
}

// Len returns the number of pairs
func (d Dict) Len() int {
	n := 0
	for _, texts := range d {
		n += len(texts)
	}
	return n
}

// Contains reports whether every pair of other is present in d with an
// identical value
func (d Dict) Contains(other Dict) bool {
	for charID, texts := range other {
		for textID, v := range texts {
			if got, ok := d.Get(charID, textID); !ok || got != v {
				return false
			}
		}
	}
	return true
}

// CharIDs returns the character ids in natural order
func (d Dict) CharIDs() []string {
	return sortedKeys(d)
}

// TextIDs returns the text ids of one character in natural order
func (d Dict) TextIDs(charID string) []string {
	return sortedKeys(d[charID])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return internal.NaturalLess(keys[i], keys[j])
	})
	return keys
}

// Load reads a dictionary file
func Load(path string) (Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	d := make(Dict)
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return d, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty dictionary
func LoadOrEmpty(path string) (Dict, error) {
	d, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(Dict), nil
	}
	return d, err
}

// Save writes d with four-space indentation and literal non-ASCII text
func Save(path string, d Dict) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return record.WriteFileAtomic(path, buf.Bytes())
}

// MergeStats counts what a merge did
type MergeStats struct {
	Processed  int
	Existing   int
	Blank      int
	Translated int
}

// MergeTranslate returns existing extended by translations of every source
// pair it does not contain yet. Pairs already present keep their value,
// whatever it is. On a translation failure the partial result is returned
// together with the error so the progress can still be saved.
func MergeTranslate(ctx context.Context, source, existing Dict, tr translation.Translator, cleaner postprocess.Cleaner) (Dict, MergeStats, error) {
	merged := existing.Clone()
	var stats MergeStats

	for _, charID := range source.CharIDs() {
		for _, textID := range source.TextIDs(charID) {
			stats.Processed++

			if _, ok := merged.Get(charID, textID); ok {
				stats.Existing++
				continue
			}

			text := source[charID][textID]
			if internal.IsBlank(text) {
				stats.Blank++
				continue
			}

			raw, err := tr.Translate(ctx, text)
			if err != nil {
				return merged, stats, fmt.Errorf("character %s text %s: %w", charID, textID, err)
			}

			translated := strings.TrimSpace(cleaner.Clean(raw))
			merged.Set(charID, textID, translated)
			stats.Translated++
			log.Debugw("translated", "character", charID, "text", textID, "target", translated)
		}
	}

	return merged, stats, nil
}
