package fixup

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map maps a known wrong translation to its correction
type Map map[string]string

// DefaultMap returns the corrections collected over past runs
func DefaultMap() Map {
	return Map{
		"Aston Marchant":      "Aston Machan",
		"Aston Marchan":       "Aston Machan",
		"Golodfin Barb":       "Golshi",
		"Goddolphin Barb":     "Golshi",
		"Hai, Sei, Ko!":       "Haiseiko",
		"Hai, Sei-koh!":       "Haiseiko",
		"Hai sei ko!":         "Haiseiko",
		"Hai, Sei-ko!":        "Haiseiko",
		"Hai Sei Ko":          "Haiseiko",
		"Hai-seiko!":          "Haiseiko",
		"St. Lite":            "St Lite",
		"Marchant":            "Machan",
		"Marchen":             "Machan",
		"Marchent":            "Machan",
		"Karin":               "Curren",
		"<unk>":               "",
		"Tickezo":             "Ticket",
		"Pockedex":            "Archive",
		"Pokedex":             "Archive",
		"Tannino Gimlet":      "Tanino Gimlet",
		"Vibros":              "Vivlos",
		"No reason.":          "No Reason",
		"Loves only you":      "Loves Only You",
		"Curren Bouquet d'or": "Curren Bouquetd'or",
		"Curren Bouquet d'Or": "Curren Bouquetd'or",
		"Dareley Arabian":     "Darley Arabian",
		"Tsurugi Ryoka":       "Ryoka Tsurugi",
	}
}

// mapFile is the YAML layout of a user supplied correction file
type mapFile struct {
	ReplaceDefaults bool              `yaml:"replace_defaults"`
	Corrections     map[string]string `yaml:"corrections"`
}

// LoadMap reads a YAML correction file and merges it over the defaults,
// or replaces them when the file sets replace_defaults. An empty path
// returns the defaults.
func LoadMap(path string) (Map, error) {
	if path == "" {
		return DefaultMap(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fix-up map: %w", err)
	}

	var mf mapFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse fix-up map %s: %w", path, err)
	}

	m := DefaultMap()
	if mf.ReplaceDefaults {
		m = Map{}
	}
	for wrong, right := range mf.Corrections {
		m[wrong] = right
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("fix-up map %s: %w", path, err)
	}
	return m, nil
}

// ErrChain is returned by Validate for corrections that would be corrected again
var ErrChain = errors.New("correction chain")

// Validate rejects maps whose corrections are not a fixed point: an empty
// key, a correction that is itself a key, or a correction containing a key
func (m Map) Validate() error {
	var problems []string
	for _, wrong := range m.Sources() {
		right := m[wrong]
		if wrong == "" {
			problems = append(problems, "empty source")
			continue
		}
		for _, other := range m.Sources() {
			if other != "" && strings.Contains(right, other) {
				problems = append(problems, fmt.Sprintf("%q -> %q contains %q", wrong, right, other))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrChain, strings.Join(problems, "; "))
	}
	return nil
}

// Sources returns the wrong spellings, longest first, ties in lexical order
func (m Map) Sources() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Exact returns the correction for a whole value
func (m Map) Exact(value string) (string, bool) {
	right, ok := m[value]
	if !ok || right == value {
		return value, false
	}
	return right, true
}

// Substitute replaces every occurrence of every source inside value,
// longest source first, and reports how many replacements were made.
// Passes repeat until nothing matches, since a replacement can complete a
// longer source together with its neighbours.
func (m Map) Substitute(value string) (string, int) {
	sources := m.Sources()
	count := 0
	for pass := 0; pass <= len(sources); pass++ {
		changed := 0
		for _, wrong := range sources {
			if wrong == "" {
				continue
			}
			if n := strings.Count(value, wrong); n > 0 {
				value = strings.ReplaceAll(value, wrong, m[wrong])
				changed += n
			}
		}
		if changed == 0 {
			break
		}
		count += changed
	}
	return value, count
}
