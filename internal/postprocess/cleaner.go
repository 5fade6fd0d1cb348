package postprocess

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultScaffoldMarker is the instruction-template header some models echo
// after their answer
const DefaultScaffoldMarker = "### Response:"

// HashMarker is the bare marker the post-hoc cleanup truncates at
const HashMarker = "###"

// WhitespaceMode selects how runs of spaces are collapsed
type WhitespaceMode string

const (
	// WhitespaceSinglePass replaces each non-overlapping double space once,
	// so three spaces become two. This is what already-translated corpora
	// were produced with.
	WhitespaceSinglePass WhitespaceMode = "single-pass"
	// WhitespaceFull collapses every run of spaces to one
	WhitespaceFull WhitespaceMode = "full"
)

// ParseWhitespaceMode validates a configured mode; empty means single-pass
func ParseWhitespaceMode(s string) (WhitespaceMode, error) {
	switch WhitespaceMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", WhitespaceSinglePass:
		return WhitespaceSinglePass, nil
	case WhitespaceFull:
		return WhitespaceFull, nil
	}
	return "", fmt.Errorf("unknown whitespace mode %q (want %q or %q)", s, WhitespaceSinglePass, WhitespaceFull)
}

// Cleaner turns raw completion text into the value written to a record
type Cleaner struct {
	ScaffoldMarker string
	Whitespace     WhitespaceMode
}

// NewCleaner returns a cleaner with the default marker and single-pass
// whitespace handling
func NewCleaner() Cleaner {
	return Cleaner{
		ScaffoldMarker: DefaultScaffoldMarker,
		Whitespace:     WhitespaceSinglePass,
	}
}

// Clean applies, in order: truncation at the scaffold marker, newline
// folding, double-space collapsing and trimming. It never fails.
// A CRLF pair folds into one space like a bare newline, so no stray
// carriage return is left in the text.
func (c Cleaner) Clean(raw string) string {
	s := c.truncate(raw)

	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	if c.Whitespace == WhitespaceFull {
		for strings.Contains(s, "  ") {
			s = strings.ReplaceAll(s, "  ", " ")
		}
	} else {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	// folding can join a marker that was split across lines
	return strings.TrimSpace(c.truncate(s))
}

func (c Cleaner) truncate(s string) string {
	if c.ScaffoldMarker == "" {
		return s
	}
	if idx := strings.Index(s, c.ScaffoldMarker); idx >= 0 {
		return s[:idx]
	}
	return s
}

// TruncateAtHash cuts s at the first "###" and trims trailing whitespace.
// It reports whether s was changed.
func TruncateAtHash(s string) (string, bool) {
	idx := strings.Index(s, HashMarker)
	if idx < 0 {
		return s, false
	}
	cleaned := strings.TrimRightFunc(s[:idx], unicode.IsSpace)
	return cleaned, cleaned != s
}
