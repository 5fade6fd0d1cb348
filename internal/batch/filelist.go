package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFileList reads the dialogue files to translate from a list file.
// Supported lines:
// - a path, absolute or relative to the working directory: "raw/story/0001.json"
// - a comment: "# chapter one"
// - blank lines, which are ignored
// A path listed twice is only returned once, at its first position.
func ReadFileList(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}

	var files []string
	seen := make(map[string]bool)

	for _, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		path := filepath.Clean(line)
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}

	return files, nil
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
