package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hako/durafmt"
	logging "github.com/ipfs/go-log/v2"

	"codeberg.org/snonux/storytl/internal/pipeline"
	"codeberg.org/snonux/storytl/internal/translation"
)

var log = logging.Logger("storytl/processor")

// ErrRootNotFound is returned when a corpus root does not exist
var ErrRootNotFound = errors.New("root directory not found")

// FileTranslator translates one dialogue file in place
type FileTranslator interface {
	TranslateFile(ctx context.Context, path string) (pipeline.FileStats, error)
}

// Options tune a run
type Options struct {
	// ContinueOnError logs a failing file and moves on instead of
	// stopping the run. An open circuit breaker still stops it.
	ContinueOnError bool
	// Out receives progress lines; nil discards them
	Out io.Writer
}

// FileResult is the outcome of one file
type FileResult struct {
	Path    string
	Stats   pipeline.FileStats
	Elapsed time.Duration
	Err     error
}

// Summary accumulates the results of a run
type Summary struct {
	Files   []FileResult
	Totals  pipeline.FileStats
	Failed  int
	Elapsed time.Duration
}

// Processed returns the number of files that were saved
func (s *Summary) Processed() int {
	return len(s.Files) - s.Failed
}

// Processor handles the corpus-wide translation run
type Processor struct {
	files FileTranslator
	opts  Options
	out   io.Writer
}

// NewProcessor creates a new processor around the given file translator
func NewProcessor(files FileTranslator, opts Options) *Processor {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Processor{files: files, opts: opts, out: out}
}

// Run translates every JSON file below root
func (p *Processor) Run(ctx context.Context, root string) (*Summary, error) {
	return p.RunAll(ctx, []string{root})
}

// RunAll translates the JSON files of several roots in order. Missing roots
// are skipped as long as at least one root exists.
func (p *Processor) RunAll(ctx context.Context, roots []string) (*Summary, error) {
	var existing []string
	for _, root := range roots {
		if !isDir(root) {
			log.Warnw("skipping missing root", "root", root)
			fmt.Fprintf(p.out, "Skipping missing root %s\n", root)
			continue
		}
		existing = append(existing, root)
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, strings.Join(roots, ", "))
	}

	var files []string
	for _, root := range existing {
		found, err := Discover(root)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return p.RunFiles(ctx, files)
}

// RunFiles translates the given files in order
func (p *Processor) RunFiles(ctx context.Context, files []string) (*Summary, error) {
	summary := &Summary{}
	start := time.Now()
	defer func() {
		summary.Elapsed = time.Since(start)
	}()

	total := len(files)
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fmt.Fprintf(p.out, "[%d/%d] %s\n", i+1, total, path)
		fileStart := time.Now()
		stats, err := p.files.TranslateFile(ctx, path)
		result := FileResult{Path: path, Stats: stats, Elapsed: time.Since(fileStart), Err: err}
		summary.Files = append(summary.Files, result)
		summary.Totals.Add(stats)

		if err == nil {
			fmt.Fprintf(p.out, "  %s %s translated, %s skipped in %s\n",
				color.GreenString("✓"),
				humanize.Comma(int64(stats.Translated)),
				humanize.Comma(int64(stats.Skipped)),
				formatDuration(result.Elapsed))
			continue
		}

		summary.Failed++
		fmt.Fprintf(p.out, "  %s %v\n", color.RedString("✗"), err)
		if !p.opts.ContinueOnError || errors.Is(err, translation.ErrCircuitOpen) || ctx.Err() != nil {
			return summary, err
		}
		log.Errorw("file failed, continuing", "path", path, "error", err)
	}

	return summary, nil
}

// Discover lists the JSON files below root in lexical walk order
func Discover(root string) ([]string, error) {
	if !isDir(root) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// Print writes the end-of-run summary
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Translation Summary ===\n")
	fmt.Fprintf(w, "Files processed: %s\n", humanize.Comma(int64(s.Processed())))
	fmt.Fprintf(w, "Entries: %s\n", humanize.Comma(int64(s.Totals.Entries)))
	fmt.Fprintf(w, "Fields translated: %s\n", humanize.Comma(int64(s.Totals.Translated)))
	fmt.Fprintf(w, "Fields skipped (already translated): %s\n", humanize.Comma(int64(s.Totals.Skipped)))
	fmt.Fprintf(w, "Fields without source: %s\n", humanize.Comma(int64(s.Totals.NoSource)))
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed files: %s\n", color.RedString(humanize.Comma(int64(s.Failed))))
	}
	if slowest, ok := s.Slowest(); ok {
		fmt.Fprintf(w, "Slowest file: %s (%s)\n", slowest.Path, formatDuration(slowest.Elapsed))
	}
	if n := len(s.Files); n > 0 {
		fmt.Fprintf(w, "Average per file: %s\n", formatDuration(s.Elapsed/time.Duration(n)))
	}
	fmt.Fprintf(w, "Total time: %s\n", formatDuration(s.Elapsed))
	fmt.Fprintf(w, "===========================\n")
}

// Slowest returns the file that took the longest
func (s *Summary) Slowest() (FileResult, bool) {
	var slowest FileResult
	found := false
	for _, f := range s.Files {
		if !found || f.Elapsed > slowest.Elapsed {
			slowest = f
			found = true
		}
	}
	return slowest, found
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
