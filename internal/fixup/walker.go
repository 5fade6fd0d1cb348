package fixup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/schollz/progressbar/v3"

	"codeberg.org/snonux/storytl/internal/archive"
	"codeberg.org/snonux/storytl/internal/chardict"
	"codeberg.org/snonux/storytl/internal/processor"
	"codeberg.org/snonux/storytl/internal/record"
)

var log = logging.Logger("storytl/fixup")

// Options tune a cleanup pass
type Options struct {
	// DryRun counts changes without writing anything
	DryRun bool
	// Backup snapshots the character dictionary before it is rewritten
	Backup bool
	// Out receives the progress bar and report; nil discards them
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

// Report summarizes a cleanup pass
type Report struct {
	Files     int
	Modified  int
	Unchanged int
	Failed    int
	Changes   int
}

// Print writes the report in the same shape for every pass
func (r Report) Print(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n", title)
	fmt.Fprintf(w, "Total files: %s\n", humanize.Comma(int64(r.Files)))
	fmt.Fprintf(w, "Modified: %s\n", humanize.Comma(int64(r.Modified)))
	fmt.Fprintf(w, "Unchanged: %s\n", humanize.Comma(int64(r.Unchanged)))
	if r.Failed > 0 {
		fmt.Fprintf(w, "Failed: %s\n", humanize.Comma(int64(r.Failed)))
	}
	fmt.Fprintf(w, "Changes applied: %s\n", humanize.Comma(int64(r.Changes)))
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", len(title)+8))
}

// WalkCorpus applies fn to every JSON file below roots. Files fn changes
// are written back; unchanged files are not touched. A file that cannot
// be read, parsed or written is logged and skipped, and all such failures
// are returned together once the pass is complete.
func WalkCorpus(ctx context.Context, roots []string, fn FileFunc, opts Options) (Report, error) {
	var files []string
	found := false
	for _, root := range roots {
		list, err := processor.Discover(root)
		if err != nil {
			log.Warnw("skipping root", "root", root, "error", err)
			continue
		}
		found = true
		files = append(files, list...)
	}
	if !found {
		return Report{}, fmt.Errorf("%w: %s", processor.ErrRootNotFound, strings.Join(roots, ", "))
	}

	return ApplyFiles(ctx, files, fn, opts)
}

// ApplyFiles applies fn to each of files, isolating per-file failures
func ApplyFiles(ctx context.Context, files []string, fn FileFunc, opts Options) (Report, error) {
	var report Report
	var errs *multierror.Error

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(opts.out()),
		progressbar.OptionSetDescription("cleaning"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(0),
	)
	defer bar.Finish()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Files++
		_ = bar.Add(1)

		n, err := applyFile(path, fn, opts.DryRun)
		if err != nil {
			report.Failed++
			log.Errorw("cleanup failed", "path", path, "error", err)
			errs = multierror.Append(errs, err)
			continue
		}
		if n == 0 {
			report.Unchanged++
			continue
		}
		report.Modified++
		report.Changes += n
		log.Infow("file changed", "path", path, "changes", n, "dry_run", opts.DryRun)
	}

	return report, errs.ErrorOrNil()
}

func applyFile(path string, fn FileFunc, dryRun bool) (int, error) {
	f, err := record.Load(path)
	if err != nil {
		return 0, err
	}

	n := fn(f)
	if n == 0 || dryRun {
		return n, nil
	}
	if err := record.Save(path, f); err != nil {
		return 0, err
	}
	return n, nil
}

// ApplyCharDict applies fn to the character dictionary at path and writes
// it back only when something changed
func ApplyCharDict(path string, fn DictFunc, opts Options) (Report, error) {
	report := Report{Files: 1}

	d, err := chardict.Load(path)
	if err != nil {
		report.Failed++
		return report, err
	}

	n := fn(d)
	report.Changes = n
	if n == 0 {
		report.Unchanged++
		return report, nil
	}
	report.Modified++
	if opts.DryRun {
		return report, nil
	}

	if opts.Backup {
		snapshot, err := archive.Snapshot(path)
		if err != nil {
			return report, fmt.Errorf("failed to back up %s: %w", path, err)
		}
		fmt.Fprintf(opts.out(), "Backed up %s to %s\n", path, snapshot)
	}

	if err := chardict.Save(path, d); err != nil {
		return report, err
	}
	return report, nil
}

// PrintMappings lists the corrections of m, longest source first
func PrintMappings(w io.Writer, m Map) {
	fmt.Fprintf(w, "Corrections:\n")
	for _, wrong := range m.Sources() {
		fmt.Fprintf(w, "  %q -> %q\n", wrong, m[wrong])
	}
}
