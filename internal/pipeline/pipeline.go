package pipeline

import (
	"context"
	"fmt"

	"codeberg.org/snonux/storytl/internal/record"
)

// FileStats counts the field outcomes of one file
type FileStats struct {
	Path       string
	Entries    int
	Translated int
	Skipped    int
	NoSource   int
	Saved      bool
}

func (s *FileStats) add(o Outcome) {
	switch o {
	case OutcomeTranslated:
		s.Translated++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeNoSource:
		s.NoSource++
	}
}

// Add folds other into s
func (s *FileStats) Add(other FileStats) {
	s.Entries += other.Entries
	s.Translated += other.Translated
	s.Skipped += other.Skipped
	s.NoSource += other.NoSource
}

// RecordPipeline translates whole dialogue files
type RecordPipeline struct {
	fields *FieldTranslator
}

// NewRecordPipeline creates a pipeline around ft
func NewRecordPipeline(ft *FieldTranslator) *RecordPipeline {
	return &RecordPipeline{fields: ft}
}

// TranslateFile loads path, translates every missing field and saves the
// file once at the end. On error nothing is written.
func (p *RecordPipeline) TranslateFile(ctx context.Context, path string) (FileStats, error) {
	stats := FileStats{Path: path}

	f, err := record.Load(path)
	if err != nil {
		return stats, err
	}

	walked, err := p.TranslateRecord(ctx, f)
	walked.Path = path
	if err != nil {
		return walked, fmt.Errorf("%s: %w", path, err)
	}

	if err := record.Save(path, f); err != nil {
		return walked, err
	}
	walked.Saved = true
	return walked, nil
}

// TranslateRecord walks the entries of f in index order and fills name,
// body and up to two choices of each
func (p *RecordPipeline) TranslateRecord(ctx context.Context, f *record.File) (FileStats, error) {
	var stats FileStats

	for i := 0; ; i++ {
		entry, ok := f.Entry(i)
		if !ok {
			break
		}
		stats.Entries++
		if entry == nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		for _, field := range record.Fields {
			if !entry.Has(field) {
				continue
			}
			outcome, err := p.fields.EnsureTranslated(ctx, entry, field)
			if err != nil {
				return stats, fmt.Errorf("entry %d: %w", i, err)
			}
			stats.add(outcome)
		}
	}

	return stats, nil
}
