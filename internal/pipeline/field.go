package pipeline

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"codeberg.org/snonux/storytl/internal"
	"codeberg.org/snonux/storytl/internal/dictionary"
	"codeberg.org/snonux/storytl/internal/postprocess"
	"codeberg.org/snonux/storytl/internal/record"
	"codeberg.org/snonux/storytl/internal/translation"
)

var log = logging.Logger("storytl/pipeline")

// Outcome is the per-field result of EnsureTranslated
type Outcome int

const (
	// OutcomeSkipped means the target already held a translation
	OutcomeSkipped Outcome = iota
	// OutcomeNoSource means there was nothing to translate
	OutcomeNoSource
	// OutcomeTranslated means a new translation was written
	OutcomeTranslated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoSource:
		return "no-source"
	case OutcomeTranslated:
		return "translated"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

const (
	// DefaultMonologueSentinel is what models answer for unattributed narration
	DefaultMonologueSentinel = "Monologue"
	// NoSpeaker marks a name that was translated to "no speaker"
	NoSpeaker = " "
)

// FieldTranslator fills one target field of an entry
type FieldTranslator struct {
	translator translation.Translator
	names      translation.Translator
	cleaner    postprocess.Cleaner
	sentinel   string
	dict       *dictionary.Dictionary
}

// Option configures a FieldTranslator
type Option func(*FieldTranslator)

// WithMonologueSentinel replaces the name sentinel. An empty sentinel
// disables the special case.
func WithMonologueSentinel(s string) Option {
	return func(ft *FieldTranslator) {
		ft.sentinel = s
	}
}

// WithNameTranslator routes name fields through tr, typically a caching
// wrapper around the main translator
func WithNameTranslator(tr translation.Translator) Option {
	return func(ft *FieldTranslator) {
		ft.names = tr
	}
}

// WithDictionary reports sources that are dictionary terms whose output
// drifted from the canonical spelling
func WithDictionary(dict *dictionary.Dictionary) Option {
	return func(ft *FieldTranslator) {
		ft.dict = dict
	}
}

// NewFieldTranslator creates a field translator
func NewFieldTranslator(tr translation.Translator, cleaner postprocess.Cleaner, opts ...Option) *FieldTranslator {
	ft := &FieldTranslator{
		translator: tr,
		names:      tr,
		cleaner:    cleaner,
		sentinel:   DefaultMonologueSentinel,
	}
	for _, opt := range opts {
		opt(ft)
	}
	return ft
}

// IsDone reports whether value counts as an existing translation of field f
func IsDone(f record.Field, value string) bool {
	if f == record.FieldName && value == NoSpeaker {
		return true
	}
	return !internal.IsBlank(value)
}

// EnsureTranslated translates field f of e unless it is already done or
// has no source text. Fields the entry does not have report OutcomeNoSource.
//
// On the name field the monologue sentinel matches either the raw model
// output or its cleaned form, so "Monologue\n" or an echoed scaffold
// after it still yields NoSpeaker.
func (ft *FieldTranslator) EnsureTranslated(ctx context.Context, e *record.Entry, f record.Field) (Outcome, error) {
	if e == nil || !e.Has(f) {
		return OutcomeNoSource, nil
	}

	if target, ok := e.Target(f); ok && IsDone(f, target) {
		return OutcomeSkipped, nil
	}

	source, ok := e.Source(f)
	if !ok || internal.IsBlank(source) {
		return OutcomeNoSource, nil
	}

	tr := ft.translator
	if f == record.FieldName {
		tr = ft.names
	}

	raw, err := tr.Translate(ctx, source)
	if err != nil {
		return OutcomeNoSource, fmt.Errorf("translating %s: %w", f, err)
	}

	cleaned := ft.cleaner.Clean(raw)
	if f == record.FieldName && ft.isSentinel(raw, cleaned) {
		cleaned = NoSpeaker
	}
	ft.checkTerm(f, source, cleaned)
	if cleaned == "" {
		log.Warnw("translation cleaned to empty text", "field", f.String(), "source", source)
	}

	e.SetTarget(f, cleaned)
	log.Debugw("translated", "field", f.String(), "source", source, "target", cleaned)
	return OutcomeTranslated, nil
}

func (ft *FieldTranslator) isSentinel(raw, cleaned string) bool {
	if ft.sentinel == "" {
		return false
	}
	return raw == ft.sentinel || cleaned == ft.sentinel
}

// checkTerm logs when a source that is itself a dictionary term came back
// with a spelling other than the canonical one. It reports whether it did.
func (ft *FieldTranslator) checkTerm(f record.Field, source, target string) bool {
	if ft.dict == nil || target == NoSpeaker {
		return false
	}
	canonical, ok := ft.dict.Lookup(source)
	if !ok || canonical == target {
		return false
	}
	log.Warnw("dictionary term translated off-spelling", "field", f.String(), "source", source, "want", canonical, "got", target)
	return true
}
