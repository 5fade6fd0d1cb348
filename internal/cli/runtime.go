package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"codeberg.org/snonux/storytl/internal/dictionary"
	"codeberg.org/snonux/storytl/internal/fixup"
	"codeberg.org/snonux/storytl/internal/pipeline"
	"codeberg.org/snonux/storytl/internal/postprocess"
	"codeberg.org/snonux/storytl/internal/translation"
)

// Runtime is everything a command needs, loaded once at startup and
// handed to the components explicitly
type Runtime struct {
	Flags      *Flags
	Config     translation.Config
	Dictionary *dictionary.Dictionary
	Translator translation.Translator
	Cleaner    postprocess.Cleaner
	Fixups     fixup.Map
	NameCache  *translation.TranslationCache
	Out        io.Writer
}

// NewCleanupRuntime loads what the offline cleanup commands need
func NewCleanupRuntime(flags *Flags) (*Runtime, error) {
	rt := &Runtime{Flags: flags, Out: output(flags)}

	cleaner, err := loadCleaner()
	if err != nil {
		return nil, err
	}
	rt.Cleaner = cleaner

	fixups, err := fixup.LoadMap(viper.GetString(KeyFixups))
	if err != nil {
		return nil, err
	}
	rt.Fixups = fixups

	return rt, nil
}

// NewRuntime additionally loads the dictionary and builds the translator
func NewRuntime(ctx context.Context, flags *Flags) (*Runtime, error) {
	rt, err := NewCleanupRuntime(flags)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadTranslationConfig()
	if err != nil {
		return nil, err
	}
	rt.Config = cfg

	dict, err := dictionary.Load(viper.GetString(KeyDictionary))
	if err != nil {
		return nil, err
	}
	rt.Dictionary = dict
	log.Infow("dictionary loaded", "terms", dict.Len())

	tr, err := translation.New(ctx, cfg, dict)
	if err != nil {
		return nil, err
	}
	if flags.ContinueOnError {
		tr = translation.NewBreakerTranslator(tr, viper.GetInt(KeyBreakerFailures))
	}
	rt.Translator = tr

	if flags.CacheNames {
		rt.NameCache = translation.NewTranslationCache()
	}

	return rt, nil
}

// FieldTranslator builds the per-field translator from the runtime settings
func (rt *Runtime) FieldTranslator() *pipeline.FieldTranslator {
	opts := []pipeline.Option{
		pipeline.WithMonologueSentinel(viper.GetString(KeyMonologue)),
		pipeline.WithDictionary(rt.Dictionary),
	}
	if rt.NameCache != nil {
		opts = append(opts, pipeline.WithNameTranslator(translation.NewCachingTranslator(rt.Translator, rt.NameCache)))
	}
	return pipeline.NewFieldTranslator(rt.Translator, rt.Cleaner, opts...)
}

// RecordPipeline builds the file pipeline
func (rt *Runtime) RecordPipeline() *pipeline.RecordPipeline {
	return pipeline.NewRecordPipeline(rt.FieldTranslator())
}

func loadCleaner() (postprocess.Cleaner, error) {
	mode, err := postprocess.ParseWhitespaceMode(viper.GetString(KeyWhitespace))
	if err != nil {
		return postprocess.Cleaner{}, fmt.Errorf("%s: %w", KeyWhitespace, err)
	}
	return postprocess.Cleaner{
		ScaffoldMarker: viper.GetString(KeyScaffoldMarker),
		Whitespace:     mode,
	}, nil
}

func output(flags *Flags) io.Writer {
	if flags.Quiet {
		return io.Discard
	}
	return os.Stdout
}
