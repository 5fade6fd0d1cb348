package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hako/durafmt"
	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/storytl/internal"
	"codeberg.org/snonux/storytl/internal/batch"
	"codeberg.org/snonux/storytl/internal/chardict"
	"codeberg.org/snonux/storytl/internal/fixup"
	"codeberg.org/snonux/storytl/internal/models"
	"codeberg.org/snonux/storytl/internal/processor"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storytl",
		Short: "Resumable Japanese to English dialogue translator",
		Long: `storytl translates the Japanese dialogue of a game story corpus into
English through an OpenAI-compatible or Gemini completion endpoint.

Runs are resumable: fields that already carry a translation are never
requested again, so an interrupted run simply continues where it stopped.

Examples:
  storytl translate                       # translate raw/story and raw/home
  storytl translate raw/story/04          # translate one subtree
  storytl translate --files-from todo.txt # translate a list of files
  storytl chardict                        # extend the character text dictionary
  storytl clean-markers --backup          # cut leftover "###" markers
  storytl fix-names --dry-run             # preview name corrections`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.SetLogLevel("*", viper.GetString(KeyLogLevel))
		},
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newTranslateCommand(flags),
		newTranslateFileCommand(flags),
		newCharDictCommand(flags),
		newCleanMarkersCommand(flags),
		newFixNamesCommand(flags),
		newListModelsCommand(flags),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is ./config.toml)")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress progress output")

	// Server overrides
	pf.StringVar(&flags.Provider, "provider", flags.Provider, "Completion provider: openai or gemini")
	pf.StringVar(&flags.APIURL, "api-url", "", "Completion endpoint URL")
	pf.StringVar(&flags.Model, "model", "", "Model identifier")

	// Paths
	pf.StringVar(&flags.Dictionary, "dictionary", flags.Dictionary, "Proper noun dictionary (JSON)")
	pf.StringVar(&flags.CharSource, "char-source", flags.CharSource, "Character and system text source (JSON)")
	pf.StringVar(&flags.CharDict, "char-dict", flags.CharDict, "Translated character and system text dictionary (JSON)")
	pf.StringVar(&flags.Fixups, "fixups", "", "YAML file with extra name corrections")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag(KeyLogLevel, pf.Lookup("log-level"))
	viper.BindPFlag(KeyProvider, pf.Lookup("provider"))
	viper.BindPFlag(KeyAPIURL, pf.Lookup("api-url"))
	viper.BindPFlag(KeyModel, pf.Lookup("model"))
	viper.BindPFlag(KeyDictionary, pf.Lookup("dictionary"))
	viper.BindPFlag(KeyCharSource, pf.Lookup("char-source"))
	viper.BindPFlag(KeyCharDict, pf.Lookup("char-dict"))
	viper.BindPFlag(KeyFixups, pf.Lookup("fixups"))
}

func newTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [roots...]",
		Short: "Translate every dialogue file below the corpus roots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := NewRuntime(ctx, flags)
			if err != nil {
				return err
			}

			proc := processor.NewProcessor(rt.RecordPipeline(), processor.Options{
				ContinueOnError: flags.ContinueOnError,
				Out:             rt.Out,
			})

			var summary *processor.Summary
			switch {
			case flags.FilesFrom != "":
				files, readErr := batch.ReadFileList(flags.FilesFrom)
				if readErr != nil {
					return readErr
				}
				summary, err = proc.RunFiles(ctx, files)
			case len(args) > 0:
				summary, err = proc.RunAll(ctx, args)
			default:
				summary, err = proc.RunAll(ctx, viper.GetStringSlice(KeyRoots))
			}

			if summary != nil {
				summary.Print(rt.Out)
			}
			if rt.NameCache != nil {
				fmt.Fprintf(rt.Out, "Cached names: %d\n", rt.NameCache.Len())
			}
			return err
		},
	}

	cmd.Flags().StringVar(&flags.FilesFrom, "files-from", "", "Translate the files listed in this file (one per line)")
	cmd.Flags().BoolVar(&flags.ContinueOnError, "continue-on-error", false, "Log failing files and continue; stop once the endpoint keeps failing")
	cmd.Flags().BoolVar(&flags.CacheNames, "cache-names", false, "Request each distinct speaker name only once per run")
	return cmd
}

func newTranslateFileCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate-file <file>",
		Short: "Translate a single dialogue file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewRuntime(cmd.Context(), flags)
			if err != nil {
				return err
			}

			start := time.Now()
			stats, err := rt.RecordPipeline().TranslateFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(rt.Out, "%s %s: %d translated, %d skipped, %d without source in %s\n",
				color.GreenString("✓"), args[0], stats.Translated, stats.Skipped, stats.NoSource,
				durafmt.Parse(time.Since(start).Round(time.Millisecond)).LimitFirstN(2))
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.CacheNames, "cache-names", false, "Request each distinct speaker name only once")
	return cmd
}

func newCharDictCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "chardict",
		Short: "Translate new character and system texts into the dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewRuntime(cmd.Context(), flags)
			if err != nil {
				return err
			}

			sourcePath := viper.GetString(KeyCharSource)
			outputPath := viper.GetString(KeyCharDict)

			source, err := chardict.Load(sourcePath)
			if err != nil {
				return err
			}
			existing, err := chardict.LoadOrEmpty(outputPath)
			if err != nil {
				return err
			}

			start := time.Now()
			merged, stats, mergeErr := chardict.MergeTranslate(cmd.Context(), source, existing, rt.Translator, rt.Cleaner)

			// partial progress is kept even when a request failed
			if stats.Translated > 0 {
				if err := chardict.Save(outputPath, merged); err != nil {
					return errors.Join(mergeErr, err)
				}
			}

			fmt.Fprintf(rt.Out, "\n=== Character Text Summary ===\n")
			fmt.Fprintf(rt.Out, "Processed: %s\n", humanize.Comma(int64(stats.Processed)))
			fmt.Fprintf(rt.Out, "Already translated: %s\n", humanize.Comma(int64(stats.Existing)))
			fmt.Fprintf(rt.Out, "Blank source: %s\n", humanize.Comma(int64(stats.Blank)))
			fmt.Fprintf(rt.Out, "Newly translated: %s\n", humanize.Comma(int64(stats.Translated)))
			fmt.Fprintf(rt.Out, "Total time: %s\n", durafmt.Parse(time.Since(start).Round(time.Second)).LimitFirstN(2))
			fmt.Fprintf(rt.Out, "==============================\n")
			return mergeErr
		},
	}
}

func newCleanMarkersCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean-markers [roots...]",
		Short: `Cut every translated string at a leftover "###" marker`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewCleanupRuntime(flags)
			if err != nil {
				return err
			}
			return runCleanup(cmd, rt, args, "Marker Cleanup", fixup.CleanMarkers, fixup.CleanDictMarkers)
		},
	}
	addCleanupFlags(cmd, flags)
	return cmd
}

func newFixNamesCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix-names [roots...]",
		Short: "Rewrite known mistranslated names to their canonical spelling",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewCleanupRuntime(flags)
			if err != nil {
				return err
			}
			fixup.PrintMappings(rt.Out, rt.Fixups)
			return runCleanup(cmd, rt, args, "Name Fix-up", fixup.FixNames(rt.Fixups), fixup.FixDictNames(rt.Fixups))
		},
	}
	addCleanupFlags(cmd, flags)
	return cmd
}

func addCleanupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Report changes without writing files")
	cmd.Flags().BoolVar(&flags.Backup, "backup", false, "Snapshot the character dictionary before rewriting it")
}

func runCleanup(cmd *cobra.Command, rt *Runtime, args []string, title string, fileFn fixup.FileFunc, dictFn fixup.DictFunc) error {
	roots := args
	if len(roots) == 0 {
		roots = viper.GetStringSlice(KeyRoots)
	}
	opts := fixup.Options{DryRun: rt.Flags.DryRun, Backup: rt.Flags.Backup, Out: rt.Out}

	report, walkErr := fixup.WalkCorpus(cmd.Context(), roots, fileFn, opts)
	report.Print(rt.Out, title)

	dictPath := viper.GetString(KeyCharDict)
	if _, err := os.Stat(dictPath); err != nil {
		fmt.Fprintf(rt.Out, "No character dictionary at %s, skipping\n", dictPath)
		return walkErr
	}

	dictReport, dictErr := fixup.ApplyCharDict(dictPath, dictFn, opts)
	fmt.Fprintf(rt.Out, "Character dictionary: %s changes\n", humanize.Comma(int64(dictReport.Changes)))
	return errors.Join(walkErr, dictErr)
}

func newListModelsCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List the models available at the configured endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lister := models.NewLister(GetAPIKey(), viper.GetString(KeyAPIURL))
			return lister.ListAvailableModels(cmd.Context(), output(flags))
		},
	}
}
