// Package cli wires the core passes into a cobra command tree. It is a
// thin shim: all matching, merging and rewriting semantics live in the
// internal packages it calls.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/app"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/cache"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/config"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/extractor"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/hooks"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/registry"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/translation"
)

const defaultRecordsFile = "extracted_strings.json"

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "string-extractor",
		Short: "Extract Chinese string literals from Kotlin Multiplatform projects into libres resources",
		Long: `Scans Kotlin sources for Chinese string literals, assigns them resource
names (optionally via an LLM translation step), appends them to the
per-module strings_<lang>.xml files and rewrites the literals into
ResStrings references.`,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(ignoreCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <project-root>",
		Short: "Scan sources and write the discovered literals to a review file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, _ := cmd.Flags().GetStringArray("pattern")
			output, _ := cmd.Flags().GetString("output")
			return runExtract(args[0], patterns, output)
		},
	}
	cmd.Flags().StringArray("pattern", nil, "Glob patterns for files to scan (default *.kt)")
	cmd.Flags().String("output", defaultRecordsFile, "Path of the JSON review file to write")
	return cmd
}

func translateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <project-root>",
		Short: "Assign translations and resource names to extracted literals via an LLM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			return runTranslate(args[0], input)
		},
	}
	cmd.Flags().String("input", defaultRecordsFile, "JSON review file to read and update")
	return cmd
}

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <project-root>",
		Short: "Merge assigned literals into resource files and rewrite the sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			ignored, _ := cmd.Flags().GetStringArray("ignore")
			return runApply(args[0], input, ignored)
		},
	}
	cmd.Flags().String("input", defaultRecordsFile, "JSON review file holding the assigned records")
	cmd.Flags().StringArray("ignore", nil, "Literal texts to add to the ignore list instead of externalizing")
	return cmd
}

func ignoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore <project-root> [text...]",
		Short: "Add literal texts to the ignore list, or list it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, _ := cmd.Flags().GetBool("list")
			return runIgnore(args[0], args[1:], list)
		},
	}
	cmd.Flags().Bool("list", false, "Print the current ignore list")
	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

func runExtract(root string, patterns []string, output string) error {
	fs := afero.NewOsFs()

	reg, err := registry.Load(fs, root)
	if err != nil {
		return err
	}

	set, err := extractor.New(fs, reg).Extract(root, patterns)
	if err != nil {
		return err
	}

	records := set.All()
	sort.Slice(records, func(i, j int) bool { return records[i].UniqueID() < records[j].UniqueID() })

	if err := writeRecords(output, records); err != nil {
		return err
	}

	fmt.Printf("Extracted %d strings to %s\n", len(records), output)
	return nil
}

func runTranslate(root, input string) error {
	ctx, cancel := setupContext()
	defer cancel()

	fs := afero.NewOsFs()
	cfg := config.Load(fs, root)
	if cfg.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	records, err := readRecords(input)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		log.Info().Msg("Nothing to translate")
		return nil
	}

	reg, err := registry.Load(fs, root)
	if err != nil {
		return err
	}
	references := reg.HarvestReferences(root, cfg.SourceTemplate, cfg.TargetTemplate, cfg.TargetLanguage, cfg.ReferenceLimit)
	log.Info().Int("references", len(references)).Str("language", cfg.TargetLanguage).Msg("Starting translation")

	tc := cache.New(fs, filepath.Join(root, cache.FileName))
	tc.Load()
	pending := applyCached(records, tc)
	cached := len(records) - len(pending)
	if cached > 0 {
		log.Info().Int("count", cached).Msg("Reused cached translations")
	}

	prompt := translation.NewPromptBuilder(cfg.CustomPrompt, cfg.TargetLanguage, references)
	client := translation.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, prompt)
	service := translation.NewService(client, cfg.BatchSize, cfg.MaxConcurrentAPICalls)

	bar := progressbar.Default(int64(len(pending)), "translating")
	applied, failures := service.TranslateRecords(ctx, pending, func(size int) {
		_ = bar.Add(size)
	})
	_ = bar.Finish()

	for _, r := range pending {
		if r.ResourceName != "" && r.Translation != "" {
			tc.Set(r.Text, r.ResourceName, r.Translation)
		}
	}
	if err := tc.Save(); err != nil {
		log.Warn().Err(err).Msg("Could not persist translation cache")
	}

	if err := writeRecords(input, records); err != nil {
		return err
	}

	fmt.Printf("%d succeeded, %d failed\n", applied+cached, len(failures))
	for _, f := range failures {
		fmt.Printf("  failed: %s\n", f)
	}
	return nil
}

func runApply(root, input string, ignored []string) error {
	fs := afero.NewOsFs()
	cfg := config.Load(fs, root)

	records, err := readRecords(input)
	if err != nil {
		return err
	}

	h, err := loadHooks(fs, cfg.HookScriptPath)
	if err != nil {
		log.Warn().Err(err).Msg("Hook script rejected, using default formatting")
	}

	if len(ignored) > 0 {
		if err := registry.SaveIgnored(fs, root, ignored); err != nil {
			return err
		}
		log.Info().Int("count", len(ignored)).Msg("Updated ignore list")
	}

	report, err := app.NewSaver(fs, cfg, h).Save(root, records)
	if err != nil {
		return err
	}

	fmt.Printf("%d succeeded, %d failed (%d resource files merged, %d sources rewritten)\n",
		report.Saved, len(report.Failures), report.MergedFiles, report.RewrittenFiles)
	for _, f := range report.Failures {
		fmt.Printf("  failed: %s\n", f)
	}
	return nil
}

func runIgnore(root string, texts []string, list bool) error {
	fs := afero.NewOsFs()

	if list {
		reg, err := registry.Load(fs, root)
		if err != nil {
			return err
		}
		for _, t := range reg.IgnoredTexts() {
			fmt.Println(t)
		}
		return nil
	}

	if len(texts) == 0 {
		return fmt.Errorf("no texts given (use --list to print the ignore list)")
	}
	if err := registry.SaveIgnored(fs, root, texts); err != nil {
		return err
	}
	fmt.Printf("Added %d texts to the ignore list\n", len(texts))
	return nil
}

// applyCached fills records from the translation cache and returns the ones
// that still need an API call.
func applyCached(records []*record.LiteralRecord, tc *cache.TranslationCache) []*record.LiteralRecord {
	var pending []*record.LiteralRecord
	for _, r := range records {
		if r.ResourceName != "" && r.Translation != "" {
			continue
		}
		entry, ok := tc.Get(r.Text)
		if !ok {
			pending = append(pending, r)
			continue
		}
		r.ResourceName = entry.ResourceName
		r.Translation = entry.Translation
	}
	return pending
}

// loadHooks reads the optional hook script and evaluates it. Any problem
// falls back to the default hooks with a warning-level error.
func loadHooks(fs afero.Fs, path string) (*hooks.Hooks, error) {
	if path == "" {
		return hooks.Defaults(), nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return hooks.Defaults(), fmt.Errorf("read hook script: %w", err)
	}
	return hooks.Load(string(data))
}

func readRecords(path string) ([]*record.LiteralRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}
	var records []*record.LiteralRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records file: %w", err)
	}
	return records, nil
}

func writeRecords(path string, records []*record.LiteralRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write records file: %w", err)
	}
	return nil
}
