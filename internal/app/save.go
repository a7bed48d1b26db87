// Package app orchestrates the save pass: merging assigned records into the
// per-module resource files and rewriting their origin sources. One save at
// a time per root; callers serialize invocations.
package app

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/config"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/hooks"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/rewriter"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/xmlres"
)

// SaveReport summarizes one save pass. Partial failures do not abort the
// pass; callers show "N succeeded, M failed" from these fields.
type SaveReport struct {
	Success        bool     `json:"success"`
	Saved          int      `json:"saved"`
	MergedFiles    int      `json:"merged_files"`
	RewrittenFiles int      `json:"rewritten_files"`
	Failures       []string `json:"failures,omitempty"`
}

// Saver applies assigned records back to the project tree.
type Saver struct {
	fs    afero.Fs
	cfg   *config.Config
	hooks *hooks.Hooks
}

// NewSaver creates a Saver; nil hooks means the built-in defaults.
func NewSaver(fs afero.Fs, cfg *config.Config, h *hooks.Hooks) *Saver {
	if h == nil {
		h = hooks.Defaults()
	}
	return &Saver{fs: fs, cfg: cfg, hooks: h}
}

// Save merges every fully assigned record (resource name and translation
// both present) into its module's source- and target-language resource
// files, then rewrites the origin sources. A missing root is the only
// fatal error.
func (s *Saver) Save(root string, records []*record.LiteralRecord) (*SaveReport, error) {
	if info, err := s.fs.Stat(root); err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	report := &SaveReport{}

	byModule := groupByModule(records)
	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	for _, module := range modules {
		recs := byModule[module]
		s.mergeModule(root, module, recs, report)
		s.rewriteModule(root, module, recs, report)
		report.Saved += len(recs)
	}

	report.Success = len(report.Failures) == 0
	log.Info().
		Int("saved", report.Saved).
		Int("merged_files", report.MergedFiles).
		Int("rewritten_files", report.RewrittenFiles).
		Int("failures", len(report.Failures)).
		Msg("Save pass complete")
	return report, nil
}

// groupByModule keeps only fully assigned records and orders each group by
// origin and line so merge output is deterministic.
func groupByModule(records []*record.LiteralRecord) map[string][]*record.LiteralRecord {
	byModule := make(map[string][]*record.LiteralRecord)
	for _, r := range records {
		if r.ResourceName == "" || r.Translation == "" {
			continue
		}
		byModule[r.ModuleName] = append(byModule[r.ModuleName], r)
	}
	for _, recs := range byModule {
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].OriginPath != recs[j].OriginPath {
				return recs[i].OriginPath < recs[j].OriginPath
			}
			return recs[i].LineNumber < recs[j].LineNumber
		})
	}
	return byModule
}

// mergeModule appends the module's new entries to both language variants:
// the source-language file gets the original text, the target-language file
// the translation.
func (s *Saver) mergeModule(root, module string, recs []*record.LiteralRecord, report *SaveReport) {
	sourceEntries := make([]xmlres.Entry, 0, len(recs))
	targetEntries := make([]xmlres.Entry, 0, len(recs))
	for _, r := range recs {
		args := r.Args()
		sourceEntries = append(sourceEntries, xmlres.Entry{Name: r.ResourceName, Text: r.Text, Args: args})
		targetEntries = append(targetEntries, xmlres.Entry{Name: r.ResourceName, Text: r.Translation, Args: args})
	}

	lang := s.cfg.TargetLanguage
	merges := []struct {
		path    string
		entries []xmlres.Entry
	}{
		{filepath.Join(root, config.ExpandTemplate(s.cfg.SourceTemplate, module, lang)), sourceEntries},
		{filepath.Join(root, config.ExpandTemplate(s.cfg.TargetTemplate, module, lang)), targetEntries},
	}

	for _, m := range merges {
		modified, err := xmlres.MergeInto(s.fs, m.path, m.entries, s.hooks.FormatXMLText)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("merge %s: %v", m.path, err))
			continue
		}
		if modified {
			report.MergedFiles++
		}
	}
}

// rewriteModule rewrites every origin file of the module's records.
func (s *Saver) rewriteModule(root, module string, recs []*record.LiteralRecord, report *SaveReport) {
	byFile := make(map[string][]*record.LiteralRecord)
	for _, r := range recs {
		byFile[r.OriginPath] = append(byFile[r.OriginPath], r)
	}

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	rw := rewriter.New(s.fs, s.hooks)
	for _, origin := range files {
		path := filepath.Join(root, filepath.FromSlash(origin))
		modified, err := rw.RewriteFile(path, byFile[origin], module)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("rewrite %s: %v", origin, err))
			continue
		}
		if modified {
			report.RewrittenFiles++
			log.Debug().Str("file", origin).Int("records", len(byFile[origin])).Msg("Rewrote source file")
		}
	}
}
