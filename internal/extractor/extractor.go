// Package extractor walks a Kotlin source tree and collects Chinese string
// literals that are not yet externalized. Matching is line-oriented against
// the pattern catalog; multi-line literals and escaped quotes are out of
// scope by design.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/catalog"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/registry"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
)

// DefaultPatterns select the source file type under management.
var DefaultPatterns = []string{"*.kt"}

// contextRadius is how many lines around an occurrence are captured for
// human review.
const contextRadius = 2

// Extractor scans files against the pattern catalog, filtered through the
// registry's ignore set and existing-resource index.
type Extractor struct {
	fs  afero.Fs
	reg *registry.Registry
}

// New creates an Extractor over the given filesystem and registry context.
func New(fs afero.Fs, reg *registry.Registry) *Extractor {
	return &Extractor{fs: fs, reg: reg}
}

// Extract walks root and returns the deduplicated set of literal records.
// patterns are glob-style file name filters; nil means DefaultPatterns.
// A root that does not exist is the only fatal condition; unreadable or
// non-UTF-8 files are skipped.
func (e *Extractor) Extract(root string, patterns []string) (*record.Set, error) {
	info, err := e.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	set := record.NewSet()
	scanned := 0

	err = afero.Walk(e.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if info.IsDir() {
			if isExcludedDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchesAny(info.Name(), patterns) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if e.scanFile(path, filepath.ToSlash(rel), set) {
			scanned++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source tree: %w", err)
	}

	log.Info().Int("files", scanned).Int("records", set.Len()).Str("root", root).Msg("Extraction complete")
	return set, nil
}

func isExcludedDir(name string) bool {
	for _, d := range catalog.ExcludedDirs {
		if name == d {
			return true
		}
	}
	return false
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// scanFile reads one file and adds its candidate literals to set.
// Returns false when the file was skipped.
func (e *Extractor) scanFile(path, relPath string, set *record.Set) bool {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Cannot read file, skipping")
		return false
	}
	if !utf8.Valid(data) {
		log.Debug().Str("path", path).Msg("File is not valid UTF-8, skipping")
		return false
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if skipLine(line) {
			continue
		}
		for _, text := range literalsOn(line) {
			if !textutil.ContainsChinese(text) {
				continue
			}
			if e.reg.IsIgnored(text) {
				continue
			}
			if _, done := e.reg.Reference(text); done {
				continue
			}
			set.Add(record.New(text, relPath, i+1, contextWindow(lines, i)))
		}
	}
	return true
}

// skipLine reports whether the whole line is excluded from scanning:
// comment lines, log/print statements, and lines that already carry a
// ResStrings reference.
func skipLine(line string) bool {
	for _, p := range catalog.ExcludePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return catalog.ReferencePattern.MatchString(line)
}

// literalsOn collects the literal contents matched on one line. Patterns
// run in catalog order and later patterns cannot claim spans already
// covered, so the double-quoted reading wins over the single-quoted one
// when both overlap.
func literalsOn(line string) []string {
	var texts []string
	var claimed [][2]int

	for _, p := range catalog.LiteralPatterns {
		for _, loc := range p.FindAllStringSubmatchIndex(line, -1) {
			if overlapsAny(loc[0], loc[1], claimed) {
				continue
			}
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			texts = append(texts, line[loc[2]:loc[3]])
		}
	}
	return texts
}

func overlapsAny(start, end int, claimed [][2]int) bool {
	for _, c := range claimed {
		if start < c[1] && end > c[0] {
			return true
		}
	}
	return false
}

// contextWindow joins the lines around index i (0-based), two before and
// two after, clamped to the file bounds.
func contextWindow(lines []string, i int) string {
	start := i - contextRadius
	if start < 0 {
		start = 0
	}
	end := i + contextRadius + 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}
