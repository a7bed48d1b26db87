// Package rewriter replaces externalized literals in Kotlin sources with
// ResStrings references and inserts the matching import. Rewrites are
// idempotent: running the same rewrite against an already-rewritten file
// writes nothing.
package rewriter

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/hooks"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
)

// Rewriter applies resource-name assignments back to source files.
type Rewriter struct {
	fs    afero.Fs
	hooks *hooks.Hooks
}

// New creates a Rewriter using the given hook set (nil means defaults).
func New(fs afero.Fs, h *hooks.Hooks) *Rewriter {
	if h == nil {
		h = hooks.Defaults()
	}
	return &Rewriter{fs: fs, hooks: h}
}

// RewriteFile replaces every quoted occurrence of each assigned record's
// text in the file and inserts the module's import line once. Records
// without a resource name are skipped. Returns whether the file changed.
func (rw *Rewriter) RewriteFile(filePath string, records []*record.LiteralRecord, moduleName string) (bool, error) {
	data, err := afero.ReadFile(rw.fs, filePath)
	if err != nil {
		return false, fmt.Errorf("read source file: %w", err)
	}

	original := string(data)
	content := original

	for _, r := range records {
		if r.ResourceName == "" {
			continue
		}

		ref, err := rw.hooks.FormatReference(r.ResourceName, r.Args(), filePath)
		if err != nil {
			// A raising hook degrades to the bare reference for this record.
			log.Warn().Err(err).
				Str("text", textutil.Truncate(r.Text, 30)).
				Msg("Reference hook failed, using bare reference")
			ref = "ResStrings." + r.ResourceName
		}

		// Exact literal match, both quote styles, every occurrence.
		content = strings.ReplaceAll(content, `"`+r.Text+`"`, ref)
		content = strings.ReplaceAll(content, `'`+r.Text+`'`, ref)
	}

	if content != original {
		importLine, err := rw.hooks.FormatImport(moduleName, filePath)
		if err != nil {
			log.Warn().Err(err).Str("module", moduleName).Msg("Import hook failed, using default import")
			importLine, _ = hooks.DefaultImport(moduleName, filePath)
		}
		content = insertImport(content, importLine)
	}

	if content == original {
		return false, nil
	}

	if err := afero.WriteFile(rw.fs, filePath, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("write source file: %w", err)
	}
	return true, nil
}

// insertImport adds importLine exactly once: after the last existing import
// if any, else after the package declaration, else at the top of the file.
func insertImport(content, importLine string) string {
	if importLine == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == importLine {
			return content
		}
	}

	lastImport := -1
	packageLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") {
			lastImport = i
		} else if packageLine < 0 && strings.HasPrefix(trimmed, "package ") {
			packageLine = i
		}
	}

	insertAt := 0
	switch {
	case lastImport >= 0:
		insertAt = lastImport + 1
	case packageLine >= 0:
		insertAt = packageLine + 1
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insertAt]...)
	out = append(out, importLine)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}
