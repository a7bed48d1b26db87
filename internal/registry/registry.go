// Package registry loads the already-externalized state of a project tree:
// the reverse index of resource texts to their ResStrings references, the
// operator's ignore list, and aligned translation pairs harvested from
// existing resource files.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/xmlres"
)

// IgnoreFileName is the fixed ignore-list location under the project root.
const IgnoreFileName = "ignored_strings.json"

// stringsDirSuffix identifies resource directories holding one
// strings_<lang>.xml file per language variant.
const stringsDirSuffix = "libres/strings"

// Registry is the immutable-after-load lookup context threaded through an
// extraction run. Build one per invocation and discard it afterwards.
type Registry struct {
	fs afero.Fs

	// existing maps literal text to its assigned reference expression,
	// e.g. "用户名" -> "ResStrings.username".
	existing map[string]string

	// ignored holds texts the operator chose never to extract.
	ignored map[string]struct{}
}

// Load scans every strings_*.xml under root and the persisted ignore list.
// Malformed files contribute nothing; a missing ignore file means an empty
// set. The only fatal condition is a root that does not exist.
func Load(fs afero.Fs, root string) (*Registry, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", root)
	}

	r := &Registry{
		fs:       fs,
		existing: make(map[string]string),
		ignored:  make(map[string]struct{}),
	}

	if err := r.loadExisting(root); err != nil {
		return nil, err
	}
	if err := r.loadIgnored(root); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) loadExisting(root string) error {
	err := afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking resource tree")
			return nil
		}
		if info.IsDir() || !isStringsFile(path) {
			return nil
		}

		entries, err := xmlres.ReadEntries(r.fs, path)
		if err != nil {
			// Malformed resource file: zero entries, not an error.
			log.Warn().Err(err).Str("path", path).Msg("Skipping malformed resource file")
			return nil
		}
		for _, e := range entries {
			// Only Chinese-bearing entries are authoritative for
			// existing-text lookups; translated variants are not.
			if e.Name != "" && textutil.ContainsChinese(e.Text) {
				r.existing[e.Text] = "ResStrings." + e.Name
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan resource files: %w", err)
	}

	log.Debug().Int("count", len(r.existing)).Msg("Loaded existing resources")
	return nil
}

func isStringsFile(path string) bool {
	dir := filepath.ToSlash(filepath.Dir(path))
	base := filepath.Base(path)
	return strings.HasSuffix(dir, stringsDirSuffix) &&
		strings.HasPrefix(base, "strings_") && strings.HasSuffix(base, ".xml")
}

func (r *Registry) loadIgnored(root string) error {
	path := filepath.Join(root, IgnoreFileName)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Warn().Err(err).Str("path", path).Msg("Cannot read ignore list, treating as empty")
		return nil
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Malformed ignore list, treating as empty")
		return nil
	}
	for _, t := range texts {
		r.ignored[t] = struct{}{}
	}
	return nil
}

// Reference returns the assigned reference expression for text, if the text
// was externalized in a previous run.
func (r *Registry) Reference(text string) (string, bool) {
	ref, ok := r.existing[text]
	return ref, ok
}

// IsIgnored reports whether the operator excluded text from extraction.
func (r *Registry) IsIgnored(text string) bool {
	_, ok := r.ignored[text]
	return ok
}

// IgnoredTexts returns the current ignore set, sorted for stable output.
func (r *Registry) IgnoredTexts() []string {
	out := make([]string, 0, len(r.ignored))
	for t := range r.ignored {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SaveIgnored persists the union of the loaded ignore set and the given
// texts as a JSON array under root.
func SaveIgnored(fs afero.Fs, root string, texts []string) error {
	merged := make(map[string]struct{})

	path := filepath.Join(root, IgnoreFileName)
	if data, err := afero.ReadFile(fs, path); err == nil {
		var prior []string
		if err := json.Unmarshal(data, &prior); err == nil {
			for _, t := range prior {
				merged[t] = struct{}{}
			}
		}
	}
	for _, t := range texts {
		merged[t] = struct{}{}
	}

	sorted := make([]string, 0, len(merged))
	for t := range merged {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ignore list: %w", err)
	}
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write ignore list: %w", err)
	}
	return nil
}
