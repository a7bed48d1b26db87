// Package cache persists past translation results so repeated runs do not
// re-translate literals the model has already handled.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
)

// FileName is the cache file kept next to the project config under the
// scanned root.
const FileName = ".string-extractor-cache.json"

// Entry is one cached assignment for a source text.
type Entry struct {
	Source       string `json:"source"`
	ResourceName string `json:"resource_name"`
	Translation  string `json:"translation"`
}

// TranslationCache is an in-memory map of source-text hashes to past
// assignments, loaded from and flushed to a JSON file.
type TranslationCache struct {
	fs   afero.Fs
	path string

	mu     sync.RWMutex
	memory map[string]Entry // hash → entry
}

// New creates a cache backed by the given file path.
func New(fs afero.Fs, path string) *TranslationCache {
	return &TranslationCache{
		fs:     fs,
		path:   path,
		memory: make(map[string]Entry),
	}
}

// Load reads the cache file into memory. A missing file is an empty cache;
// a malformed one is logged and discarded.
func (c *TranslationCache) Load() {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Malformed translation cache, starting fresh")
		return
	}

	c.mu.Lock()
	c.memory = entries
	c.mu.Unlock()
	log.Debug().Int("count", len(entries)).Msg("Loaded translation cache")
}

// Get retrieves a cached assignment for a source text.
func (c *TranslationCache) Get(sourceText string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.memory[textutil.Hash(sourceText)]
	return e, ok
}

// Set stores an assignment in memory. Call Save to persist.
func (c *TranslationCache) Set(sourceText, resourceName, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory[textutil.Hash(sourceText)] = Entry{
		Source:       sourceText,
		ResourceName: resourceName,
		Translation:  translation,
	}
}

// Len returns the number of cached entries.
func (c *TranslationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}

// Save writes the cache back to its file.
func (c *TranslationCache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.memory, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode translation cache: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write translation cache: %w", err)
	}
	return nil
}
