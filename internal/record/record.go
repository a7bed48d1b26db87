// Package record defines the literal occurrence model shared by the
// extractor, the resource merger and the source rewriter.
package record

import (
	"fmt"
	"path"
	"strings"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/catalog"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
)

// DefaultModule is used when an origin path has no directory segment.
const DefaultModule = "common"

// PlaceholderArg is one placeholder inside a literal: Name is a legal
// identifier usable in generated references, ValueExpr the original Kotlin
// expression the placeholder wrapped.
type PlaceholderArg struct {
	Name      string `json:"name"`
	ValueExpr string `json:"value_expression"`
}

// LiteralRecord is one discovered Chinese literal. ResourceName and
// Translation stay empty until the translation collaborator assigns them;
// the merger and rewriter only ever read them.
type LiteralRecord struct {
	Text            string           `json:"text"`
	OriginPath      string           `json:"file_path"`
	LineNumber      int              `json:"line_number"`
	Context         string           `json:"context"`
	ModuleName      string           `json:"module_name"`
	ResourceName    string           `json:"resource_name"`
	Translation     string           `json:"translation"`
	PlaceholderArgs []PlaceholderArg `json:"placeholder_args,omitempty"`
}

// New builds a record for text found at originPath:line, deriving the
// module name from the first path segment and parsing placeholders.
func New(text, originPath string, line int, context string) *LiteralRecord {
	return &LiteralRecord{
		Text:            text,
		OriginPath:      originPath,
		LineNumber:      line,
		Context:         context,
		ModuleName:      ModuleOf(originPath),
		PlaceholderArgs: ParsePlaceholders(text),
	}
}

// ModuleOf returns the first forward-slash segment of a relative path,
// or DefaultModule when there is none.
func ModuleOf(originPath string) string {
	p := path.Clean(strings.TrimPrefix(originPath, "/"))
	if p == "." || p == "" {
		return DefaultModule
	}
	if i := strings.IndexByte(p, '/'); i > 0 {
		return p[:i]
	}
	return DefaultModule
}

// UniqueID identifies the logical resource: two records with the same
// module and text are the same resource no matter where they occur.
func (r *LiteralRecord) UniqueID() string {
	return r.ModuleName + ":" + r.Text
}

// Args returns the effective placeholder args for formatting: caller-supplied
// args when present, otherwise the ones parsed at extraction time.
func (r *LiteralRecord) Args() []PlaceholderArg {
	if len(r.PlaceholderArgs) > 0 {
		return r.PlaceholderArgs
	}
	return ParsePlaceholders(r.Text)
}

// ParsePlaceholders extracts placeholder args from a literal in order of
// appearance. The braced form ${expr} wraps any expression; the bare form
// $ident wraps a single identifier. When a braced expression is not itself
// a legal identifier the arg is named argN (1-based) so that generated
// references always carry a legal parameter name.
func ParsePlaceholders(text string) []PlaceholderArg {
	type span struct {
		start, end int
		expr       string
	}
	var spans []span

	for _, loc := range catalog.BracedPlaceholder.FindAllStringSubmatchIndex(text, -1) {
		spans = append(spans, span{loc[0], loc[1], text[loc[2]:loc[3]]})
	}
	for _, loc := range catalog.BarePlaceholder.FindAllStringSubmatchIndex(text, -1) {
		overlaps := false
		for _, s := range spans {
			if loc[0] >= s.start && loc[0] < s.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			spans = append(spans, span{loc[0], loc[1], text[loc[2]:loc[3]]})
		}
	}

	// Insertion sort by start offset keeps appearance order deterministic.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j-1].start > spans[j].start; j-- {
			spans[j-1], spans[j] = spans[j], spans[j-1]
		}
	}

	var args []PlaceholderArg
	for i, s := range spans {
		name := strings.TrimSpace(s.expr)
		if !textutil.IsIdentifier(name) {
			name = fmt.Sprintf("arg%d", i+1)
		}
		args = append(args, PlaceholderArg{Name: name, ValueExpr: s.expr})
	}
	return args
}

// Set is a deduplicated collection of records keyed by UniqueID.
// First discovery wins; later occurrences of the same logical resource
// are dropped.
type Set struct {
	records map[string]*LiteralRecord
}

// NewSet creates an empty record set.
func NewSet() *Set {
	return &Set{records: make(map[string]*LiteralRecord)}
}

// Add inserts a record unless its UniqueID is already present.
// Returns true if the record was inserted.
func (s *Set) Add(r *LiteralRecord) bool {
	id := r.UniqueID()
	if _, exists := s.records[id]; exists {
		return false
	}
	s.records[id] = r
	return true
}

// Get returns the record with the given UniqueID, or nil.
func (s *Set) Get(id string) *LiteralRecord {
	return s.records[id]
}

// Len returns the number of distinct records.
func (s *Set) Len() int {
	return len(s.records)
}

// All returns the records in unspecified order.
func (s *Set) All() []*LiteralRecord {
	out := make([]*LiteralRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}
