// Package catalog holds the matching and exclusion rules used to locate
// Chinese string literals in Kotlin sources. It is pure data: the extractor
// and rewriter interpret these patterns, nothing here touches the filesystem.
package catalog

import "regexp"

// LiteralPatterns match quoted literals containing at least one Han
// character. Order is the match precedence: the double-quoted pattern is
// tried first, so when both patterns could cover overlapping spans on one
// line the double-quoted reading wins.
var LiteralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]*\p{Han}[^"]*)"`),
	regexp.MustCompile(`'([^']*\p{Han}[^']*)'`),
}

// ExcludePatterns mark lines that must not be scanned at all: comments and
// log/print statements. A single match skips the whole line.
var ExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*//`),
	regexp.MustCompile(`^\s*/\*.*?\*/`),
	regexp.MustCompile(`^\s*\*`),
	regexp.MustCompile(`Log\.[dwiev]\s*\(`),
	regexp.MustCompile(`println\s*\(`),
	regexp.MustCompile(`print\s*\(`),
}

// ReferencePattern matches literals that were already externalized in a
// previous run, e.g. ResStrings.login_failed or ResStrings.x.format(...).
var ReferencePattern = regexp.MustCompile(`ResStrings\.\w+(?:\.format\([^)]*\))?`)

// Placeholder syntaxes inside a literal: the braced form wraps an arbitrary
// Kotlin expression, the bare form a single identifier.
var (
	BracedPlaceholder = regexp.MustCompile(`\$\{([^}]+)\}`)
	BarePlaceholder   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// ExcludedDirs are path segments that disqualify a file from scanning
// regardless of the inclusion patterns (build output and tool caches).
var ExcludedDirs = []string{"build", ".gradle", ".git", ".idea", "node_modules"}
