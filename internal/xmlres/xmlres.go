// Package xmlres reads and merges Android-style string resource files
// (strings_<lang>.xml). Merging is append-only: bytes of entries that were
// already in the file are never touched, new entries are spliced in before
// the closing tag.
package xmlres

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
)

const (
	header      = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"
	openTag     = "<resources>"
	closeTag    = "</resources>"
	entryIndent = "    "
)

// Entry is one name→text mapping inside a resource file.
type Entry struct {
	Name string
	Text string

	// Args drive placeholder normalization when the entry is appended.
	Args []record.PlaceholderArg
}

// TextFormatter renders the XML text content of a new entry, normalizing
// embedded placeholder expressions. The hook loader may supply a custom one.
type TextFormatter func(text string, args []record.PlaceholderArg) string

// resourcesDoc mirrors the subset of the format we need for reading.
// Unknown elements and attributes are only ever preserved verbatim by the
// splicing writer, never round-tripped through this struct.
type resourcesDoc struct {
	XMLName xml.Name     `xml:"resources"`
	Strings []stringElem `xml:"string"`
}

type stringElem struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

// ReadEntries parses a resource file into its entries. A missing file
// returns nil entries and a nil error; a malformed file returns an error
// (callers treat it as empty).
func ReadEntries(fs afero.Fs, path string) ([]Entry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read resource file: %w", err)
	}
	return parseEntries(data)
}

func parseEntries(data []byte) ([]Entry, error) {
	var doc resourcesDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse resource file: %w", err)
	}
	entries := make([]Entry, 0, len(doc.Strings))
	for _, s := range doc.Strings {
		entries = append(entries, Entry{Name: s.Name, Text: s.Text})
	}
	return entries, nil
}

// NormalizeText is the default TextFormatter: every placeholder expression
// in the text is rewritten to the braced identifier form ${name} of its
// assigned arg, so resource files always carry the canonical syntax. The
// bare form only matches whole identifiers, so $count never rewrites the
// prefix of $counter.
func NormalizeText(text string, args []record.PlaceholderArg) string {
	for _, a := range args {
		canonical := "${" + a.Name + "}"
		text = strings.ReplaceAll(text, "${"+a.ValueExpr+"}", canonical)
		if textutil.IsIdentifier(a.ValueExpr) {
			re := regexp.MustCompile(`\$` + regexp.QuoteMeta(a.ValueExpr) + `\b`)
			text = re.ReplaceAllLiteralString(text, canonical)
		}
	}
	return text
}

// MergeInto appends the genuinely new entries to the resource file at path,
// creating the file if needed. Entries whose name already exists in the
// file are skipped, never overwritten. Returns whether the file was
// modified. A nil format falls back to NormalizeText.
func MergeInto(fs afero.Fs, path string, entries []Entry, format TextFormatter) (bool, error) {
	if format == nil {
		format = NormalizeText
	}

	original, err := afero.ReadFile(fs, path)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read resource file: %w", err)
	}

	existingNames := make(map[string]struct{})
	if exists {
		parsed, perr := parseEntries(original)
		if perr != nil {
			// Malformed file: start a fresh document rather than failing.
			log.Warn().Err(perr).Str("path", path).Msg("Malformed resource file, starting new document")
			exists = false
		} else {
			for _, e := range parsed {
				existingNames[e.Name] = struct{}{}
			}
		}
	}

	var appended []Entry
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if _, dup := existingNames[e.Name]; dup {
			log.Debug().Str("name", e.Name).Str("path", path).Msg("Entry already present, skipping")
			continue
		}
		existingNames[e.Name] = struct{}{}
		appended = append(appended, e)
	}
	if len(appended) == 0 {
		return false, nil
	}

	var out []byte
	if exists {
		out, err = splice(original, appended, format)
		if err != nil {
			return false, err
		}
	} else {
		out = newDocument(appended, format)
	}

	if err := afero.WriteFile(fs, path, out, 0644); err != nil {
		return false, fmt.Errorf("write resource file: %w", err)
	}
	return true, nil
}

// splice inserts rendered entries immediately before the closing
// </resources> tag, leaving every byte of the existing document intact and
// avoiding blank lines or stray indentation before the closing tag.
func splice(original []byte, entries []Entry, format TextFormatter) ([]byte, error) {
	idx := bytes.LastIndex(original, []byte(closeTag))
	if idx < 0 {
		return nil, fmt.Errorf("resource file has no %s tag", closeTag)
	}

	head := original[:idx]
	tail := original[idx:]

	var b bytes.Buffer
	b.Write(bytes.TrimRight(head, " \t\n\r"))
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(renderEntry(e, format))
	}
	b.Write(tail)
	return b.Bytes(), nil
}

func newDocument(entries []Entry, format TextFormatter) []byte {
	var b bytes.Buffer
	b.WriteString(header)
	b.WriteString(openTag)
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(renderEntry(e, format))
	}
	b.WriteString(closeTag)
	b.WriteByte('\n')
	return b.Bytes()
}

func renderEntry(e Entry, format TextFormatter) string {
	text := format(e.Text, e.Args)
	return fmt.Sprintf("%s<string name=\"%s\">%s</string>\n",
		entryIndent, escapeAttr(e.Name), escapeText(text))
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
