// Package hooks loads the three customization points of the tool: how a
// reference expression, an import line and a resource-file text are
// rendered. Custom behavior comes from a user JavaScript snippet evaluated
// in a restricted otto VM; anything the script does not override keeps its
// built-in default.
package hooks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robertkrimen/otto"
	"github.com/rs/zerolog/log"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/xmlres"
)

// Expected function names inside a hook script.
const (
	refFuncName    = "formatReference"
	importFuncName = "formatImport"
	xmlFuncName    = "formatXmlText"
)

// ReferenceFunc renders the expression that replaces a literal in source.
type ReferenceFunc func(resourceName string, args []record.PlaceholderArg, filePath string) (string, error)

// ImportFunc renders the import line inserted into a rewritten file.
type ImportFunc func(moduleName, filePath string) (string, error)

// Hooks bundles the three formatting functions used by the merger and the
// rewriter. Each is independently overridable.
type Hooks struct {
	FormatReference ReferenceFunc
	FormatImport    ImportFunc
	FormatXMLText   xmlres.TextFormatter
}

// DefaultReference renders ResStrings.<name>, with a .format(...) call when
// the literal carried placeholders. Each arg value is parenthesized and
// stringified so arbitrary expressions stay legal call arguments:
//
//	ResStrings.days_left.format(count = (count).toString())
func DefaultReference(resourceName string, args []record.PlaceholderArg, _ string) (string, error) {
	if len(args) == 0 {
		return "ResStrings." + resourceName, nil
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%s = (%s).toString()", a.Name, a.ValueExpr)
	}
	return fmt.Sprintf("ResStrings.%s.format(%s)", resourceName, strings.Join(parts, ", ")), nil
}

// DefaultImport renders the ResStrings import for a module.
func DefaultImport(moduleName, _ string) (string, error) {
	return fmt.Sprintf("import %s.strings.ResStrings", moduleName), nil
}

// Defaults returns the built-in hook set.
func Defaults() *Hooks {
	return &Hooks{
		FormatReference: DefaultReference,
		FormatImport:    DefaultImport,
		FormatXMLText:   xmlres.NormalizeText,
	}
}

// Load evaluates scriptSource and returns the resulting hook set. An empty
// source returns the defaults. A script that fails to evaluate also returns
// the defaults, together with the evaluation error so the caller can warn;
// the error is never fatal. Exported names that are missing or not callable
// fall back individually.
func Load(scriptSource string) (*Hooks, error) {
	h := Defaults()
	if strings.TrimSpace(scriptSource) == "" {
		return h, nil
	}

	vm := newSandbox()
	if _, err := vm.Run(scriptSource); err != nil {
		return Defaults(), fmt.Errorf("evaluate hook script: %w", err)
	}

	if fn := exportedFunc(vm, refFuncName); fn != nil {
		h.FormatReference = func(resourceName string, args []record.PlaceholderArg, filePath string) (string, error) {
			return callString(vm, *fn, resourceName, argList(args), filePath)
		}
	}
	if fn := exportedFunc(vm, importFuncName); fn != nil {
		h.FormatImport = func(moduleName, filePath string) (string, error) {
			return callString(vm, *fn, moduleName, filePath)
		}
	}
	if fn := exportedFunc(vm, xmlFuncName); fn != nil {
		h.FormatXMLText = func(text string, args []record.PlaceholderArg) string {
			out, err := callString(vm, *fn, text, argList(args))
			if err != nil {
				// Per-record fallback: a raising hook never aborts a merge.
				log.Warn().Err(err).Str("hook", xmlFuncName).Msg("Hook failed, using default XML formatting")
				return xmlres.NormalizeText(text, args)
			}
			return out
		}
	}

	return h, nil
}

// newSandbox builds an otto VM exposing only enumerated helpers. The VM has
// no filesystem, network or module-loading capability; the regex utilities
// are the single whitelisted pattern-matching surface.
func newSandbox() *otto.Otto {
	vm := otto.New()

	vm.Set("regexMatch", func(pattern, s string) bool {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(s)
	})
	vm.Set("regexReplace", func(pattern, s, repl string) string {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return s
		}
		return re.ReplaceAllString(s, repl)
	})
	vm.Set("regexFind", func(pattern, s string) string {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return ""
		}
		return re.FindString(s)
	})

	return vm
}

func exportedFunc(vm *otto.Otto, name string) *otto.Value {
	v, err := vm.Get(name)
	if err != nil || !v.IsFunction() {
		return nil
	}
	return &v
}

func callString(vm *otto.Otto, fn otto.Value, args ...interface{}) (string, error) {
	result, err := fn.Call(otto.UndefinedValue(), args...)
	if err != nil {
		return "", fmt.Errorf("call hook: %w", err)
	}
	if !result.IsString() {
		return "", fmt.Errorf("hook returned %s, want string", result.Class())
	}
	return result.String(), nil
}

// argList converts placeholder args into plain maps otto can marshal into
// script-side objects.
func argList(args []record.PlaceholderArg) []map[string]interface{} {
	out := make([]map[string]interface{}, len(args))
	for i, a := range args {
		out[i] = map[string]interface{}{
			"name":            a.Name,
			"valueExpression": a.ValueExpr,
		}
	}
	return out
}
