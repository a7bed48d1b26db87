package translation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/registry"
)

const systemPrompt = `You are a professional software localization expert for Chinese mobile and desktop applications.`

// defaultPromptTemplate asks for translations plus snake_case resource
// names in one JSON array, aligned with the input order. The slots
// {target_language}, {reference_translations} and {source_strings} are
// substituted at build time; a custom template must carry the same slots.
const defaultPromptTemplate = `Translate the following Chinese UI strings to {target_language}.

Rules:
1. Preserve ALL placeholders such as ${count} exactly as they appear.
2. Keep translations concise and natural for UI text.
3. For each string also propose a short snake_case resource_name.
4. Respond with ONLY a JSON array, one object per input string, in the same
   order: [{"translation": "...", "resource_name": "..."}]

Reference translations from this project:
{reference_translations}

Strings to translate:
{source_strings}`

// PromptBuilder renders the system and user prompts for a batch.
type PromptBuilder struct {
	template       string
	targetLanguage string
	references     []registry.ReferencePair
}

// NewPromptBuilder creates a builder. An empty template uses the default;
// references may be nil.
func NewPromptBuilder(template, targetLanguage string, references []registry.ReferencePair) *PromptBuilder {
	if strings.TrimSpace(template) == "" {
		template = defaultPromptTemplate
	}
	return &PromptBuilder{
		template:       template,
		targetLanguage: targetLanguage,
		references:     references,
	}
}

// SystemPrompt returns the fixed system message.
func (pb *PromptBuilder) SystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt substitutes the template slots for one batch of texts.
func (pb *PromptBuilder) BuildUserPrompt(texts []string) (string, error) {
	sources, err := json.Marshal(texts)
	if err != nil {
		return "", fmt.Errorf("marshal source strings: %w", err)
	}

	r := strings.NewReplacer(
		"{target_language}", pb.targetLanguage,
		"{reference_translations}", pb.renderReferences(),
		"{source_strings}", string(sources),
	)
	return r.Replace(pb.template), nil
}

func (pb *PromptBuilder) renderReferences() string {
	if len(pb.references) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, ref := range pb.references {
		sb.WriteString(fmt.Sprintf("• %s → %s (resource_name: %s)\n", ref.Source, ref.Target, ref.ResourceName))
	}
	return strings.TrimRight(sb.String(), "\n")
}
