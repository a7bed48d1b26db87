package registry

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/config"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/textutil"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/xmlres"
)

// ReferencePair is one aligned source/target translation harvested from
// existing resource files, used as a few-shot example in prompts.
type ReferencePair struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	ResourceName string `json:"resource_name"`
	Module       string `json:"module"`
}

// HarvestReferences walks the top-level modules under root and collects up
// to limit aligned pairs from the source-language and target-language
// resource files named by the path templates. Modules missing either file
// contribute nothing.
func (r *Registry) HarvestReferences(root, sourceTemplate, targetTemplate, targetLanguage string, limit int) []ReferencePair {
	var pairs []ReferencePair

	infos, err := afero.ReadDir(r.fs, root)
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("Cannot list modules for reference harvesting")
		return nil
	}

	for _, info := range infos {
		if !info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		module := info.Name()

		sourcePath := filepath.Join(root, config.ExpandTemplate(sourceTemplate, module, targetLanguage))
		targetPath := filepath.Join(root, config.ExpandTemplate(targetTemplate, module, targetLanguage))

		sourceEntries, err := xmlres.ReadEntries(r.fs, sourcePath)
		if err != nil || len(sourceEntries) == 0 {
			continue
		}
		targetEntries, err := xmlres.ReadEntries(r.fs, targetPath)
		if err != nil || len(targetEntries) == 0 {
			continue
		}

		targetByName := make(map[string]string, len(targetEntries))
		for _, e := range targetEntries {
			targetByName[e.Name] = e.Text
		}

		for _, e := range sourceEntries {
			if !textutil.ContainsChinese(e.Text) {
				continue
			}
			target, ok := targetByName[e.Name]
			if !ok || strings.TrimSpace(target) == "" {
				continue
			}
			pairs = append(pairs, ReferencePair{
				Source:       e.Text,
				Target:       target,
				ResourceName: e.Name,
				Module:       module,
			})
			if len(pairs) >= limit {
				return pairs
			}
		}
	}

	return pairs
}
