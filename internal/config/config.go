package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ProjectFileName is the optional per-project configuration file, looked up
// under the scanned root.
const ProjectFileName = ".string-extractor.yaml"

// Default resource-file path templates, matching the libres layout of
// Kotlin Multiplatform projects.
const (
	DefaultSourceTemplate = "{module_name}/src/commonMain/libres/strings/strings_zh.xml"
	DefaultTargetTemplate = "{module_name}/src/commonMain/libres/strings/strings_{target_language}.xml"
)

type Config struct {
	APIKey                string
	BaseURL               string
	Model                 string
	BatchSize             int
	MaxConcurrentAPICalls int

	TargetLanguage string
	SourceTemplate string
	TargetTemplate string
	ReferenceLimit int
	HookScriptPath string
	CustomPrompt   string
}

// projectFile is the YAML shape of ProjectFileName. Only set fields
// override the environment-derived config.
type projectFile struct {
	TargetLanguage string `yaml:"target_language"`
	SourceTemplate string `yaml:"source_xml_template"`
	TargetTemplate string `yaml:"target_xml_template"`
	ReferenceLimit int    `yaml:"reference_limit"`
	HookScript     string `yaml:"hook_script"`
	Model          string `yaml:"model"`
	BatchSize      int    `yaml:"batch_size"`
	CustomPrompt   string `yaml:"custom_prompt"`
}

// Load builds the configuration from the environment (with .env support)
// and overlays the project YAML file under root when present. A malformed
// project file is logged and ignored.
func Load(fs afero.Fs, root string) *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		APIKey:                getEnv("OPENAI_API_KEY", ""),
		BaseURL:               getEnv("OPENAI_BASE_URL", ""),
		Model:                 getEnv("MODEL_NAME", "gpt-4o-mini"),
		BatchSize:             getEnvInt("BATCH_SIZE", 50),
		MaxConcurrentAPICalls: getEnvInt("MAX_CONCURRENT_API_CALLS", 3),
		TargetLanguage:        getEnv("TARGET_LANGUAGE", "en"),
		SourceTemplate:        DefaultSourceTemplate,
		TargetTemplate:        DefaultTargetTemplate,
		ReferenceLimit:        10,
	}

	cfg.overlayProjectFile(fs, root)

	if _, err := language.Parse(cfg.TargetLanguage); err != nil {
		log.Warn().Str("language", cfg.TargetLanguage).Msg("Unrecognized target language tag, using en")
		cfg.TargetLanguage = "en"
	}

	return cfg
}

func (c *Config) overlayProjectFile(fs afero.Fs, root string) {
	path := filepath.Join(root, ProjectFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Malformed project config, ignoring")
		return
	}

	if pf.TargetLanguage != "" {
		c.TargetLanguage = pf.TargetLanguage
	}
	if pf.SourceTemplate != "" {
		c.SourceTemplate = pf.SourceTemplate
	}
	if pf.TargetTemplate != "" {
		c.TargetTemplate = pf.TargetTemplate
	}
	if pf.ReferenceLimit > 0 {
		c.ReferenceLimit = pf.ReferenceLimit
	}
	if pf.HookScript != "" {
		c.HookScriptPath = pf.HookScript
	}
	if pf.Model != "" {
		c.Model = pf.Model
	}
	if pf.BatchSize > 0 {
		c.BatchSize = pf.BatchSize
	}
	if pf.CustomPrompt != "" {
		c.CustomPrompt = pf.CustomPrompt
	}
}

// ExpandTemplate substitutes {module_name} and {target_language} (also
// accepted as {target_lang} or {lang}) in a resource path template.
func ExpandTemplate(template, moduleName, targetLanguage string) string {
	r := strings.NewReplacer(
		"{module_name}", moduleName,
		"{target_language}", targetLanguage,
		"{target_lang}", targetLanguage,
		"{lang}", targetLanguage,
	)
	return r.Replace(template)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
