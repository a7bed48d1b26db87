package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(afero.NewMemMapFs(), "proj")

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, "en", cfg.TargetLanguage)
	assert.Equal(t, DefaultSourceTemplate, cfg.SourceTemplate)
	assert.Equal(t, DefaultTargetTemplate, cfg.TargetTemplate)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_NAME", "gpt-4o")
	t.Setenv("BATCH_SIZE", "20")
	t.Setenv("TARGET_LANGUAGE", "ja")

	cfg := Load(afero.NewMemMapFs(), "proj")
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, "ja", cfg.TargetLanguage)
}

func TestProjectFileOverlay(t *testing.T) {
	fs := afero.NewMemMapFs()
	yaml := `target_language: ko
source_xml_template: "{module_name}/res/strings_zh.xml"
batch_size: 5
hook_script: hooks.js
`
	require.NoError(t, afero.WriteFile(fs, "proj/"+ProjectFileName, []byte(yaml), 0644))

	cfg := Load(fs, "proj")
	assert.Equal(t, "ko", cfg.TargetLanguage)
	assert.Equal(t, "{module_name}/res/strings_zh.xml", cfg.SourceTemplate)
	assert.Equal(t, DefaultTargetTemplate, cfg.TargetTemplate, "unset fields keep defaults")
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, "hooks.js", cfg.HookScriptPath)
}

func TestMalformedProjectFileIsIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "proj/"+ProjectFileName, []byte(":\n  - ]["), 0644))

	cfg := Load(fs, "proj")
	assert.Equal(t, "en", cfg.TargetLanguage)
}

func TestInvalidLanguageTagFallsBack(t *testing.T) {
	t.Setenv("TARGET_LANGUAGE", "not a language")

	cfg := Load(afero.NewMemMapFs(), "proj")
	assert.Equal(t, "en", cfg.TargetLanguage)
}

func TestExpandTemplate(t *testing.T) {
	assert.Equal(t, "app/src/commonMain/libres/strings/strings_en.xml",
		ExpandTemplate("{module_name}/src/commonMain/libres/strings/strings_{target_language}.xml", "app", "en"))
	assert.Equal(t, "app/strings_ja.xml", ExpandTemplate("{module_name}/strings_{lang}.xml", "app", "ja"))
	assert.Equal(t, "app/strings_ja.xml", ExpandTemplate("{module_name}/strings_{target_lang}.xml", "app", "ja"))
}
