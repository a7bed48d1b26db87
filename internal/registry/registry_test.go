package registry

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zhDoc = `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="username_empty">用户名不能为空</string>
    <string name="ok">OK</string>
</resources>
`

const enDoc = `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="username_empty">Username must not be empty</string>
</resources>
`

func projectFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := "proj/app/src/commonMain/libres/strings"
	require.NoError(t, afero.WriteFile(fs, dir+"/strings_zh.xml", []byte(zhDoc), 0644))
	require.NoError(t, afero.WriteFile(fs, dir+"/strings_en.xml", []byte(enDoc), 0644))
	return fs
}

func TestLoadExistingResources(t *testing.T) {
	reg, err := Load(projectFs(t), "proj")
	require.NoError(t, err)

	ref, ok := reg.Reference("用户名不能为空")
	assert.True(t, ok)
	assert.Equal(t, "ResStrings.username_empty", ref)

	// Non-Chinese entries are not authoritative for lookups.
	_, ok = reg.Reference("OK")
	assert.False(t, ok)

	// Translated variants do not register source texts either.
	_, ok = reg.Reference("Username must not be empty")
	assert.False(t, ok)
}

func TestLoadMissingRootIsFatal(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nowhere")
	assert.Error(t, err)
}

func TestLoadMalformedResourceFileContributesNothing(t *testing.T) {
	fs := projectFs(t)
	broken := "proj/core/src/commonMain/libres/strings/strings_zh.xml"
	require.NoError(t, afero.WriteFile(fs, broken, []byte("<resources"), 0644))

	reg, err := Load(fs, "proj")
	require.NoError(t, err)

	_, ok := reg.Reference("用户名不能为空")
	assert.True(t, ok, "well-formed files still load")
}

func TestIgnoreListRoundTrip(t *testing.T) {
	fs := projectFs(t)

	require.NoError(t, SaveIgnored(fs, "proj", []string{"测试", "调试"}))
	require.NoError(t, SaveIgnored(fs, "proj", []string{"调试", "示例"}))

	reg, err := Load(fs, "proj")
	require.NoError(t, err)

	assert.True(t, reg.IsIgnored("测试"))
	assert.True(t, reg.IsIgnored("调试"))
	assert.True(t, reg.IsIgnored("示例"))
	assert.False(t, reg.IsIgnored("正式"))

	// Saves union rather than overwrite.
	assert.Equal(t, []string{"示例", "测试", "调试"}, reg.IgnoredTexts())
}

func TestMalformedIgnoreListTreatedAsEmpty(t *testing.T) {
	fs := projectFs(t)
	require.NoError(t, afero.WriteFile(fs, "proj/"+IgnoreFileName, []byte("{not json"), 0644))

	reg, err := Load(fs, "proj")
	require.NoError(t, err)
	assert.Empty(t, reg.IgnoredTexts())
}

func TestHarvestReferences(t *testing.T) {
	fs := projectFs(t)
	reg, err := Load(fs, "proj")
	require.NoError(t, err)

	pairs := reg.HarvestReferences("proj",
		"{module_name}/src/commonMain/libres/strings/strings_zh.xml",
		"{module_name}/src/commonMain/libres/strings/strings_{target_language}.xml",
		"en", 10)

	require.Len(t, pairs, 1)
	assert.Equal(t, "用户名不能为空", pairs[0].Source)
	assert.Equal(t, "Username must not be empty", pairs[0].Target)
	assert.Equal(t, "username_empty", pairs[0].ResourceName)
	assert.Equal(t, "app", pairs[0].Module)
}

func TestHarvestReferencesHonorsLimit(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "proj/app/src/commonMain/libres/strings"
	zh := `<resources>
    <string name="a">甲</string>
    <string name="b">乙</string>
    <string name="c">丙</string>
</resources>`
	en := `<resources>
    <string name="a">A</string>
    <string name="b">B</string>
    <string name="c">C</string>
</resources>`
	require.NoError(t, afero.WriteFile(fs, dir+"/strings_zh.xml", []byte(zh), 0644))
	require.NoError(t, afero.WriteFile(fs, dir+"/strings_en.xml", []byte(en), 0644))

	reg, err := Load(fs, "proj")
	require.NoError(t, err)

	pairs := reg.HarvestReferences("proj",
		"{module_name}/src/commonMain/libres/strings/strings_zh.xml",
		"{module_name}/src/commonMain/libres/strings/strings_{lang}.xml",
		"en", 2)
	assert.Len(t, pairs, 2)
}
