package rewriter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/hooks"
	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
)

func assigned(text, origin string, name string) *record.LiteralRecord {
	r := record.New(text, origin, 1, "")
	r.ResourceName = name
	return r
}

func TestRewriteReplacesAllOccurrences(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := `package app

import kotlin.math.max

fun f() {
    toast("保存成功")
    log.record("保存成功")
    snack('保存成功')
}
`
	require.NoError(t, afero.WriteFile(fs, "app/A.kt", []byte(src), 0644))

	rw := New(fs, nil)
	modified, err := rw.RewriteFile("app/A.kt", []*record.LiteralRecord{
		assigned("保存成功", "app/A.kt", "save_ok"),
	}, "app")
	require.NoError(t, err)
	assert.True(t, modified)

	data, _ := afero.ReadFile(fs, "app/A.kt")
	content := string(data)

	assert.NotContains(t, content, `"保存成功"`)
	assert.NotContains(t, content, `'保存成功'`)
	assert.Equal(t, 3, strings.Count(content, "ResStrings.save_ok"))

	// Import inserted once, after the last existing import.
	assert.Contains(t, content, "import kotlin.math.max\nimport app.strings.ResStrings\n")
}

func TestRewriteIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "app/A.kt", []byte(`package app
val s = "保存成功"
`), 0644))

	records := []*record.LiteralRecord{assigned("保存成功", "app/A.kt", "save_ok")}
	rw := New(fs, nil)

	modified, err := rw.RewriteFile("app/A.kt", records, "app")
	require.NoError(t, err)
	assert.True(t, modified)

	first, _ := afero.ReadFile(fs, "app/A.kt")

	modified, err = rw.RewriteFile("app/A.kt", records, "app")
	require.NoError(t, err)
	assert.False(t, modified, "second run must be a no-op")

	second, _ := afero.ReadFile(fs, "app/A.kt")
	assert.Equal(t, string(first), string(second))
}

func TestRewriteSkipsUnassignedRecords(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := "package app\nval s = \"未分配\"\n"
	require.NoError(t, afero.WriteFile(fs, "app/A.kt", []byte(src), 0644))

	modified, err := New(fs, nil).RewriteFile("app/A.kt", []*record.LiteralRecord{
		record.New("未分配", "app/A.kt", 2, ""),
	}, "app")
	require.NoError(t, err)
	assert.False(t, modified)

	data, _ := afero.ReadFile(fs, "app/A.kt")
	assert.Equal(t, src, string(data))
}

func TestRewriteFormatsPlaceholderReference(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "app/A.kt", []byte(`package app
val s = "剩余${count}天"
`), 0644))

	modified, err := New(fs, nil).RewriteFile("app/A.kt", []*record.LiteralRecord{
		assigned("剩余${count}天", "app/A.kt", "days_left"),
	}, "app")
	require.NoError(t, err)
	assert.True(t, modified)

	data, _ := afero.ReadFile(fs, "app/A.kt")
	assert.Contains(t, string(data), "ResStrings.days_left.format(count = (count).toString())")
}

func TestRewriteFallsBackOnHookFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "app/A.kt", []byte(`package app
val s = "保存成功"
`), 0644))

	h := hooks.Defaults()
	h.FormatReference = func(string, []record.PlaceholderArg, string) (string, error) {
		return "", fmt.Errorf("boom")
	}

	modified, err := New(fs, h).RewriteFile("app/A.kt", []*record.LiteralRecord{
		assigned("保存成功", "app/A.kt", "save_ok"),
	}, "app")
	require.NoError(t, err)
	assert.True(t, modified)

	data, _ := afero.ReadFile(fs, "app/A.kt")
	assert.Contains(t, string(data), "ResStrings.save_ok")
}

func TestImportInsertionPositions(t *testing.T) {
	t.Run("after package when no imports", func(t *testing.T) {
		out := insertImport("package app\n\nval s = ResStrings.x\n", "import app.strings.ResStrings")
		assert.Equal(t, "package app\nimport app.strings.ResStrings\n\nval s = ResStrings.x\n", out)
	})

	t.Run("top of file when no package", func(t *testing.T) {
		out := insertImport("val s = ResStrings.x\n", "import app.strings.ResStrings")
		assert.Equal(t, "import app.strings.ResStrings\nval s = ResStrings.x\n", out)
	})

	t.Run("already present", func(t *testing.T) {
		in := "package app\nimport app.strings.ResStrings\nval s = ResStrings.x\n"
		assert.Equal(t, in, insertImport(in, "import app.strings.ResStrings"))
	})
}
