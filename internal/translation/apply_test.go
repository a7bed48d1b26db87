package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FunnySaltyFish/android-kmp-cmp-string-extractor/internal/record"
)

func TestApplyResults(t *testing.T) {
	records := []*record.LiteralRecord{
		record.New("保存成功", "app/A.kt", 1, ""),
		record.New("删除失败", "app/A.kt", 2, ""),
		record.New("剩余${count}天", "app/A.kt", 3, ""),
		record.New("多余的", "app/A.kt", 4, ""),
	}

	results := []Result{
		{Translation: "Saved", ResourceName: "save_ok"},
		{}, // model skipped this index
		{
			Translation:  "${count} days left",
			ResourceName: "days_left",
			PlaceholderArgs: []record.PlaceholderArg{
				{Name: "days", ValueExpr: "count"},
			},
		},
		// no result at index 3
	}

	applied, failures := ApplyResults(records, results)

	assert.Equal(t, 2, applied)
	require.Len(t, failures, 2)

	assert.Equal(t, "save_ok", records[0].ResourceName)
	assert.Equal(t, "Saved", records[0].Translation)

	// Failed indexes stay unassigned and do not abort the batch.
	assert.Empty(t, records[1].ResourceName)
	assert.Empty(t, records[3].ResourceName)

	// Caller-supplied placeholder args replace the parsed ones.
	require.Len(t, records[2].PlaceholderArgs, 1)
	assert.Equal(t, "days", records[2].PlaceholderArgs[0].Name)
}

func TestApplyResultsNameFallback(t *testing.T) {
	records := []*record.LiteralRecord{record.New("保存成功", "app/A.kt", 1, "")}
	results := []Result{{Translation: "Saved"}}

	applied, failures := ApplyResults(records, results)
	assert.Equal(t, 1, applied)
	assert.Empty(t, failures)
	assert.NotEmpty(t, records[0].ResourceName, "missing name derives one from the text")
}

func TestParseResults(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		results, err := parseResults(`[{"translation": "Saved", "resource_name": "save_ok"}]`)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "save_ok", results[0].ResourceName)
	})

	t.Run("array wrapped in prose and fences", func(t *testing.T) {
		raw := "Here are the translations:\n```json\n[{\"translation\": \"Saved\", \"resource_name\": \"save_ok\"}]\n```\nDone!"
		results, err := parseResults(raw)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Saved", results[0].Translation)
	})

	t.Run("no array at all", func(t *testing.T) {
		_, err := parseResults("I cannot help with that.")
		assert.Error(t, err)
	})
}

func TestPromptBuilder(t *testing.T) {
	pb := NewPromptBuilder("", "en", nil)

	prompt, err := pb.BuildUserPrompt([]string{"保存成功", "剩余${count}天"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "to en")
	assert.Contains(t, prompt, `["保存成功","剩余${count}天"]`)
	assert.Contains(t, prompt, "(none)")
	assert.NotContains(t, prompt, "{source_strings}")
}

func TestPromptBuilderCustomTemplate(t *testing.T) {
	pb := NewPromptBuilder("lang={target_language} refs={reference_translations} src={source_strings}", "ja", nil)

	prompt, err := pb.BuildUserPrompt([]string{"你好"})
	require.NoError(t, err)
	assert.Equal(t, `lang=ja refs=(none) src=["你好"]`, prompt)
}
