package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsChinese(t *testing.T) {
	assert.True(t, ContainsChinese("用户名不能为空"))
	assert.True(t, ContainsChinese("mixed 文本 here"))
	assert.False(t, ContainsChinese("plain ascii"))
	assert.False(t, ContainsChinese(""))
	assert.False(t, ContainsChinese("日本語のかな")) // kana only, no Han
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("count"))
	assert.True(t, IsIdentifier("_private"))
	assert.True(t, IsIdentifier("arg1"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1abc"))
	assert.False(t, IsIdentifier("user.name"))
	assert.False(t, IsIdentifier("a + b"))
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "hello_world", ResourceName("Hello World"))
	assert.Equal(t, "用户名不能为空", ResourceName("用户名不能为空"))

	// Special characters stripped, length capped at 30 runes.
	assert.Equal(t, "save_ok", ResourceName("save ok!!!"))
	long := ResourceName(strings.Repeat("很长的文本", 20))
	assert.Equal(t, 30, len([]rune(long)))

	// Pure punctuation falls back to a stable hash-derived name.
	name := ResourceName("!!!")
	assert.True(t, strings.HasPrefix(name, "text_"))
	assert.Equal(t, name, ResourceName("!!!"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "这是...", Truncate("这是一段长文本", 2))
}
