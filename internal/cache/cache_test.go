package cache

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	c := New(fs, "proj/"+FileName)
	c.Set("保存成功", "save_ok", "Saved")
	require.NoError(t, c.Save())

	reloaded := New(fs, "proj/"+FileName)
	reloaded.Load()

	entry, ok := reloaded.Get("保存成功")
	require.True(t, ok)
	assert.Equal(t, "save_ok", entry.ResourceName)
	assert.Equal(t, "Saved", entry.Translation)

	_, ok = reloaded.Get("删除失败")
	assert.False(t, ok)
}

func TestCacheMissingFileIsEmpty(t *testing.T) {
	c := New(afero.NewMemMapFs(), "proj/"+FileName)
	c.Load()
	assert.Equal(t, 0, c.Len())
}

func TestCacheMalformedFileIsDiscarded(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "proj/"+FileName, []byte("{nope"), 0644))

	c := New(fs, "proj/"+FileName)
	c.Load()
	assert.Equal(t, 0, c.Len())
}
