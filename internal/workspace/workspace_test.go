package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareCreatesTree(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "downloads"))
	require.NoError(t, l.Prepare())

	expected := []string{
		"splits",
		"screenshots/win", "screenshots/win_top",
		"screenshots/lose", "screenshots/lose_top",
		"screenshots/non_result", "screenshots/non_result_top",
	}
	for _, rel := range expected {
		info, err := os.Stat(filepath.Join(l.Root, filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.True(t, info.IsDir(), rel)
	}
}

func TestPrepareIsDestructive(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "downloads"))
	require.NoError(t, l.Prepare())

	stale := filepath.Join(l.LabelDir(classify.Win), "old.jpg")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0644))

	require.NoError(t, l.Prepare())
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveSource(t *testing.T) {
	l := New(t.TempDir())
	require.NoError(t, l.RemoveSource(), "missing source is fine")

	require.NoError(t, os.WriteFile(l.SourcePath(), []byte("mp4"), 0644))
	require.NoError(t, l.RemoveSource())
	_, err := os.Stat(l.SourcePath())
	assert.True(t, os.IsNotExist(err))
}

func TestContains(t *testing.T) {
	root := t.TempDir()
	l := New(filepath.Join(root, "downloads"))

	assert.True(t, l.Contains(filepath.Join(root, "downloads", "x.mp4")))
	assert.True(t, l.Contains(filepath.Join(root, "downloads")))
	assert.False(t, l.Contains(filepath.Join(root, "video.mp4")))
	assert.False(t, l.Contains(filepath.Join(root, "downloads2", "x.mp4")))
	assert.True(t, l.Contains(filepath.Join(root, "downloads", "..x", "y.mp4")))
}
