package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "downloads", cfg.WorkDir)
	assert.Equal(t, "win_templates_v2", cfg.Templates.WinDir)
	assert.Equal(t, "lose_templates_v2", cfg.Templates.LoseDir)
	assert.Equal(t, "result_summary.csv", cfg.ResultLog.Path)
	assert.Equal(t, "360p", cfg.Source.Quality)
	assert.Empty(t, cfg.ResultLog.DatabaseURL)

	d, err := cfg.SegmentDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
work_dir: /tmp/sv
templates:
  win_dir: wins
ffmpeg:
  threads: 2
  segment_time: "120"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sv", cfg.WorkDir)
	assert.Equal(t, "wins", cfg.Templates.WinDir)
	assert.Equal(t, "lose_templates_v2", cfg.Templates.LoseDir)
	assert.Equal(t, 2, cfg.FFmpeg.Threads)

	d, err := cfg.SegmentDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "work_dir: from-file\n")
	t.Setenv("SVSORTER_WORK_DIR", "from-env")
	t.Setenv("SVSORTER_DATABASE_URL", "postgres://localhost/sv")
	t.Setenv("SVSORTER_FFMPEG_THREADS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.WorkDir)
	assert.Equal(t, "postgres://localhost/sv", cfg.ResultLog.DatabaseURL)
	assert.Equal(t, 8, cfg.FFmpeg.Threads)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, "ffmpeg:\n  segment_time: soon\n"))
	assert.ErrorContains(t, err, "segment_time")

	_, err = Load(writeConfig(t, "ffmpeg:\n  segment_time: \"0\"\n"))
	assert.ErrorContains(t, err, "positive")

	_, err = Load(writeConfig(t, "work_dir: [\n"))
	assert.Error(t, err)

	t.Setenv("SVSORTER_FFMPEG_THREADS", "many")
	_, err = Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Metrics.Textfile = "/var/lib/node_exporter/svsorter.prom"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestContext(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorkDir = "elsewhere"

	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
	assert.Equal(t, "downloads", FromContext(context.Background()).WorkDir)
}
