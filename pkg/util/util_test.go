package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatDuration(0))
	assert.Equal(t, "00:00:09.000", FormatDuration(9*time.Second))
	assert.Equal(t, "01:02:03.500", FormatDuration(time.Hour+2*time.Minute+3500*time.Millisecond))
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Duration{
		"45.5":     45500 * time.Millisecond,
		"05:00":    5 * time.Minute,
		"00:05:00": 5 * time.Minute,
		"1:00:01":  time.Hour + time.Second,
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "abc", "1:2:3:4", "-5"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFrameRate(t *testing.T) {
	assert.Equal(t, 30.0, ParseFrameRate("30/1"))
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 0.001)
	assert.Equal(t, 0.0, ParseFrameRate("30"))
	assert.Equal(t, 0.0, ParseFrameRate("30/0"))
}

func TestCountWithExt(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755))

	n, err := CountWithExt(dir, ".jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = CountWithExt(filepath.Join(dir, "missing"), ".jpg")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
