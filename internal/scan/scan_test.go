package scan

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"testing"
	"time"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/internal/ffmpeg"
	"github.com/kikiluvv/svsorter/internal/metrics"
	"github.com/kikiluvv/svsorter/internal/workspace"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	seconds  map[string]float64
	badFrame map[string]map[int]bool
	extracts []time.Duration
}

func (f *fakeReader) Probe(_ context.Context, path string) (*ffmpeg.VideoInfo, error) {
	sec, ok := f.seconds[path]
	if !ok {
		return nil, errors.New("moov atom not found")
	}
	return &ffmpeg.VideoInfo{FilePath: path, FPS: 30, FrameCount: int(sec * 30)}, nil
}

func (f *fakeReader) ExtractFrame(_ context.Context, path string, offset time.Duration) (image.Image, error) {
	f.extracts = append(f.extracts, offset)
	if f.badFrame[path][int(offset/time.Second)] {
		return nil, ffmpeg.ErrNoFrame
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 20))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.Black)
	return img, nil
}

// scriptedClassifier returns results in order, then repeats the last one.
type scriptedClassifier struct {
	results []classify.Result
	calls   int
}

func (c *scriptedClassifier) Classify(image.Image) classify.Result {
	i := c.calls
	if i >= len(c.results) {
		i = len(c.results) - 1
	}
	c.calls++
	return c.results[i]
}

func newLayout(t *testing.T) *workspace.Layout {
	t.Helper()
	layout := workspace.New(t.TempDir())
	require.NoError(t, layout.Prepare())
	return layout
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var (
	win       = classify.Result{Label: classify.Win, Score: 0.9, WinScore: 0.9, LoseScore: 0.1}
	lose      = classify.Result{Label: classify.Lose, Score: 0.85, WinScore: 0.2, LoseScore: 0.85}
	nonResult = classify.Result{Label: classify.NonResult, Score: 0.3, WinScore: 0.3, LoseScore: 0.1}
)

func TestCooldown(t *testing.T) {
	var c Cooldown
	assert.False(t, c.Skip())
	assert.Equal(t, 0, c.Remaining())

	c.Reset(2)
	assert.True(t, c.Skip())
	assert.True(t, c.Skip())
	assert.False(t, c.Skip())
	assert.Equal(t, 0, c.Remaining())

	c.Reset(-5)
	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Skip())
}

func TestOffsetsCount(t *testing.T) {
	for d := 1; d <= 120; d++ {
		for c := 1; c <= 7; c++ {
			got := Offsets(float64(d), c)
			require.Len(t, got, (d-1)/c+1, "d=%d c=%d", d, c)
			for i, o := range got {
				assert.Equal(t, i*c, o)
			}
		}
	}
}

func TestOffsetsEdgeCases(t *testing.T) {
	assert.Empty(t, Offsets(0, 3))
	assert.Empty(t, Offsets(0.9, 3))
	assert.Empty(t, Offsets(10, 0))
	assert.Equal(t, []int{0, 3, 6}, Offsets(9.9, 3))
	assert.Equal(t, []int{0, 3, 6, 9}, Offsets(10, 3))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "chunk000_t0000_0.900.jpg", FileName(0, 0, 0.9))
	assert.Equal(t, "chunk012_t0297_0.123.jpg", FileName(12, 297, 0.12345))
}

func TestScanSingleWinThenCooldown(t *testing.T) {
	layout := newLayout(t)
	reader := &fakeReader{seconds: map[string]float64{"chunk_000.mp4": 10}}
	cls := &scriptedClassifier{results: []classify.Result{win}}

	s := New(zerolog.Nop(), DefaultConfig(), reader, cls, NewStore(layout), nil)
	res, err := s.Scan(context.Background(), []string{"chunk_000.mp4"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Sampled)
	assert.Equal(t, 1, res.Wins)
	assert.Equal(t, 3, res.CooldownSkips)
	assert.Equal(t, []time.Duration{0}, reader.extracts)
	assert.Equal(t, DefaultCooldown-3, s.Cooldown().Remaining())

	assert.Equal(t, []string{"chunk000_t0000_0.900.jpg"}, listDir(t, layout.LabelDir(classify.Win)))
	assert.Equal(t, []string{"chunk000_t0000_0.900.jpg"}, listDir(t, layout.TopDir(classify.Win)))
	assert.Empty(t, listDir(t, layout.LabelDir(classify.Lose)))
	assert.Empty(t, listDir(t, layout.LabelDir(classify.NonResult)))
}

func TestScanCooldownSpansSegments(t *testing.T) {
	layout := newLayout(t)
	reader := &fakeReader{seconds: map[string]float64{
		"chunk_000.mp4": 10,
		"chunk_001.mp4": 90,
	}}
	cls := &scriptedClassifier{results: []classify.Result{win, nonResult}}

	s := New(zerolog.Nop(), DefaultConfig(), reader, cls, NewStore(layout), metrics.New())
	res, err := s.Scan(context.Background(), []string{"chunk_000.mp4", "chunk_001.mp4"})
	require.NoError(t, err)

	// 3 skips in the first segment, 17 in the second (offsets 0..48).
	assert.Equal(t, DefaultCooldown, res.CooldownSkips)
	assert.Equal(t, 1+30-17, res.Sampled)
	assert.Equal(t, 1, res.Wins)
	assert.Equal(t, 30-17, res.NonResults)
	assert.Equal(t, 51*time.Second, reader.extracts[1])

	files := listDir(t, layout.LabelDir(classify.NonResult))
	require.NotEmpty(t, files)
	assert.Equal(t, "chunk001_t0051_0.300.jpg", files[0])
}

func TestScanLoseAlsoArmsCooldown(t *testing.T) {
	layout := newLayout(t)
	reader := &fakeReader{seconds: map[string]float64{"a.mp4": 30}}
	cls := &scriptedClassifier{results: []classify.Result{nonResult, lose, nonResult}}

	cfg := Config{Cadence: 3 * time.Second, CooldownSamples: 2}
	s := New(zerolog.Nop(), cfg, reader, cls, NewStore(layout), nil)
	res, err := s.Scan(context.Background(), []string{"a.mp4"})
	require.NoError(t, err)

	// offsets 0..27: sampled 0, 3 (lose), skip 6 and 9, sample 12..27.
	assert.Equal(t, 2, res.CooldownSkips)
	assert.Equal(t, 8, res.Sampled)
	assert.Equal(t, 1, res.Losses)
	assert.Equal(t, []string{"chunk000_t0003_0.850.jpg"}, listDir(t, layout.LabelDir(classify.Lose)))
}

func TestScanDecodeFailureLeavesCooldown(t *testing.T) {
	layout := newLayout(t)
	reader := &fakeReader{
		seconds:  map[string]float64{"a.mp4": 10},
		badFrame: map[string]map[int]bool{"a.mp4": {0: true, 6: true}},
	}
	cls := &scriptedClassifier{results: []classify.Result{nonResult}}

	s := New(zerolog.Nop(), DefaultConfig(), reader, cls, NewStore(layout), nil)
	res, err := s.Scan(context.Background(), []string{"a.mp4"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.DecodeFailures)
	assert.Equal(t, 2, res.Sampled)
	assert.Equal(t, 0, res.CooldownSkips)
	assert.Equal(t, 2, cls.calls)
}

func TestScanSkipsUnreadableSegment(t *testing.T) {
	layout := newLayout(t)
	reader := &fakeReader{seconds: map[string]float64{"good.mp4": 6}}
	cls := &scriptedClassifier{results: []classify.Result{nonResult}}

	s := New(zerolog.Nop(), DefaultConfig(), reader, cls, NewStore(layout), nil)
	res, err := s.Scan(context.Background(), []string{"corrupt.mp4", "good.mp4"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Sampled)
	assert.Equal(t, []string{"chunk001_t0000_0.300.jpg", "chunk001_t0003_0.300.jpg"},
		listDir(t, layout.LabelDir(classify.NonResult)))
}

func TestScanCancelled(t *testing.T) {
	layout := newLayout(t)
	reader := &fakeReader{seconds: map[string]float64{"a.mp4": 10}}
	cls := &scriptedClassifier{results: []classify.Result{nonResult}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(zerolog.Nop(), DefaultConfig(), reader, cls, NewStore(layout), nil)
	_, err := s.Scan(ctx, []string{"a.mp4"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reader.extracts)
}
