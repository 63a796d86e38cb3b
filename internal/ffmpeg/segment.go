package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/kikiluvv/svsorter/pkg/util"
)

// Split cuts input into fixed-length chunks inside outDir without
// re-encoding. Timestamps are reset per chunk so offsets start at zero.
// The returned paths are in playback order.
func (e *Executor) Split(ctx context.Context, input, outDir string, segmentTime time.Duration) ([]string, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if segmentTime <= 0 {
		segmentTime = DefaultSegmentTime
	}
	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("failed to create split dir: %w", err)
	}

	e.logger.Info().
		Str("input", input).
		Str("output_dir", outDir).
		Dur("segment_time", segmentTime).
		Msg("splitting video")

	opts := RunOptions{
		Args: []string{
			"-i", input,
			"-f", "segment",
			"-segment_time", fmt.Sprintf("%d", int(segmentTime.Seconds())),
			"-reset_timestamps", "1",
			"-c", "copy",
			filepath.Join(outDir, DefaultSegmentPattern),
		},
		ProgressHandler: func(p *Progress) {
			e.logger.Debug().Str("time", p.Time).Str("speed", p.Speed).Msg("split progress")
		},
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("segmenting")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return nil, fmt.Errorf("split failed: %w", err)
	}

	chunks, err := filepath.Glob(filepath.Join(outDir, "chunk_*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("glob chunks: %w", err)
	}
	sort.Strings(chunks)

	e.logger.Info().Int("chunks", len(chunks)).Msg("split complete")
	return chunks, nil
}
