package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/kikiluvv/svsorter/pkg/util"
)

// ErrNoFrame is returned when ffmpeg produced no image at the requested
// offset, typically because the offset lies past the last decodable frame.
var ErrNoFrame = errors.New("no frame decoded")

// ExtractFrame decodes a single frame at offset and returns it in memory.
func (e *Executor) ExtractFrame(ctx context.Context, input string, offset time.Duration) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}

	var stdout bytes.Buffer
	opts := RunOptions{
		Args: []string{
			"-ss", util.FormatDuration(offset),
			"-i", input,
			"-frames:v", "1",
			"-f", "image2pipe",
			"-vcodec", "png",
			"-",
		},
		Stdout: &stdout,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return nil, fmt.Errorf("frame extraction at %s failed: %w", util.FormatDuration(offset), err)
	}
	if stdout.Len() == 0 {
		return nil, ErrNoFrame
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}
