package pipeline

import (
	"context"
	"time"

	"github.com/kikiluvv/svsorter/internal/scan"
	"github.com/kikiluvv/svsorter/internal/summary"
)

// VideoSource downloads a video to a local file
type VideoSource interface {
	Fetch(ctx context.Context, url, dest string) error
}

// MediaTool splits videos and reads frames from the chunks
type MediaTool interface {
	scan.FrameReader
	Split(ctx context.Context, input, outDir string, segmentTime time.Duration) ([]string, error)
}

// Report describes a finished run
type Report struct {
	Row      summary.Row
	Scan     scan.Result
	Segments int
	Elapsed  time.Duration
}
