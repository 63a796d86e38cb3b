package ffmpeg

import (
	"io"
	"time"
)

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Seconds returns the length implied by frame count and frame rate.
// Zero when either is unknown.
func (v *VideoInfo) Seconds() float64 {
	if v.FPS <= 0 || v.FrameCount <= 0 {
		return 0
	}
	return float64(v.FrameCount) / v.FPS
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)

	// Stdout receives raw stdout bytes instead of LogHandler lines.
	// Progress is never written to stdout, so binary pipes stay clean.
	Stdout io.Writer
}

// Default segmenting settings
const (
	DefaultSegmentTime    = 5 * time.Minute
	DefaultSegmentPattern = "chunk_%03d.mp4"
)
