package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/kikiluvv/svsorter/pkg/util"
)

// ProbeVideo extracts metadata from a video file
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	info.FilePath = filePath

	e.logger.Debug().
		Str("file", filePath).
		Int("frames", info.FrameCount).
		Float64("fps", info.FPS).
		Msg("probed video")

	return info, nil
}

// Probe satisfies the scanner's frame reader contract.
func (e *Executor) Probe(ctx context.Context, filePath string) (*VideoInfo, error) {
	return e.ProbeVideo(ctx, filePath)
}

func parseProbeOutput(output []byte) (*VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{}

	// Parse duration
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	videoFound := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName

			// Calculate FPS from r_frame_rate (e.g., "30/1")
			if stream.RFrameRate != "" {
				info.FPS = util.ParseFrameRate(stream.RFrameRate)
			}
			if n, err := strconv.Atoi(stream.NbFrames); err == nil {
				info.FrameCount = n
			}
		case "audio":
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
		}
	}

	if !videoFound {
		return nil, fmt.Errorf("no video stream found")
	}

	// Containers without nb_frames (mkv, webm) fall back to duration * fps
	if info.FrameCount == 0 && info.FPS > 0 {
		info.FrameCount = int(math.Round(info.Duration.Seconds() * info.FPS))
	}

	return info, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}
