// Package source downloads the video to be scanned.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
)

// DefaultQuality is the progressive MP4 tier fetched for scanning.
const DefaultQuality = "360p"

// ErrQualityUnavailable is returned when the video has no progressive MP4
// stream at the requested quality.
var ErrQualityUnavailable = errors.New("requested quality not available")

// YouTube fetches progressive MP4 streams.
type YouTube struct {
	logger  zerolog.Logger
	client  *youtube.Client
	quality string
}

// NewYouTube creates a fetcher. An empty quality selects DefaultQuality.
func NewYouTube(logger zerolog.Logger, quality string) *YouTube {
	if quality == "" {
		quality = DefaultQuality
	}
	return &YouTube{
		logger:  logger.With().Str("component", "youtube").Logger(),
		client:  &youtube.Client{},
		quality: quality,
	}
}

// Fetch downloads url to dest. A partial file is removed on failure.
func (y *YouTube) Fetch(ctx context.Context, url, dest string) error {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return fmt.Errorf("resolve video: %w", err)
	}

	format, err := selectFormat(video.Formats, y.quality)
	if err != nil {
		return fmt.Errorf("%s: %w", video.ID, err)
	}

	y.logger.Info().
		Str("id", video.ID).
		Str("title", video.Title).
		Str("quality", format.QualityLabel).
		Int("itag", format.ItagNo).
		Msg("downloading video")

	stream, size, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	n, err := io.Copy(f, stream)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("download: %w", err)
	}

	y.logger.Info().
		Int64("bytes", n).
		Int64("expected", size).
		Str("path", dest).
		Msg("download complete")

	return nil
}

// selectFormat returns the first MP4 format that carries audio and matches quality.
func selectFormat(formats youtube.FormatList, quality string) (*youtube.Format, error) {
	for i := range formats {
		f := &formats[i]
		if strings.HasPrefix(f.MimeType, "video/mp4") && f.AudioChannels > 0 && f.QualityLabel == quality {
			return f, nil
		}
	}
	return nil, ErrQualityUnavailable
}
