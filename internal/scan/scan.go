// Package scan walks video segments at a fixed cadence, classifies each
// sampled frame and files it under its label.
package scan

import (
	"context"
	"image"
	"time"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/internal/ffmpeg"
	"github.com/kikiluvv/svsorter/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	DefaultCadence  = 3 * time.Second
	DefaultCooldown = 20
)

// FrameReader gives access to segment metadata and single frames.
type FrameReader interface {
	Probe(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	ExtractFrame(ctx context.Context, path string, offset time.Duration) (image.Image, error)
}

// Classifier labels a frame.
type Classifier interface {
	Classify(frame image.Image) classify.Result
}

// Config controls sampling.
type Config struct {
	Cadence         time.Duration
	CooldownSamples int
}

func DefaultConfig() Config {
	return Config{
		Cadence:         DefaultCadence,
		CooldownSamples: DefaultCooldown,
	}
}

// Result tallies one scan.
type Result struct {
	Sampled        int
	Wins           int
	Losses         int
	NonResults     int
	CooldownSkips  int
	DecodeFailures int
}

// Scanner samples segments in order. The cooldown carries over from one
// segment to the next. It is not safe for concurrent use.
type Scanner struct {
	logger     zerolog.Logger
	cfg        Config
	reader     FrameReader
	classifier Classifier
	store      *Store
	metrics    *metrics.Metrics
	cooldown   Cooldown
}

// New creates a scanner. m may be nil.
func New(logger zerolog.Logger, cfg Config, reader FrameReader, classifier Classifier, store *Store, m *metrics.Metrics) *Scanner {
	if cfg.Cadence < time.Second {
		cfg.Cadence = DefaultCadence
	}
	if cfg.CooldownSamples < 0 {
		cfg.CooldownSamples = 0
	}
	return &Scanner{
		logger:     logger.With().Str("component", "scanner").Logger(),
		cfg:        cfg,
		reader:     reader,
		classifier: classifier,
		store:      store,
		metrics:    m,
	}
}

// Cooldown exposes the scanner's cooldown state.
func (s *Scanner) Cooldown() *Cooldown {
	return &s.cooldown
}

// Offsets returns the whole-second sampling offsets 0, cadence, 2*cadence...
// strictly below the truncated duration.
func Offsets(duration float64, cadence int) []int {
	if cadence <= 0 {
		return nil
	}
	limit := int(duration)
	var offsets []int
	for o := 0; o < limit; o += cadence {
		offsets = append(offsets, o)
	}
	return offsets
}

// Scan samples every segment in order. Frames that cannot be decoded and
// segments that cannot be probed are skipped. It returns early only on
// context cancellation or when a screenshot cannot be written.
func (s *Scanner) Scan(ctx context.Context, segments []string) (Result, error) {
	var res Result
	cadence := int(s.cfg.Cadence / time.Second)

	for idx, seg := range segments {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		info, err := s.reader.Probe(ctx, seg)
		if err != nil {
			s.logger.Warn().Err(err).Str("segment", seg).Msg("cannot read segment, skipping")
			continue
		}
		s.metrics.ObserveSegment()

		duration := info.Seconds()
		s.logger.Info().
			Int("index", idx).
			Str("segment", seg).
			Float64("seconds", duration).
			Msg("scanning segment")

		for _, sec := range Offsets(duration, cadence) {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			if s.cooldown.Skip() {
				res.CooldownSkips++
				s.metrics.ObserveCooldownSkip()
				continue
			}

			frame, err := s.reader.ExtractFrame(ctx, seg, time.Duration(sec)*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				res.DecodeFailures++
				s.metrics.ObserveDecodeFailure()
				s.logger.Debug().Err(err).Int("index", idx).Int("sec", sec).Msg("no frame")
				continue
			}

			r := s.classifier.Classify(frame)
			if err := s.store.Save(idx, sec, r, frame); err != nil {
				return res, err
			}
			res.Sampled++
			s.metrics.ObserveSample(string(r.Label))

			s.logger.Debug().
				Int("index", idx).
				Int("sec", sec).
				Str("label", string(r.Label)).
				Float64("win", r.WinScore).
				Float64("lose", r.LoseScore).
				Msg("frame classified")

			switch r.Label {
			case classify.Win:
				res.Wins++
			case classify.Lose:
				res.Losses++
			default:
				res.NonResults++
			}

			if r.Label.IsResult() {
				s.logger.Info().
					Int("index", idx).
					Int("sec", sec).
					Str("label", string(r.Label)).
					Float64("score", r.Score).
					Msg("result screen detected")
				s.cooldown.Reset(s.cfg.CooldownSamples)
			}
		}
	}

	return res, nil
}
