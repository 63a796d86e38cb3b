package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/internal/config"
	"github.com/kikiluvv/svsorter/internal/ffmpeg"
	"github.com/kikiluvv/svsorter/internal/metrics"
	"github.com/kikiluvv/svsorter/internal/resultlog"
	"github.com/kikiluvv/svsorter/internal/scan"
	"github.com/kikiluvv/svsorter/internal/source"
	"github.com/kikiluvv/svsorter/internal/summary"
	"github.com/kikiluvv/svsorter/internal/templates"
	"github.com/kikiluvv/svsorter/internal/workspace"
	"github.com/rs/zerolog"
)

// Pipeline runs download, split, scan and summary for one video at a time
type Pipeline struct {
	root        zerolog.Logger
	logger      zerolog.Logger
	cfg         *config.Config
	layout      *workspace.Layout
	source      VideoSource
	media       MediaTool
	metrics     *metrics.Metrics
	logs        []summary.Appender
	postgres    *resultlog.Postgres
	segmentTime time.Duration
}

// New creates a pipeline backed by ffmpeg and YouTube. The Postgres sink is
// connected when a database URL is configured.
func New(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	ffmpegExec, err := ffmpeg.New(logger, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	p, err := newPipeline(logger, cfg, source.NewYouTube(logger, cfg.Source.Quality), ffmpegExec, metrics.New())
	if err != nil {
		return nil, err
	}

	if url := cfg.ResultLog.DatabaseURL; url != "" {
		pg, err := resultlog.NewPostgres(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to open result database: %w", err)
		}
		p.postgres = pg
		p.logs = append(p.logs, pg)
	}

	return p, nil
}

func newPipeline(logger zerolog.Logger, cfg *config.Config, src VideoSource, media MediaTool, m *metrics.Metrics) (*Pipeline, error) {
	segmentTime, err := cfg.SegmentDuration()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		root:        logger,
		logger:      logger.With().Str("component", "pipeline").Logger(),
		cfg:         cfg,
		layout:      workspace.New(cfg.WorkDir),
		source:      src,
		media:       media,
		metrics:     m,
		logs:        []summary.Appender{resultlog.NewCSV(cfg.ResultLog.Path)},
		segmentTime: segmentTime,
	}, nil
}

// Close releases pipeline resources
func (p *Pipeline) Close() error {
	if p.postgres != nil {
		p.postgres.Close()
	}
	return nil
}

// Layout returns the workspace the pipeline writes into
func (p *Pipeline) Layout() *workspace.Layout {
	return p.layout
}

// Run downloads url into a fresh workspace, sorts its frames and appends the
// outcome to the result logs. The downloaded file is removed after the scan.
func (p *Pipeline) Run(ctx context.Context, url string) (*Report, error) {
	if url == "" {
		return nil, fmt.Errorf("video url cannot be empty")
	}

	p.logger.Info().Str("url", url).Msg("starting run")
	start := time.Now()

	classifier, err := p.prepare()
	if err != nil {
		return nil, err
	}

	input := p.layout.SourcePath()
	if err := p.source.Fetch(ctx, url, input); err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}

	return p.process(ctx, url, input, classifier, true, start)
}

// RunFile processes a local video. The file is left in place and must not
// live inside the work directory, which is wiped first.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Report, error) {
	if path == "" {
		return nil, fmt.Errorf("input path cannot be empty")
	}
	if p.layout.Contains(path) {
		return nil, fmt.Errorf("input %s is inside work dir %s", path, p.layout.Root)
	}

	p.logger.Info().Str("input", path).Msg("starting run")
	start := time.Now()

	classifier, err := p.prepare()
	if err != nil {
		return nil, err
	}

	return p.process(ctx, path, path, classifier, false, start)
}

// prepare resets the workspace and loads both template sets.
func (p *Pipeline) prepare() (*classify.Classifier, error) {
	if err := p.layout.Prepare(); err != nil {
		return nil, fmt.Errorf("failed to prepare workspace: %w", err)
	}

	win, err := templates.Load(p.cfg.Templates.WinDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load win templates: %w", err)
	}
	lose, err := templates.Load(p.cfg.Templates.LoseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load lose templates: %w", err)
	}

	p.logger.Info().
		Int("win_templates", win.Len()).
		Int("lose_templates", lose.Len()).
		Msg("templates loaded")

	return classify.New(p.root, win, lose, classify.DefaultThreshold), nil
}

func (p *Pipeline) process(ctx context.Context, sourceName, input string, classifier *classify.Classifier, removeInput bool, start time.Time) (*Report, error) {
	segments, err := p.media.Split(ctx, input, p.layout.SplitsDir(), p.segmentTime)
	if err != nil {
		return nil, fmt.Errorf("failed to split video: %w", err)
	}

	p.logger.Info().Int("segments", len(segments)).Msg("video split")

	scanner := scan.New(p.root, scan.DefaultConfig(), p.media, classifier, scan.NewStore(p.layout), p.metrics)
	result, err := scanner.Scan(ctx, segments)
	if err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	p.logger.Info().
		Int("sampled", result.Sampled).
		Int("wins", result.Wins).
		Int("losses", result.Losses).
		Int("cooldown_skips", result.CooldownSkips).
		Int("decode_failures", result.DecodeFailures).
		Msg("scan complete")

	if removeInput {
		if err := p.layout.RemoveSource(); err != nil {
			p.logger.Warn().Err(err).Msg("could not remove downloaded video")
		}
	}

	row, err := summary.Count(p.layout, sourceName)
	if err != nil {
		return nil, err
	}
	row.Sampled = result.Sampled

	if err := summary.Record(ctx, row, p.logs...); err != nil {
		return nil, fmt.Errorf("failed to record summary: %w", err)
	}

	elapsed := time.Since(start)
	p.metrics.ObserveRun(elapsed, row.Wins, row.Losses)
	if err := p.metrics.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		p.logger.Warn().Err(err).Msg("could not write metrics textfile")
	}

	p.logger.Info().
		Str("source", sourceName).
		Int("matches", row.Matches).
		Int("wins", row.Wins).
		Int("losses", row.Losses).
		Dur("elapsed", elapsed).
		Msg("run complete")

	return &Report{
		Row:      row,
		Scan:     result,
		Segments: len(segments),
		Elapsed:  elapsed,
	}, nil
}
