package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/kikiluvv/svsorter/pkg/util"
	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "SVSORTER_"

// Config holds all application configuration
type Config struct {
	// Scratch directory, wiped at the start of every run
	WorkDir string `yaml:"work_dir" env:"WORK_DIR"`

	Templates TemplatesConfig `yaml:"templates"`
	ResultLog ResultLogConfig `yaml:"result_log"`
	Source    SourceConfig    `yaml:"source"`
	FFmpeg    FFmpegConfig    `yaml:"ffmpeg"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type TemplatesConfig struct {
	WinDir  string `yaml:"win_dir" env:"WIN_TEMPLATES"`
	LoseDir string `yaml:"lose_dir" env:"LOSE_TEMPLATES"`
}

type ResultLogConfig struct {
	Path string `yaml:"path" env:"RESULT_LOG"`

	// Optional Postgres sink, disabled when empty
	DatabaseURL string `yaml:"database_url,omitempty" env:"DATABASE_URL"`
}

type SourceConfig struct {
	Quality string `yaml:"quality" env:"SOURCE_QUALITY"`
}

type FFmpegConfig struct {
	Threads     int    `yaml:"threads" env:"FFMPEG_THREADS"`
	SegmentTime string `yaml:"segment_time" env:"SEGMENT_TIME"`
}

type MetricsConfig struct {
	// node_exporter textfile path, disabled when empty
	Textfile string `yaml:"textfile,omitempty" env:"METRICS_TEXTFILE"`
}

// Load reads configuration from file or returns defaults, then applies
// SVSORTER_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks values that cannot be caught by the decoders.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir must not be empty")
	}
	if c.ResultLog.Path == "" {
		return fmt.Errorf("result_log.path must not be empty")
	}
	if c.FFmpeg.Threads < 0 {
		return fmt.Errorf("ffmpeg.threads must not be negative")
	}
	d, err := c.SegmentDuration()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("ffmpeg.segment_time must be positive")
	}
	return nil
}

// SegmentDuration parses FFmpeg.SegmentTime.
func (c *Config) SegmentDuration() (time.Duration, error) {
	d, err := util.ParseTimestamp(c.FFmpeg.SegmentTime)
	if err != nil {
		return 0, fmt.Errorf("ffmpeg.segment_time: %w", err)
	}
	return d, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "downloads",
		Templates: TemplatesConfig{
			WinDir:  "win_templates_v2",
			LoseDir: "lose_templates_v2",
		},
		ResultLog: ResultLogConfig{
			Path: "result_summary.csv",
		},
		Source: SourceConfig{
			Quality: "360p",
		},
		FFmpeg: FFmpegConfig{
			Threads:     0,
			SegmentTime: "00:05:00",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".svsorter", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
