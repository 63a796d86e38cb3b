package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kikiluvv/svsorter/internal/config"
	"github.com/kikiluvv/svsorter/internal/gui"
	"github.com/kikiluvv/svsorter/internal/logging"
	"github.com/kikiluvv/svsorter/internal/pipeline"
	"github.com/kikiluvv/svsorter/internal/workspace"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "svsorter",
	Short:        "svsorter - sort match videos into win and lose screenshots",
	Long:         "Downloads a match video, samples a frame every few seconds, detects win and lose result screens by template matching and logs the tally per video.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [video url]",
	Short: "Download a video and sort its result screens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.Run(ctx, args[0])
		})
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [video file]",
	Short: "Sort the result screens of a local video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(cmd, func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Report, error) {
			return p.RunFile(ctx, args[0])
		})
	},
}

func execute(cmd *cobra.Command, run func(context.Context, *pipeline.Pipeline) (*pipeline.Report, error)) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)

	pipe, err := pipeline.New(ctx, log.Logger, cfg)
	if err != nil {
		return err
	}
	defer pipe.Close()

	report, err := run(ctx, pipe)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d matches (%d wins, %d losses) from %d samples\n",
		report.Row.Source, report.Row.Matches, report.Row.Wins, report.Row.Losses, report.Scan.Sampled)
	return nil
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse the screenshots of the last run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		return gui.RunReview(workspace.New(cfg.WorkDir))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.FromContext(cmd.Context()).Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
