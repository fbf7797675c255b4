package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chenBenjamin97/pitchside/pkg/api"
	"github.com/chenBenjamin97/pitchside/pkg/cache"
	"github.com/chenBenjamin97/pitchside/pkg/config"
	"github.com/chenBenjamin97/pitchside/pkg/export"
	"github.com/chenBenjamin97/pitchside/pkg/pipeline"
	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
	"github.com/chenBenjamin97/pitchside/pkg/utils"
)

var (
	configPath string //explicit config file, optional
	noCache    bool   //recompute every stage for this run
	format     string //export encoding
	exportOut  string //export destination, stdout when empty
	chartOut   string //team-control chart destination, skipped when empty
	scope      string //artifact scope (video name) used by export
)

//rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "pitchside",
	Short:         "Football match video analytics: tracking, possession and annotated renders",
	SilenceUsage:  true,
	SilenceErrors: true,
}

//runCmd analyses one video end to end
var runCmd = &cobra.Command{
	Use:   "run [video]",
	Short: "Analyse a video and render the annotated outputs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		videoPath := cfg.Video.Path
		if len(args) == 1 {
			videoPath = args[0]
		}
		if videoPath == "" {
			return fmt.Errorf("%w: provide a video path via VIDEO_PATH, video.path or as an argument", pipeline.ErrInvalidInput)
		}

		reg := newCacheRegistry(cfg)
		defer reg.Close()
		c, err := reg.Open("")
		if err != nil {
			return err
		}

		if noCache {
			cfg.Cache.Enabled = false
		}
		res, err := newOrchestrator(cfg, c, logger).Run(cmd.Context(), videoPath)
		if err != nil {
			return err
		}
		for _, out := range res.Outputs {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

//exportCmd dumps the cached tracks artifact in a portable format
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cached tracks (and optionally a team-control chart)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}

		reg := newCacheRegistry(cfg)
		defer reg.Close()
		c, err := reg.Open(scope)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		tracks, res := cache.Lookup[*track.Store](ctx, c, cache.TracksKey)
		if res.Status != cache.Hit || tracks == nil {
			if res.Err != nil {
				return fmt.Errorf("tracks artifact unusable: %w", res.Err)
			}
			return fmt.Errorf("no tracks artifact found, run the analysis first")
		}

		if exportOut == "" {
			if err := export.Tracks(cmd.OutOrStdout(), tracks, f); err != nil {
				return err
			}
		} else if err := export.TracksFile(exportOut, tracks, f); err != nil {
			return err
		}

		if chartOut == "" {
			return nil
		}
		seq, res := cache.Lookup[possession.Sequence](ctx, c, cache.TeamControlKey)
		if res.Status != cache.Hit {
			return fmt.Errorf("no team control artifact found for chart")
		}
		out, err := os.Create(chartOut)
		if err != nil {
			return err
		}
		defer out.Close()
		return export.TeamControlChart(out, seq)
	},
}

//serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve uploads, analyses and results over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		reg := newCacheRegistry(cfg)
		defer reg.Close()

		run := func(ctx context.Context, videoPath string) (*pipeline.Result, error) {
			c, err := reg.Open(utils.Stem(videoPath))
			if err != nil {
				return nil, err
			}
			return newOrchestrator(cfg, c, logger).Run(ctx, videoPath)
		}
		opts := api.Options{OutputDir: cfg.Output.Dir, UploadsDir: cfg.HTTP.UploadsDir}
		server := api.NewServer(opts, run, reg.Open, logrus.NewEntry(logger).WithField("component", "api"))

		r := server.SetRouter()
		if err := r.Run(":" + strconv.Itoa(cfg.HTTP.Port)); err != nil {
			return err
		}
		server.Wait()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./config.yaml if present)")

	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "Recompute every stage instead of loading cached artifacts")

	exportCmd.Flags().StringVar(&format, "format", "json", "Export format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&chartOut, "chart", "", "Also write a team-control HTML chart to this file")
	exportCmd.Flags().StringVar(&scope, "name", "", "Video name whose artifacts to export (as stored by serve)")

	rootCmd.AddCommand(runCmd, exportCmd, serveCmd)
}

//setup loads the configuration and configures logging
func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logrus.StandardLogger()
	logger.SetLevel(cfg.LogLevel())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return cfg, logger, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("pitchside failed")
		stop()
		os.Exit(1)
	}
}
