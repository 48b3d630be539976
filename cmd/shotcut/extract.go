package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/five82/shotcut"
	"github.com/five82/shotcut/internal/config"
	"github.com/five82/shotcut/internal/discovery"
	"github.com/five82/shotcut/internal/logging"
	"github.com/five82/shotcut/internal/metrics"
	"github.com/five82/shotcut/internal/processing"
	"github.com/five82/shotcut/internal/reporter"
	"github.com/five82/shotcut/internal/tracing"
)

// extractArgs holds the parsed arguments for the extract command.
type extractArgs struct {
	configPath  string
	verbose     bool
	json        bool
	logDir      string
	noLog       bool
	metricsFile string

	// Exports and checks after each run
	pdf    bool
	zip    bool
	upload bool
	verify bool
}

func newExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <video|directory>",
		Short: "Detect shots and save one image per shot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0])
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", config.DefaultOutputDir, "Output directory (cleared on every run)")
	f.Float64P("sensitivity", "s", config.DefaultSensitivity, "Content change threshold, 10-50. Lower finds more shots")
	f.String("strategy", string(config.StrategyContent), "Detection strategy: content, adaptive, scene-filter")
	f.Int("offset", config.DefaultStabilizationOffset, "Frames past each cut to take the still from")
	f.Int("min-shot", 0, "Minimum shot length in frames (default depends on strategy)")
	f.Int("quality", config.DefaultQuality, "JPEG quality, 1-100")
	f.String("format", string(config.FormatJPEG), "Image format: jpg, png")
	f.String("backend", string(config.BackendAuto), "Frame decoder: auto, ffmpeg, mpeg, ffms2")
	f.String("log-dir", "", "Log directory (defaults to logs beside the output directory)")
	f.Bool("no-log", false, "Disable log file creation")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile when done")
	f.Bool("pdf", false, "Write shots.pdf into each output directory")
	f.Bool("zip", false, "Write shots.zip into each output directory")
	f.Bool("upload", false, "Upload each run's archive to the configured S3 bucket")
	f.Bool("verify", false, "Check saved images against the catalog after each run")

	return cmd
}

func runExtract(cmd *cobra.Command, input string) error {
	var ea extractArgs
	ea.configPath, _ = cmd.Flags().GetString("config")
	ea.verbose, _ = cmd.Flags().GetBool("verbose")
	ea.json, _ = cmd.Flags().GetBool("json")
	ea.logDir, _ = cmd.Flags().GetString("log-dir")
	ea.noLog, _ = cmd.Flags().GetBool("no-log")
	ea.metricsFile, _ = cmd.Flags().GetString("metrics-file")
	ea.pdf, _ = cmd.Flags().GetBool("pdf")
	ea.zip, _ = cmd.Flags().GetBool("zip")
	ea.upload, _ = cmd.Flags().GetBool("upload")
	ea.verify, _ = cmd.Flags().GetBool("verify")

	cfg, err := config.Load(ea.configPath)
	if err != nil {
		return err
	}
	minShotSet, err := applyExtractFlags(cmd, cfg)
	if err != nil {
		return err
	}
	if !minShotSet {
		cfg.ResolveMinShotLength()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if ea.upload && !cfg.Storage.Enabled() {
		return fmt.Errorf("--upload needs SHOTCUT_S3_ENDPOINT and SHOTCUT_S3_BUCKET")
	}

	inputPath, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input path does not exist: %s", inputPath)
	}
	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	logDir := ea.logDir
	if logDir == "" {
		logDir = cfg.LogDir
	}
	if logDir == "" {
		logDir = filepath.Join(filepath.Dir(outputDir), "logs")
	}

	logging.Init(ea.verbose)
	runLog, err := logging.Setup(logDir, ea.verbose, ea.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer func() { _ = runLog.Close() }()

	logger := zerolog.Nop()
	switch {
	case runLog != nil:
		logger = runLog.Logger
	case ea.verbose && !ea.json:
		logger = logging.WithComponent("cli")
	}

	var filesToProcess []string
	if inputInfo.IsDir() {
		found, err := discovery.FindVideoFiles(inputPath, logger)
		if err != nil {
			return err
		}
		filesToProcess = found.Files
	} else {
		filesToProcess = []string{inputPath}
		logger.Info().Str("file", inputPath).Msg("processing single file")
	}

	logger.Info().
		Str("output_dir", outputDir).
		Str("strategy", string(cfg.Strategy)).
		Float64("sensitivity", cfg.Sensitivity).
		Int("min_shot_length", cfg.MinShotLength).
		Int("offset", cfg.StabilizationOffset).
		Str("backend", string(cfg.Backend)).
		Msg("configuration")

	ctx, cancel := signalContext()
	defer cancel()

	shutdown, err := tracing.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	var rep reporter.Reporter
	if ea.json {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter(ea.verbose)
	}

	m := metrics.New()
	extractor, err := shotcut.New(
		shotcut.WithConfig(cfg),
		shotcut.WithOutputDir(outputDir),
		shotcut.WithLogger(logger),
		shotcut.WithReporter(rep),
		shotcut.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	exporter := &runExporter{
		pdf:      ea.pdf,
		zip:      ea.zip,
		upload:   ea.upload,
		storage:  cfg.Storage,
		reporter: rep,
		logger:   logger,
	}

	outcomes, err := processing.ProcessVideos(ctx, extractor, filesToProcess, outputDir, processing.Options{
		Verify:   ea.verify,
		AfterRun: exporter.export,
	}, rep)

	if ea.metricsFile != "" {
		if merr := m.WriteTextfile(ea.metricsFile); merr != nil {
			logger.Warn().Err(merr).Str("path", ea.metricsFile).Msg("failed to write metrics")
		}
	}

	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err == nil && o.ValidationPassed {
			return nil
		}
	}
	return fmt.Errorf("no files were successfully processed")
}

// applyExtractFlags overrides cfg with flags given on the command line and
// reports whether the minimum shot length was set explicitly.
func applyExtractFlags(cmd *cobra.Command, cfg *config.Config) (bool, error) {
	f := cmd.Flags()

	if f.Changed("output") {
		cfg.OutputDir, _ = f.GetString("output")
	}
	if f.Changed("sensitivity") {
		cfg.Sensitivity, _ = f.GetFloat64("sensitivity")
	}
	if f.Changed("strategy") {
		s, _ := f.GetString("strategy")
		strategy, err := config.ParseStrategy(s)
		if err != nil {
			return false, err
		}
		cfg.Strategy = strategy
	}
	if f.Changed("offset") {
		cfg.StabilizationOffset, _ = f.GetInt("offset")
	}
	if f.Changed("quality") {
		cfg.Quality, _ = f.GetInt("quality")
	}
	if f.Changed("format") {
		s, _ := f.GetString("format")
		cfg.Format = config.ImageFormat(s)
	}
	if f.Changed("backend") {
		s, _ := f.GetString("backend")
		cfg.Backend = config.Backend(s)
	}
	if f.Changed("min-shot") {
		cfg.MinShotLength, _ = f.GetInt("min-shot")
		return true, nil
	}
	return false, nil
}
