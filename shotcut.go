// Package shotcut extracts one representative still per shot from a video.
//
// A run detects shot boundaries, clears the output directory, and saves a
// frame a few frames past each cut as shot_001.jpg, shot_002.jpg, and so on.
// The resulting catalog can be exported as a PDF contact sheet or a ZIP
// archive.
//
// Basic usage:
//
//	extractor, err := shotcut.New(
//	    shotcut.WithSensitivity(27),
//	    shotcut.WithOutputDir("extracted_shots"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	run, err := extractor.Run(ctx, "input.mp4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, rec := range run.Catalog.Records() {
//	    fmt.Println(rec.ID, rec.Timecode, rec.ImagePath)
//	}
package shotcut

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/shotcut/internal/config"
	"github.com/five82/shotcut/internal/detect"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/frames"
	"github.com/five82/shotcut/internal/metrics"
	"github.com/five82/shotcut/internal/reporter"
	"github.com/five82/shotcut/internal/shots"
)

// Re-export strategy types
type Strategy = config.Strategy

const (
	StrategyContent     = config.StrategyContent
	StrategyAdaptive    = config.StrategyAdaptive
	StrategySceneFilter = config.StrategySceneFilter
)

// ParseStrategy converts a strategy name to a Strategy value.
// Valid values are "content", "adaptive", and "scene-filter" (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	return config.ParseStrategy(s)
}

// Backend selects how frames are decoded.
type Backend = config.Backend

const (
	BackendAuto   = config.BackendAuto
	BackendFFmpeg = config.BackendFFmpeg
	BackendMPEG   = config.BackendMPEG
	BackendFFMS2  = config.BackendFFMS2
)

// ImageFormat is the encoding of saved shots.
type ImageFormat = config.ImageFormat

const (
	FormatJPEG = config.FormatJPEG
	FormatPNG  = config.FormatPNG
)

type (
	Catalog  = shots.Catalog
	Record   = shots.Record
	Skipped  = shots.Skipped
	Interval = detect.Interval
	Reporter = reporter.Reporter
)

// Errors returned by runs and exports. Match with errors.Is.
var (
	ErrUnreadableMedia = serrors.ErrUnreadableMedia
	ErrFrameDecode     = serrors.ErrFrameDecode
	ErrEmptyCatalog    = serrors.ErrEmptyCatalog
	ErrOutputWrite     = serrors.ErrOutputWrite
	ErrCancelled       = serrors.ErrCancelled
)

// sourceOpener opens the frame source for one run.
type sourceOpener func(ctx context.Context, path string) (frames.Source, error)

// Extractor runs the shot extraction pipeline. One Extractor serialises its
// runs; use separate extractors with separate output directories to run in
// parallel.
type Extractor struct {
	mu sync.Mutex

	config     *config.Config
	minShotSet bool
	logger     zerolog.Logger
	reporter   reporter.Reporter
	metrics    *metrics.Metrics
	open       sourceOpener
}

// Option configures the extractor.
type Option func(*Extractor)

// New creates a new Extractor with the given options.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		config:   config.NewConfig(""),
		logger:   zerolog.Nop(),
		reporter: reporter.NullReporter{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if !e.minShotSet {
		e.config.MinShotLength = config.DefaultMinShotLengthFor(e.config.Strategy)
	}

	if err := e.config.Validate(); err != nil {
		return nil, serrors.NewConfigError("invalid configuration", err)
	}

	if e.open == nil {
		backend, logger := e.config.Backend, e.logger
		e.open = func(ctx context.Context, path string) (frames.Source, error) {
			return frames.Open(ctx, path, frames.Options{Backend: backend, Logger: logger})
		}
	}

	return e, nil
}

// WithConfig replaces the whole configuration. Later options still apply on
// top of it.
func WithConfig(cfg *config.Config) Option {
	return func(e *Extractor) {
		c := *cfg
		e.config = &c
		e.minShotSet = true
	}
}

// WithSensitivity sets the detection threshold. Lower values produce more shots.
func WithSensitivity(s float64) Option {
	return func(e *Extractor) {
		e.config.Sensitivity = s
	}
}

// WithStrategy selects the boundary detection algorithm.
func WithStrategy(s Strategy) Option {
	return func(e *Extractor) {
		e.config.Strategy = s
	}
}

// WithMinShotLength sets the shortest shot, in frames. Without it the
// strategy's default applies.
func WithMinShotLength(frames int) Option {
	return func(e *Extractor) {
		e.config.MinShotLength = frames
		e.minShotSet = true
	}
}

// WithOffset sets how many frames past each cut the still is taken.
func WithOffset(frames int) Option {
	return func(e *Extractor) {
		e.config.StabilizationOffset = frames
	}
}

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(e *Extractor) {
		e.config.Quality = q
	}
}

// WithFormat selects JPEG or PNG output.
func WithFormat(f ImageFormat) Option {
	return func(e *Extractor) {
		e.config.Format = f
	}
}

// WithOutputDir sets the directory that each run clears and fills.
func WithOutputDir(dir string) Option {
	return func(e *Extractor) {
		e.config.OutputDir = dir
	}
}

// WithBackend selects the frame decoder.
func WithBackend(b Backend) Option {
	return func(e *Extractor) {
		e.config.Backend = b
	}
}

// WithManifest toggles writing shots.json beside the images.
func WithManifest(enable bool) Option {
	return func(e *Extractor) {
		e.config.WriteManifest = enable
	}
}

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithReporter receives progress and result events.
func WithReporter(r Reporter) Option {
	return func(e *Extractor) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithMetrics records run counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

func withSourceOpener(open sourceOpener) Option {
	return func(e *Extractor) {
		e.open = open
	}
}

// Config returns a copy of the effective configuration.
func (e *Extractor) Config() config.Config {
	return *e.config
}

// Run extracts shots from videoPath into the configured output directory.
func (e *Extractor) Run(ctx context.Context, videoPath string) (*Run, error) {
	return e.RunTo(ctx, videoPath, e.config.OutputDir)
}

// RunTo is Run with an explicit output directory.
func (e *Extractor) RunTo(ctx context.Context, videoPath, outputDir string) (*Run, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run(ctx, videoPath, outputDir)
}

// RunPipeline extracts shots from videoPath at the given sensitivity and
// returns the catalog.
func RunPipeline(ctx context.Context, videoPath string, sensitivity float64, opts ...Option) (*Catalog, error) {
	e, err := New(append(opts[:len(opts):len(opts)], WithSensitivity(sensitivity))...)
	if err != nil {
		return nil, err
	}
	run, err := e.Run(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	return run.Catalog, nil
}
