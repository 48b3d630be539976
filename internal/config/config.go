// Package config provides configuration types and defaults for shotcut.
package config

import (
	"fmt"
	"strings"
)

// Default constants
const (
	// DefaultSensitivity is the content-change threshold on the 0-255 HSV delta scale.
	// Lower values produce more shots.
	DefaultSensitivity = 27.0

	// MinSensitivity and MaxSensitivity bound the user-facing slider range.
	MinSensitivity = 10.0
	MaxSensitivity = 50.0

	// DefaultMinShotLength is the shortest shot, in frames, that detection emits.
	DefaultMinShotLength = 15

	// DefaultAdaptiveMinShotLength replaces DefaultMinShotLength for the adaptive strategy,
	// whose rolling threshold already rejects most flashes.
	DefaultAdaptiveMinShotLength = 8

	// DefaultStabilizationOffset is how many frames past a cut the representative frame is taken.
	DefaultStabilizationOffset = 3

	// DefaultAnalysisWidth is the frame width, in pixels, used for content scoring.
	DefaultAnalysisWidth = 96

	// DefaultAdaptiveWindow is the number of trailing scores the adaptive detector averages.
	DefaultAdaptiveWindow = 8

	// DefaultAdaptiveRatio is how far above the trailing average a score must be to cut.
	DefaultAdaptiveRatio = 3.0

	// DefaultQuality is the JPEG quality of saved shots.
	DefaultQuality = 95

	// DefaultOutputDir is where shot images are written when no location is given.
	DefaultOutputDir = "extracted_shots"

	// DefaultManifestName is the catalog manifest written next to the images.
	DefaultManifestName = "shots.json"

	// DefaultMinFreeBytes is the free space required before an output directory is reset.
	DefaultMinFreeBytes uint64 = 64 << 20
)

// Strategy selects a boundary detection algorithm.
type Strategy string

const (
	StrategyContent     Strategy = "content"
	StrategyAdaptive    Strategy = "adaptive"
	StrategySceneFilter Strategy = "scene-filter"
)

// ParseStrategy parses a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "content":
		return StrategyContent, nil
	case "adaptive":
		return StrategyAdaptive, nil
	case "scene-filter", "scene", "ffmpeg":
		return StrategySceneFilter, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: content, adaptive, scene-filter", ErrInvalidStrategy, s)
	}
}

func (s Strategy) String() string {
	return string(s)
}

// DefaultMinShotLengthFor returns the minimum shot length used when the caller
// does not set one.
func DefaultMinShotLengthFor(s Strategy) int {
	if s == StrategyAdaptive {
		return DefaultAdaptiveMinShotLength
	}
	return DefaultMinShotLength
}

// ImageFormat is the encoding used for saved shots.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpg"
	FormatPNG  ImageFormat = "png"
)

// Extension returns the file extension including the dot.
func (f ImageFormat) Extension() string {
	return "." + string(f)
}

// Backend selects how frames are decoded.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendFFmpeg Backend = "ffmpeg"
	BackendMPEG   Backend = "mpeg"
	BackendFFMS2  Backend = "ffms2"
)

// StorageConfig holds S3-compatible upload settings.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"USE_SSL"`
	Region    string `yaml:"region" env:"REGION"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	Prefix    string `yaml:"prefix" env:"PREFIX"`
}

// Enabled reports whether uploads have enough settings to run.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Config holds all configuration for a shot extraction run.
type Config struct {
	// Paths
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	LogDir    string `yaml:"log_dir" env:"LOG_DIR"`

	// Detection
	Sensitivity    float64  `yaml:"sensitivity" env:"SENSITIVITY"`
	Strategy       Strategy `yaml:"strategy" env:"STRATEGY"`
	MinShotLength  int      `yaml:"min_shot_length,omitempty" env:"MIN_SHOT_LENGTH"`
	AnalysisWidth  int      `yaml:"analysis_width" env:"ANALYSIS_WIDTH"`
	AdaptiveWindow int      `yaml:"adaptive_window" env:"ADAPTIVE_WINDOW"`
	AdaptiveRatio  float64  `yaml:"adaptive_ratio" env:"ADAPTIVE_RATIO"`

	// Materialization
	StabilizationOffset int         `yaml:"stabilization_offset" env:"STABILIZATION_OFFSET"`
	Quality             int         `yaml:"quality" env:"QUALITY"`
	Format              ImageFormat `yaml:"format" env:"FORMAT"`
	Backend             Backend     `yaml:"backend" env:"BACKEND"`
	WriteManifest       bool        `yaml:"write_manifest" env:"WRITE_MANIFEST"`
	MinFreeBytes        uint64      `yaml:"min_free_bytes" env:"MIN_FREE_BYTES"`

	// Integrations
	Storage      StorageConfig `yaml:"storage" envPrefix:"S3_"`
	OTLPEndpoint string        `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`

	minShotExplicit bool
}

// MinShotLengthExplicit reports whether Load found min_shot_length in the
// config file or the environment.
func (c *Config) MinShotLengthExplicit() bool { return c.minShotExplicit }

// ResolveMinShotLength swaps the default minimum shot length for the
// strategy's own default unless it was set explicitly.
func (c *Config) ResolveMinShotLength() {
	if !c.minShotExplicit {
		c.MinShotLength = DefaultMinShotLengthFor(c.Strategy)
	}
}

// NewConfig creates a new Config with default values.
func NewConfig(outputDir string) *Config {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Config{
		OutputDir:           outputDir,
		Sensitivity:         DefaultSensitivity,
		Strategy:            StrategyContent,
		MinShotLength:       DefaultMinShotLength,
		AnalysisWidth:       DefaultAnalysisWidth,
		AdaptiveWindow:      DefaultAdaptiveWindow,
		AdaptiveRatio:       DefaultAdaptiveRatio,
		StabilizationOffset: DefaultStabilizationOffset,
		Quality:             DefaultQuality,
		Format:              FormatJPEG,
		Backend:             BackendAuto,
		WriteManifest:       true,
		MinFreeBytes:        DefaultMinFreeBytes,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Sensitivity < MinSensitivity || c.Sensitivity > MaxSensitivity {
		return fmt.Errorf("%w: must be %.0f-%.0f, got %g", ErrInvalidSensitivity, MinSensitivity, MaxSensitivity, c.Sensitivity)
	}

	switch c.Strategy {
	case StrategyContent, StrategyAdaptive, StrategySceneFilter:
	default:
		return fmt.Errorf("%w: '%s', valid options: content, adaptive, scene-filter", ErrInvalidStrategy, c.Strategy)
	}

	if c.MinShotLength < 1 {
		return fmt.Errorf("%w: must be at least 1 frame, got %d", ErrInvalidMinShot, c.MinShotLength)
	}

	if c.StabilizationOffset < 0 {
		return fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidOffset, c.StabilizationOffset)
	}

	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("%w: must be 1-100, got %d", ErrInvalidQuality, c.Quality)
	}

	switch c.Format {
	case FormatJPEG, FormatPNG:
	default:
		return fmt.Errorf("%w: '%s', valid options: jpg, png", ErrInvalidFormat, c.Format)
	}

	switch c.Backend {
	case BackendAuto, BackendFFmpeg, BackendMPEG, BackendFFMS2:
	default:
		return fmt.Errorf("%w: '%s', valid options: auto, ffmpeg, mpeg, ffms2", ErrInvalidBackend, c.Backend)
	}

	if c.AnalysisWidth < 8 {
		return fmt.Errorf("%w: analysis width must be >= 8, got %d", ErrInvalidAnalysis, c.AnalysisWidth)
	}

	if c.Strategy == StrategyAdaptive {
		if c.AdaptiveWindow < 1 {
			return fmt.Errorf("%w: adaptive window must be >= 1, got %d", ErrInvalidAnalysis, c.AdaptiveWindow)
		}
		if c.AdaptiveRatio <= 1 {
			return fmt.Errorf("%w: adaptive ratio must be > 1, got %g", ErrInvalidAnalysis, c.AdaptiveRatio)
		}
	}

	return nil
}
