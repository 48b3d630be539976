// Package detect finds shot boundaries in a frame source.
//
// Every strategy produces candidate cut frames; BuildIntervals turns those
// into contiguous shot intervals that respect the minimum shot length.
package detect

import (
	"context"
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shotcut/internal/config"
	"github.com/five82/shotcut/internal/frames"
	"github.com/five82/shotcut/internal/util"
)

// Interval is one shot. End is exclusive.
type Interval struct {
	Start     int           `json:"start_frame"`
	End       int           `json:"end_frame"`
	StartTime time.Duration `json:"start_time"`
}

// Len returns the number of frames in the interval.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// ProgressFunc is called periodically during a scan with frames analyzed so
// far and the expected total (0 when unknown).
type ProgressFunc func(done, total int)

// Params tunes a detection pass.
type Params struct {
	Sensitivity   float64
	MinShotLength int
	AnalysisWidth int
	Window        int
	AdaptiveRatio float64
	Progress      ProgressFunc
}

// DefaultParams returns the defaults for strategy.
func DefaultParams(strategy config.Strategy) Params {
	return Params{
		Sensitivity:   config.DefaultSensitivity,
		MinShotLength: config.DefaultMinShotLengthFor(strategy),
		AnalysisWidth: config.DefaultAnalysisWidth,
		Window:        config.DefaultAdaptiveWindow,
		AdaptiveRatio: config.DefaultAdaptiveRatio,
	}
}

// Detector turns a frame source into ordered shot intervals. Implementations
// keep no state between calls.
type Detector interface {
	Name() string
	Detect(ctx context.Context, src frames.Source, p Params) ([]Interval, error)
}

// New returns the detector for strategy.
func New(strategy config.Strategy, logger zerolog.Logger) (Detector, error) {
	logger = logger.With().Str("component", "detect").Str("strategy", string(strategy)).Logger()

	switch strategy {
	case config.StrategyContent:
		return &ContentDetector{logger: logger}, nil
	case config.StrategyAdaptive:
		return &AdaptiveDetector{logger: logger}, nil
	case config.StrategySceneFilter:
		return &SceneFilterDetector{logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", config.ErrInvalidStrategy, strategy)
	}
}

// progressEvery is how many frames pass between progress callbacks.
const progressEvery = 30

// scoreFrames runs one linear pass over src and calls fn with the content
// score of every frame after the first. It returns the number of frames seen.
func scoreFrames(ctx context.Context, src frames.Source, p Params, fn func(index int, score float64)) (int, error) {
	total := src.Info().TotalFrames

	var prev, cur hsvFrame
	n, err := src.Scan(ctx, p.AnalysisWidth, func(index int, img *image.NRGBA) error {
		cur.load(img)
		if index > 0 {
			fn(index, contentScore(&prev, &cur))
		}
		prev, cur = cur, prev
		if p.Progress != nil && index%progressEvery == 0 {
			p.Progress(index, total)
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	if p.Progress != nil {
		p.Progress(n, n)
	}
	return n, nil
}

// BuildIntervals converts candidate cut frames into contiguous intervals
// covering [0, total). Frame 0 always starts the first shot. A candidate is
// accepted when it is at least minLen frames after the previous cut and
// leaves at least minLen frames before the end, so no shot is shorter than
// minLen unless the whole video is.
func BuildIntervals(candidates []int, total, minLen int, fpsNum, fpsDen uint32) []Interval {
	if total <= 0 {
		return nil
	}
	if minLen < 1 {
		minLen = 1
	}

	sorted := append([]int(nil), candidates...)
	sort.Ints(sorted)

	cuts := []int{0}
	for _, c := range sorted {
		last := cuts[len(cuts)-1]
		if c <= last || c-last < minLen || c > total-minLen {
			continue
		}
		cuts = append(cuts, c)
	}

	intervals := make([]Interval, len(cuts))
	for i, start := range cuts {
		end := total
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		intervals[i] = Interval{
			Start:     start,
			End:       end,
			StartTime: util.FrameTime(start, fpsNum, fpsDen),
		}
	}
	return intervals
}
