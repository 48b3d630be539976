package detect

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/five82/shotcut/internal/frames"
)

// AdaptiveDetector compares each score with the mean of the preceding
// Window scores. A frame is a candidate when its score reaches the
// sensitivity floor and is at least AdaptiveRatio times that mean, which
// ignores slow fades and lighting drift that raise every score together.
type AdaptiveDetector struct {
	logger zerolog.Logger
}

func (d *AdaptiveDetector) Name() string { return "adaptive" }

func (d *AdaptiveDetector) Detect(ctx context.Context, src frames.Source, p Params) ([]Interval, error) {
	w := newRollingMean(p.Window)

	var candidates []int
	total, err := scoreFrames(ctx, src, p, func(index int, score float64) {
		mean, ok := w.mean()
		w.push(score)

		if score < p.Sensitivity {
			return
		}
		if ok && mean > 0 && score/mean < p.AdaptiveRatio {
			return
		}
		d.logger.Debug().Int("frame", index).Float64("score", score).Float64("window_mean", mean).Msg("cut candidate")
		candidates = append(candidates, index)
	})
	if err != nil {
		return nil, err
	}

	info := src.Info()
	return BuildIntervals(candidates, total, p.MinShotLength, info.FPSNum, info.FPSDen), nil
}

// rollingMean averages the most recent size values.
type rollingMean struct {
	buf  []float64
	next int
	full bool
	sum  float64
}

func newRollingMean(size int) *rollingMean {
	if size < 1 {
		size = 1
	}
	return &rollingMean{buf: make([]float64, size)}
}

func (r *rollingMean) push(v float64) {
	r.sum += v - r.buf[r.next]
	r.buf[r.next] = v
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// mean returns the average of the values held so far, or false when empty.
func (r *rollingMean) mean() (float64, bool) {
	n := r.next
	if r.full {
		n = len(r.buf)
	}
	if n == 0 {
		return 0, false
	}
	return r.sum / float64(n), true
}
