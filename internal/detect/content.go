package detect

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/five82/shotcut/internal/frames"
)

// ContentDetector cuts wherever the HSV content score between consecutive
// frames reaches the sensitivity threshold.
type ContentDetector struct {
	logger zerolog.Logger
}

func (d *ContentDetector) Name() string { return "content" }

func (d *ContentDetector) Detect(ctx context.Context, src frames.Source, p Params) ([]Interval, error) {
	var candidates []int
	total, err := scoreFrames(ctx, src, p, func(index int, score float64) {
		if score >= p.Sensitivity {
			d.logger.Debug().Int("frame", index).Float64("score", score).Msg("cut candidate")
			candidates = append(candidates, index)
		}
	})
	if err != nil {
		return nil, err
	}

	info := src.Info()
	return BuildIntervals(candidates, total, p.MinShotLength, info.FPSNum, info.FPSDen), nil
}
