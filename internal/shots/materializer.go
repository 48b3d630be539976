package shots

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/five82/shotcut/internal/config"
	"github.com/five82/shotcut/internal/detect"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/frames"
	"github.com/five82/shotcut/internal/util"
)

// Skipped records an interval whose representative frame could not be decoded.
type Skipped struct {
	Interval detect.Interval
	Frame    int
	Err      error
}

// Options configures a Materializer.
type Options struct {
	StabilizationOffset int
	Quality             int
	Format              config.ImageFormat
	Logger              zerolog.Logger

	// OnSaved and OnSkipped, when set, are called as each interval is handled.
	OnSaved   func(Record)
	OnSkipped func(Skipped)
}

// Materializer saves one still per interval.
type Materializer struct {
	opts   Options
	logger zerolog.Logger
}

// NewMaterializer fills unset options with defaults.
func NewMaterializer(opts Options) *Materializer {
	if opts.Quality == 0 {
		opts.Quality = config.DefaultQuality
	}
	if opts.Format == "" {
		opts.Format = config.FormatJPEG
	}
	return &Materializer{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "materialize").Logger(),
	}
}

// TargetFrame returns the frame extracted for iv: offset frames past the
// cut, kept inside the interval.
func TargetFrame(iv detect.Interval, offset int) int {
	target := iv.Start + offset
	if target >= iv.End {
		target = iv.End - 1
	}
	if target < iv.Start {
		target = iv.Start
	}
	return target
}

// Materialize decodes and saves a frame for each interval into dir, which
// must have been Reset. Decode failures skip the interval; write failures
// abort. Ids count successful saves, so they stay dense.
func (m *Materializer) Materialize(ctx context.Context, src frames.Source, dir *OutputDir, intervals []detect.Interval) (*Catalog, []Skipped, error) {
	if !dir.Ready() {
		return nil, nil, serrors.NewOutputWriteError("save", dir.Path(), fmt.Errorf("output directory has not been reset"))
	}

	records := make([]Record, 0, len(intervals))
	var skipped []Skipped

	for _, iv := range intervals {
		if err := ctx.Err(); err != nil {
			return nil, skipped, serrors.NewCancelledError(err)
		}

		target := TargetFrame(iv, m.opts.StabilizationOffset)
		img, err := src.Frame(ctx, target)
		if err != nil {
			if serrors.IsFatal(err) {
				return nil, skipped, err
			}
			s := Skipped{Interval: iv, Frame: target, Err: err}
			skipped = append(skipped, s)
			m.logger.Warn().Err(err).Int("start", iv.Start).Int("frame", target).Msg("skipping shot")
			if m.opts.OnSkipped != nil {
				m.opts.OnSkipped(s)
			}
			continue
		}

		id := len(records) + 1
		path := dir.ImagePath(id, m.opts.Format)
		if err := imaging.Save(img, path, imaging.JPEGQuality(m.opts.Quality)); err != nil {
			return nil, skipped, serrors.NewOutputWriteError("save", path, err)
		}

		rec := Record{
			ID:        id,
			ImagePath: path,
			Timecode:  util.FormatTimecode(iv.StartTime),
			Start:     iv.Start,
			Frame:     target,
			Time:      iv.StartTime,
		}
		records = append(records, rec)
		m.logger.Debug().Int("id", id).Int("frame", target).Str("path", path).Msg("saved shot")
		if m.opts.OnSaved != nil {
			m.opts.OnSaved(rec)
		}
	}

	return NewCatalog(records), skipped, nil
}
