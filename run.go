package shotcut

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/five82/shotcut/internal/detect"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/frames"
	"github.com/five82/shotcut/internal/metrics"
	"github.com/five82/shotcut/internal/reporter"
	"github.com/five82/shotcut/internal/shots"
	"github.com/five82/shotcut/internal/tracing"
	"github.com/five82/shotcut/internal/util"
)

// Run is the handle for one completed extraction. Its catalog is only valid
// until the next run against the same output directory.
type Run struct {
	ID         string
	VideoPath  string
	OutputDir  string
	Video      frames.Info
	Intervals  []Interval
	Catalog    *Catalog
	Skipped    []Skipped
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns the wall time of the run.
func (r *Run) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (e *Extractor) run(ctx context.Context, videoPath, outputDir string) (_ *Run, err error) {
	cfg := e.config
	rep := e.reporter
	run := &Run{
		ID:        uuid.NewString(),
		VideoPath: videoPath,
		OutputDir: outputDir,
		StartedAt: time.Now(),
	}
	logger := e.logger.With().Str("run_id", run.ID).Str("video", videoPath).Logger()

	ctx, span := tracing.Tracer().Start(ctx, "shotcut.run", trace.WithAttributes(
		attribute.String("run.id", run.ID),
		attribute.String("video.path", videoPath),
		attribute.String("detect.strategy", string(cfg.Strategy)),
		attribute.Float64("detect.sensitivity", cfg.Sensitivity),
	))
	defer func() {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailed
			if serrors.IsCancelled(err) {
				status = metrics.StatusCancelled
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error().Err(err).Msg("run failed")
		}
		e.metrics.RunFinished(status)
		span.End()
	}()

	src, err := e.open(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close frame source")
		}
	}()

	run.Video = src.Info()
	rep.Initialization(reporter.InitializationSummary{
		InputFile:  videoPath,
		OutputDir:  outputDir,
		Duration:   util.FormatDuration(run.Video.Duration.Seconds()),
		Resolution: fmt.Sprintf("%dx%d", run.Video.Width, run.Video.Height),
		FrameRate:  fmt.Sprintf("%.3f fps", run.Video.FrameRate()),
		Backend:    string(run.Video.Backend),
	})
	logger.Info().
		Int("width", run.Video.Width).
		Int("height", run.Video.Height).
		Float64("fps", run.Video.FrameRate()).
		Str("backend", string(run.Video.Backend)).
		Msg("opened video")

	dir := shots.NewOutputDir(outputDir, cfg.MinFreeBytes)
	dir.Protect(videoPath)
	if err := dir.Reset(); err != nil {
		return nil, err
	}
	rep.StageProgress(reporter.StageProgress{
		Stage:   "output",
		Percent: 100,
		Message: fmt.Sprintf("Cleared %s", outputDir),
	})
	rep.Verbose(fmt.Sprintf("Run %s", run.ID))

	intervals, err := e.detect(ctx, src, run)
	if err != nil {
		return nil, err
	}
	run.Intervals = intervals

	catalog, skipped, err := e.materialize(ctx, src, dir, intervals)
	if err != nil {
		return nil, err
	}
	run.Catalog, run.Skipped = catalog, skipped

	if cfg.WriteManifest {
		manifest := shots.Manifest{
			RunID:       run.ID,
			Video:       videoPath,
			Width:       run.Video.Width,
			Height:      run.Video.Height,
			FrameRate:   fmt.Sprintf("%d/%d", run.Video.FPSNum, run.Video.FPSDen),
			Strategy:    string(cfg.Strategy),
			Sensitivity: cfg.Sensitivity,
			Skipped:     len(skipped),
			CreatedAt:   run.StartedAt.UTC(),
		}
		if err := shots.WriteManifest(outputDir, manifest, catalog); err != nil {
			return nil, err
		}
	}

	run.FinishedAt = time.Now()
	rep.RunComplete(reporter.RunOutcome{
		RunID:     run.ID,
		InputFile: videoPath,
		OutputDir: outputDir,
		Intervals: len(intervals),
		Shots:     catalog.Len(),
		Skipped:   len(skipped),
		TotalTime: run.Elapsed(),
	})
	logger.Info().
		Int("intervals", len(intervals)).
		Int("shots", catalog.Len()).
		Int("skipped", len(skipped)).
		Dur("elapsed", run.Elapsed()).
		Msg("run complete")

	return run, nil
}

func (e *Extractor) detect(ctx context.Context, src frames.Source, run *Run) ([]Interval, error) {
	cfg := e.config
	ctx, span := tracing.Tracer().Start(ctx, "shotcut.detect")
	defer span.End()

	detector, err := detect.New(cfg.Strategy, e.logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	params := detect.Params{
		Sensitivity:   cfg.Sensitivity,
		MinShotLength: cfg.MinShotLength,
		AnalysisWidth: cfg.AnalysisWidth,
		Window:        cfg.AdaptiveWindow,
		AdaptiveRatio: cfg.AdaptiveRatio,
		Progress: func(done, total int) {
			e.reporter.DetectionProgress(progressSnapshot(done, total, time.Since(start)))
		},
	}

	e.reporter.DetectionStarted(reporter.DetectionStartInfo{
		Strategy:      detector.Name(),
		Sensitivity:   cfg.Sensitivity,
		MinShotLength: cfg.MinShotLength,
		TotalFrames:   run.Video.TotalFrames,
	})

	intervals, err := detector.Detect(ctx, src, params)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	elapsed := time.Since(start)
	scanned := src.Info().TotalFrames
	run.Video.TotalFrames = scanned

	e.metrics.ObserveStage("detect", elapsed)
	e.metrics.AddFrames(scanned)
	e.metrics.AddIntervals(len(intervals))
	span.SetAttributes(attribute.Int("detect.intervals", len(intervals)), attribute.Int("detect.frames", scanned))

	e.reporter.DetectionComplete(reporter.DetectionSummary{
		Shots:         len(intervals),
		FramesScanned: scanned,
		Elapsed:       elapsed,
	})
	return intervals, nil
}

func (e *Extractor) materialize(ctx context.Context, src frames.Source, dir *shots.OutputDir, intervals []Interval) (*Catalog, []Skipped, error) {
	cfg := e.config
	ctx, span := tracing.Tracer().Start(ctx, "shotcut.materialize")
	defer span.End()

	start := time.Now()
	m := shots.NewMaterializer(shots.Options{
		StabilizationOffset: cfg.StabilizationOffset,
		Quality:             cfg.Quality,
		Format:              cfg.Format,
		Logger:              e.logger,
		OnSaved: func(rec shots.Record) {
			e.metrics.ShotSaved()
			e.reporter.ShotSaved(reporter.ShotInfo{
				ID:       rec.ID,
				Path:     rec.ImagePath,
				Timecode: rec.Timecode,
				Frame:    rec.Frame,
			})
		},
		OnSkipped: func(s shots.Skipped) {
			e.metrics.DecodeFailure()
			e.reporter.ShotSkipped(reporter.SkippedInfo{
				Start:  s.Interval.Start,
				Frame:  s.Frame,
				Reason: s.Err.Error(),
			})
		},
	})

	catalog, skipped, err := m.Materialize(ctx, src, dir, intervals)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	e.metrics.ObserveStage("materialize", time.Since(start))
	span.SetAttributes(attribute.Int("shots.saved", catalog.Len()), attribute.Int("shots.skipped", len(skipped)))
	return catalog, skipped, nil
}

// progressSnapshot derives rate and ETA from frames analyzed so far.
func progressSnapshot(done, total int, elapsed time.Duration) reporter.ProgressSnapshot {
	p := reporter.ProgressSnapshot{CurrentFrame: done, TotalFrames: total}
	if secs := elapsed.Seconds(); secs > 0 {
		p.FPS = float32(float64(done) / secs)
	}
	if total > 0 {
		p.Percent = float32(done) / float32(total) * 100
		if p.FPS > 0 && done < total {
			p.ETA = time.Duration(float64(total-done) / float64(p.FPS) * float64(time.Second))
		}
	}
	return p
}
