// Package processing runs the extractor over a list of videos and reports
// per-file and batch results.
package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/five82/shotcut"
	"github.com/five82/shotcut/internal/discovery"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/reporter"
	"github.com/five82/shotcut/internal/util"
)

// Runner extracts one video into a directory.
type Runner interface {
	RunTo(ctx context.Context, videoPath, outputDir string) (*shotcut.Run, error)
}

// Options controls per-file work after extraction.
type Options struct {
	// Verify checks every catalog against the images on disk.
	Verify bool
	// AfterRun is called for every successful run, e.g. to export it.
	AfterRun func(ctx context.Context, run *shotcut.Run) error
}

// FileOutcome is the result for one input video.
type FileOutcome struct {
	Filename         string
	Run              *shotcut.Run
	Err              error
	ValidationPassed bool
}

// ProcessVideos extracts each file into outputBase. A single file writes
// straight into outputBase; several files each get a subdirectory named after
// the video. Failures are reported and the batch moves on, except for
// cancellation, which stops the batch and is returned.
func ProcessVideos(
	ctx context.Context,
	runner Runner,
	filesToProcess []string,
	outputBase string,
	opts Options,
	rep reporter.Reporter,
) ([]FileOutcome, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS + "/" + sysInfo.Arch,
		CPUs:     sysInfo.NumCPU,
	})

	batch := len(filesToProcess) > 1
	if batch {
		var fileNames []string
		for _, f := range filesToProcess {
			fileNames = append(fileNames, filepath.Base(f))
		}
		rep.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(filesToProcess),
			FileList:   fileNames,
			OutputDir:  outputBase,
		})
	}

	var outputDirs []string
	if batch {
		outputDirs = discovery.OutputDirsFor(outputBase, filesToProcess)
	}

	var outcomes []FileOutcome
	batchStart := time.Now()

	for fileIdx, inputPath := range filesToProcess {
		if ctx.Err() != nil {
			rep.Warning(fmt.Sprintf("Extraction cancelled: %v", ctx.Err()))
			return outcomes, serrors.NewCancelledError(ctx.Err())
		}

		if batch {
			rep.FileProgress(reporter.FileProgressContext{
				CurrentFile: fileIdx + 1,
				TotalFiles:  len(filesToProcess),
			})
		}

		outputDir := outputBase
		if batch {
			outputDir = outputDirs[fileIdx]
		}

		outcome := processFile(ctx, runner, inputPath, outputDir, opts, rep)
		outcomes = append(outcomes, outcome)
		if serrors.IsCancelled(outcome.Err) {
			return outcomes, outcome.Err
		}
	}

	summarize(outcomes, len(filesToProcess), time.Since(batchStart), opts.Verify, rep)
	return outcomes, nil
}

func processFile(ctx context.Context, runner Runner, inputPath, outputDir string, opts Options, rep reporter.Reporter) FileOutcome {
	outcome := FileOutcome{Filename: filepath.Base(inputPath)}

	run, err := runner.RunTo(ctx, inputPath, outputDir)
	if err != nil {
		outcome.Err = err
		if !serrors.IsCancelled(err) {
			rep.Error(errorFor(inputPath, err))
		}
		return outcome
	}
	outcome.Run = run
	outcome.ValidationPassed = true

	if opts.Verify {
		result := run.Verify()
		outcome.ValidationPassed = result.IsValid()

		var steps []reporter.ValidationStep
		for _, s := range result.GetValidationSteps() {
			steps = append(steps, reporter.ValidationStep{
				Name:    s.Name,
				Passed:  s.Passed,
				Details: s.Details,
			})
		}
		rep.ValidationComplete(reporter.ValidationSummary{
			Passed: outcome.ValidationPassed,
			Steps:  steps,
		})
	}

	if opts.AfterRun != nil {
		if err := opts.AfterRun(ctx, run); err != nil {
			outcome.Err = err
			if !serrors.IsCancelled(err) {
				rep.Error(reporter.ReporterError{
					Title:   "Export Error",
					Message: fmt.Sprintf("Could not export shots for %s: %v", outcome.Filename, err),
					Context: fmt.Sprintf("Output: %s", outputDir),
				})
			}
		}
	}

	return outcome
}

// errorFor turns a run failure into a user-facing report.
func errorFor(inputPath string, err error) reporter.ReporterError {
	e := reporter.ReporterError{
		Title:   "Extraction Error",
		Message: fmt.Sprintf("Could not extract shots from %s: %v", filepath.Base(inputPath), err),
		Context: fmt.Sprintf("File: %s", inputPath),
	}
	switch {
	case serrors.IsKind(err, serrors.KindUnreadableMedia):
		e.Title = "Unreadable Video"
		e.Suggestion = "Check that the file is a valid video and that ffmpeg can decode it"
	case serrors.IsKind(err, serrors.KindOutputWrite):
		e.Title = "Output Error"
		e.Suggestion = "Check permissions and free space in the output directory"
	}
	return e
}

func summarize(outcomes []FileOutcome, totalFiles int, elapsed time.Duration, verified bool, rep reporter.Reporter) {
	var succeeded []FileOutcome
	for _, o := range outcomes {
		if o.Err == nil {
			succeeded = append(succeeded, o)
		}
	}

	if totalFiles == 1 {
		if len(succeeded) == 1 {
			rep.OperationComplete(fmt.Sprintf("Extracted %d shots from %s", succeeded[0].Run.Catalog.Len(), succeeded[0].Filename))
		}
		return
	}

	if len(succeeded) == 0 {
		rep.Warning("No files were successfully processed")
	}

	summary := reporter.BatchSummary{
		SuccessfulCount: len(succeeded),
		TotalFiles:      totalFiles,
		TotalDuration:   elapsed,
	}
	for _, o := range outcomes {
		fr := reporter.FileResult{Filename: o.Filename}
		if o.Err != nil {
			fr.Error = o.Err.Error()
		} else {
			fr.Shots = o.Run.Catalog.Len()
			summary.TotalShots += fr.Shots
			if verified {
				if o.ValidationPassed {
					summary.ValidationPassedCount++
				} else {
					summary.ValidationFailedCount++
				}
			}
		}
		summary.FileResults = append(summary.FileResults, fr)
	}
	rep.BatchComplete(summary)
}
