package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON event per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
	now                func() time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
		now:                time.Now,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return r.now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":      "hardware",
		"hostname":  summary.Hostname,
		"os":        summary.OS,
		"cpus":      summary.CPUs,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]interface{}{
		"type":       "initialization",
		"input_file": summary.InputFile,
		"output_dir": summary.OutputDir,
		"duration":   summary.Duration,
		"resolution": summary.Resolution,
		"frame_rate": summary.FrameRate,
		"backend":    summary.Backend,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]interface{}{
		"type":      "stage_progress",
		"stage":     update.Stage,
		"percent":   update.Percent,
		"message":   update.Message,
		"timestamp": r.timestamp(),
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) DetectionStarted(info DetectionStartInfo) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":            "detection_started",
		"strategy":        info.Strategy,
		"sensitivity":     info.Sensitivity,
		"min_shot_length": info.MinShotLength,
		"total_frames":    info.TotalFrames,
		"timestamp":       r.timestamp(),
	})
}

// DetectionProgress emits at most one event per whole percent, plus one
// every few seconds when progress stalls.
func (r *JSONReporter) DetectionProgress(progress ProgressSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := r.now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":          "detection_progress",
		"stage":         "detection",
		"current_frame": progress.CurrentFrame,
		"total_frames":  progress.TotalFrames,
		"percent":       progress.Percent,
		"fps":           progress.FPS,
		"eta_seconds":   int64(progress.ETA.Seconds()),
		"timestamp":     r.timestamp(),
	})
}

func (r *JSONReporter) DetectionComplete(summary DetectionSummary) {
	r.write(map[string]interface{}{
		"type":            "detection_complete",
		"shots":           summary.Shots,
		"frames_scanned":  summary.FramesScanned,
		"elapsed_seconds": summary.Elapsed.Seconds(),
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) ShotSaved(shot ShotInfo) {
	r.write(map[string]interface{}{
		"type":      "shot_saved",
		"id":        shot.ID,
		"path":      shot.Path,
		"timecode":  shot.Timecode,
		"frame":     shot.Frame,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) ShotSkipped(shot SkippedInfo) {
	r.write(map[string]interface{}{
		"type":        "shot_skipped",
		"start_frame": shot.Start,
		"frame":       shot.Frame,
		"reason":      shot.Reason,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]interface{}, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]interface{}{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]interface{}{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
		"timestamp":         r.timestamp(),
	})
}

func (r *JSONReporter) RunComplete(summary RunOutcome) {
	r.write(map[string]interface{}{
		"type":             "run_complete",
		"run_id":           summary.RunID,
		"input_file":       summary.InputFile,
		"output_dir":       summary.OutputDir,
		"intervals":        summary.Intervals,
		"shots":            summary.Shots,
		"skipped":          summary.Skipped,
		"duration_seconds": summary.TotalTime.Seconds(),
		"timestamp":        r.timestamp(),
	})
}

func (r *JSONReporter) ExportComplete(summary ExportSummary) {
	r.write(map[string]interface{}{
		"type":      "export_complete",
		"kind":      summary.Kind,
		"path":      summary.Path,
		"size":      summary.Size,
		"items":     summary.Items,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]interface{}{
		"type":      "operation_complete",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]interface{}{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]interface{}{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]interface{}, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]interface{}{
			"filename": fr.Filename,
			"shots":    fr.Shots,
			"error":    fr.Error,
		}
	}

	r.write(map[string]interface{}{
		"type":                   "batch_complete",
		"successful_count":       summary.SuccessfulCount,
		"total_files":            summary.TotalFiles,
		"total_shots":            summary.TotalShots,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"validation_passed":      summary.ValidationPassedCount,
		"validation_failed":      summary.ValidationFailedCount,
		"file_results":           results,
		"timestamp":              r.timestamp(),
	})
}

// Verbose messages are terminal-only.
func (r *JSONReporter) Verbose(string) {}
