// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname string
	OS       string
	CPUs     int
}

// InitializationSummary describes the current video before detection.
type InitializationSummary struct {
	InputFile  string
	OutputDir  string
	Duration   string
	Resolution string
	FrameRate  string
	Backend    string
}

// DetectionStartInfo describes a detection pass about to run.
type DetectionStartInfo struct {
	Strategy      string
	Sensitivity   float64
	MinShotLength int
	TotalFrames   int
}

// ProgressSnapshot contains detection progress information.
type ProgressSnapshot struct {
	CurrentFrame int
	TotalFrames  int
	Percent      float32
	FPS          float32
	ETA          time.Duration
}

// DetectionSummary contains detection results.
type DetectionSummary struct {
	Shots         int
	FramesScanned int
	Elapsed       time.Duration
}

// ShotInfo describes a saved shot.
type ShotInfo struct {
	ID       int
	Path     string
	Timecode string
	Frame    int
}

// SkippedInfo describes a shot whose frame could not be decoded.
type SkippedInfo struct {
	Start  int
	Frame  int
	Reason string
}

// ValidationSummary contains catalog verification results.
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// RunOutcome contains final results for one video.
type RunOutcome struct {
	RunID     string
	InputFile string
	OutputDir string
	Intervals int
	Shots     int
	Skipped   int
	TotalTime time.Duration
}

// ExportSummary describes a written or uploaded export artifact.
type ExportSummary struct {
	Kind  string
	Path  string
	Size  uint64
	Items int
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	TotalFiles            int
	TotalShots            int
	TotalDuration         time.Duration
	FileResults           []FileResult
	ValidationPassedCount int
	ValidationFailedCount int
}

// FileResult contains per-file extraction result.
type FileResult struct {
	Filename string
	Shots    int
	Error    string
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
