package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	Initialization(summary InitializationSummary)
	StageProgress(update StageProgress)
	DetectionStarted(info DetectionStartInfo)
	DetectionProgress(progress ProgressSnapshot)
	DetectionComplete(summary DetectionSummary)
	ShotSaved(shot ShotInfo)
	ShotSkipped(shot SkippedInfo)
	ValidationComplete(summary ValidationSummary)
	RunComplete(summary RunOutcome)
	ExportComplete(summary ExportSummary)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) Initialization(InitializationSummary) {}
func (NullReporter) StageProgress(StageProgress)          {}
func (NullReporter) DetectionStarted(DetectionStartInfo)  {}
func (NullReporter) DetectionProgress(ProgressSnapshot)   {}
func (NullReporter) DetectionComplete(DetectionSummary)   {}
func (NullReporter) ShotSaved(ShotInfo)                   {}
func (NullReporter) ShotSkipped(SkippedInfo)              {}
func (NullReporter) ValidationComplete(ValidationSummary) {}
func (NullReporter) RunComplete(RunOutcome)               {}
func (NullReporter) ExportComplete(ExportSummary)         {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) OperationComplete(string)             {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}
