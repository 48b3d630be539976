package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/shotcut/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a terminal reporter on stdout and stderr.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen, color.Bold),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label padded to width followed by a value.
// Padding is applied before styling so escape codes do not skew alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.section("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "System:", fmt.Sprintf("%s, %d CPUs", summary.OS, summary.CPUs))
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	r.section("VIDEO")
	r.printLabel(11, "File:", summary.InputFile)
	r.printLabel(11, "Output:", summary.OutputDir)
	r.printLabel(11, "Duration:", summary.Duration)
	r.printLabel(11, "Resolution:", summary.Resolution)
	r.printLabel(11, "Frame rate:", summary.FrameRate)
	r.printLabel(11, "Decoder:", summary.Backend)
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	newStage := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()

	if newStage {
		r.section(strings.ToUpper(update.Stage))
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) DetectionStarted(info DetectionStartInfo) {
	r.section("DETECTION")
	r.printLabel(12, "Strategy:", info.Strategy)
	r.printLabel(12, "Sensitivity:", fmt.Sprintf("%g", info.Sensitivity))
	r.printLabel(12, "Min shot:", fmt.Sprintf("%d frames", info.MinShotLength))

	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Scanning [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) DetectionProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("frame %d, %.0f fps, eta %s",
		progress.CurrentFrame, progress.FPS, util.FormatDuration(progress.ETA.Seconds()))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) DetectionComplete(summary DetectionSummary) {
	r.finishProgress()
	_, _ = fmt.Fprintf(r.out, "  %s %s in %d frames (%s)\n",
		r.magenta.Sprint("›"),
		r.bold.Sprintf("%d shots", summary.Shots),
		summary.FramesScanned,
		util.FormatDuration(summary.Elapsed.Seconds()))
}

func (r *TerminalReporter) ShotSaved(shot ShotInfo) {
	_, _ = fmt.Fprintf(r.out, "  %s %s %s %s\n",
		r.green.Sprint("✓"),
		r.bold.Sprintf("#%03d", shot.ID),
		shot.Timecode,
		r.faint.Sprint(shot.Path))
}

func (r *TerminalReporter) ShotSkipped(shot SkippedInfo) {
	_, _ = r.yellow.Fprintf(r.out, "  ! skipped shot at frame %d: %s\n", shot.Start, shot.Reason)
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.finishProgress()
	r.section("VALIDATION")

	if summary.Passed {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.green.Sprint("All checks passed"))
	} else {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.red.Sprint("Validation failed"))
	}

	maxLen := 0
	for _, step := range summary.Steps {
		if len(step.Name) > maxLen {
			maxLen = len(step.Name)
		}
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		_, _ = fmt.Fprintf(r.out, "  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) RunComplete(summary RunOutcome) {
	r.section("RESULTS")
	r.printLabel(9, "Shots:", r.bold.Sprintf("%d of %d", summary.Shots, summary.Intervals))
	if summary.Skipped > 0 {
		r.printLabel(9, "Skipped:", r.yellow.Sprint(summary.Skipped))
	}
	r.printLabel(9, "Time:", util.FormatDuration(summary.TotalTime.Seconds()))
	r.printLabel(9, "Run:", summary.RunID)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputDir))
}

func (r *TerminalReporter) ExportComplete(summary ExportSummary) {
	_, _ = fmt.Fprintf(r.out, "  %s %s %s (%d items, %s)\n",
		r.magenta.Sprint("›"),
		r.bold.Sprint(strings.ToUpper(summary.Kind)),
		summary.Path,
		summary.Items,
		util.FormatBytes(summary.Size))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.green.Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.section("BATCH")
	_, _ = fmt.Fprintf(r.out, "  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nFile %s of %d\n", r.bold.Sprint(context.CurrentFile), context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.section("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	_, _ = fmt.Fprintf(r.out, "  Shots: %d\n", summary.TotalShots)
	if summary.ValidationPassedCount+summary.ValidationFailedCount > 0 {
		_, _ = fmt.Fprintf(r.out, "  Validation: %s passed, %s failed\n",
			r.green.Sprint(summary.ValidationPassedCount),
			r.red.Sprint(summary.ValidationFailedCount))
	}
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", util.FormatDuration(summary.TotalDuration.Seconds()))

	for _, result := range summary.FileResults {
		if result.Error != "" {
			_, _ = fmt.Fprintf(r.out, "  - %s (%s)\n", result.Filename, r.red.Sprint(result.Error))
			continue
		}
		_, _ = fmt.Fprintf(r.out, "  - %s (%d shots)\n", result.Filename, result.Shots)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = r.faint.Fprintf(r.out, "  %s\n", message)
}
