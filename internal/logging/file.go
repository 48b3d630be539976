package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// RunLog is a timestamped per-run log file.
type RunLog struct {
	file     *os.File
	filePath string
	Logger   zerolog.Logger
}

// Setup creates a log file named shotcut_run_<timestamp>.log in logDir.
// Returns nil if logging is disabled (noLog=true).
func Setup(logDir string, verbose, noLog bool) (*RunLog, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(logDir, fmt.Sprintf("shotcut_run_%s.log", timestamp))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	l := &RunLog{
		file:     file,
		filePath: filePath,
		Logger:   NewLogger(file).Level(levelFor(verbose)),
	}

	l.Logger.Info().Str("log_file", filePath).Bool("verbose", verbose).Msg("shotcut starting")

	return l, nil
}

// Close closes the log file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *RunLog) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Writer returns an io.Writer that writes to the log file.
func (l *RunLog) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
