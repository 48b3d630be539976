// Package errors provides structured error types for shot extraction.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents generic I/O errors.
	KindIO ErrorKind = iota
	// KindUnreadableMedia means the video could not be opened or holds no decodable frames.
	KindUnreadableMedia
	// KindFrameDecode means a single frame could not be decoded at the requested position.
	KindFrameDecode
	// KindEmptyCatalog means an export was requested with nothing to export.
	KindEmptyCatalog
	// KindOutputWrite means the output location or an output file could not be written.
	KindOutputWrite
	// KindCommand represents external command execution errors.
	KindCommand
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindNoFilesFound represents no suitable video files found.
	KindNoFilesFound
	// KindUpload represents object storage failures.
	KindUpload
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindUnreadableMedia:
		return "Unreadable media"
	case KindFrameDecode:
		return "Frame decode failure"
	case KindEmptyCatalog:
		return "Empty catalog"
	case KindOutputWrite:
		return "Output write failure"
	case KindCommand:
		return "Command error"
	case KindConfig:
		return "Configuration error"
	case KindNoFilesFound:
		return "No files found"
	case KindUpload:
		return "Upload error"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for shotcut operations.
// Path and Op are optional and name the resource and step that failed.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Path       string
	Op         string
	Underlying error
}

func (e *CoreError) Error() string {
	msg := e.Message
	if e.Op != "" && e.Path != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Message)
	} else if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrUnreadableMedia = &CoreError{Kind: KindUnreadableMedia, Message: "unreadable media"}
	ErrFrameDecode     = &CoreError{Kind: KindFrameDecode, Message: "frame decode failure"}
	ErrEmptyCatalog    = &CoreError{Kind: KindEmptyCatalog, Message: "empty catalog"}
	ErrOutputWrite     = &CoreError{Kind: KindOutputWrite, Message: "output write failure"}
	ErrCancelled       = &CoreError{Kind: KindCancelled, Message: "operation was cancelled"}
)

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewUnreadableMediaError reports a video that cannot be opened or decoded.
func NewUnreadableMediaError(path, message string, underlying error) *CoreError {
	return &CoreError{Kind: KindUnreadableMedia, Path: path, Op: "open", Message: message, Underlying: underlying}
}

// NewFrameDecodeError reports a failure to decode the frame at index.
func NewFrameDecodeError(path string, index int, underlying error) *CoreError {
	return &CoreError{
		Kind:       KindFrameDecode,
		Path:       path,
		Op:         "decode",
		Message:    fmt.Sprintf("frame %d", index),
		Underlying: underlying,
	}
}

// NewEmptyCatalogError reports an export with no images.
func NewEmptyCatalogError(message string) *CoreError {
	return &CoreError{Kind: KindEmptyCatalog, Message: message}
}

// NewOutputWriteError reports a failed write. op names the step, e.g. "reset", "save", "manifest".
func NewOutputWriteError(op, path string, underlying error) *CoreError {
	return &CoreError{Kind: KindOutputWrite, Op: op, Path: path, Message: "write failed", Underlying: underlying}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	cmdErr := &CommandError{Command: cmd, Kind: CommandStart, Underlying: err}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Underlying: underlying}
}

// NewNoFilesFoundError creates an error for when no video files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no suitable video files found in %s", dir)}
}

// NewUploadError creates an object storage error.
func NewUploadError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindUpload, Message: message, Underlying: underlying}
}

// NewCancelledError wraps a context error as a cancellation.
func NewCancelledError(underlying error) *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled", Underlying: underlying}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsFatal reports whether err must abort a run. Frame decode failures are
// contained to the shot they affect.
func IsFatal(err error) bool {
	return err != nil && !IsKind(err, KindFrameDecode)
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
