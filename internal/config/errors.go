package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSensitivity indicates a detection threshold outside the accepted range.
	ErrInvalidSensitivity = errors.New("sensitivity out of range")

	// ErrInvalidStrategy indicates an unknown detection strategy name.
	ErrInvalidStrategy = errors.New("invalid detection strategy")

	// ErrInvalidMinShot indicates a minimum shot length below one frame.
	ErrInvalidMinShot = errors.New("minimum shot length out of range")

	// ErrInvalidOffset indicates a negative stabilization offset.
	ErrInvalidOffset = errors.New("stabilization offset out of range")

	// ErrInvalidQuality indicates a JPEG quality outside 1-100.
	ErrInvalidQuality = errors.New("image quality out of range")

	// ErrInvalidFormat indicates an unsupported image format.
	ErrInvalidFormat = errors.New("invalid image format")

	// ErrInvalidBackend indicates an unknown frame source backend.
	ErrInvalidBackend = errors.New("invalid frame backend")

	// ErrInvalidAnalysis indicates bad analysis width or adaptive window settings.
	ErrInvalidAnalysis = errors.New("invalid analysis settings")
)
