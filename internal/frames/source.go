// Package frames decodes video frames for shot detection and extraction.
//
// A Source offers two access patterns: one downscaled linear pass over every
// frame for content analysis, and random access to a single full-size frame
// for materializing a shot.
package frames

import (
	"context"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
)

// Info describes the opened video.
type Info struct {
	Path   string
	Width  int
	Height int
	FPSNum uint32
	FPSDen uint32
	// TotalFrames may be an estimate until a Scan completes.
	TotalFrames int
	Duration    time.Duration
	Backend     config.Backend
}

// FrameRate returns frames per second as a float.
func (i Info) FrameRate() float64 {
	if i.FPSDen == 0 {
		return 0
	}
	return float64(i.FPSNum) / float64(i.FPSDen)
}

// ScanFunc receives each frame of a linear pass. img is only valid for the
// duration of the call.
type ScanFunc func(index int, img *image.NRGBA) error

// Source is an open decode context over one video.
type Source interface {
	Info() Info
	// Scan decodes every frame in order, scaled to width pixels wide
	// (0 keeps the native size), and returns the number of frames seen.
	Scan(ctx context.Context, width int, fn ScanFunc) (int, error)
	// Frame decodes the frame at index at full resolution.
	Frame(ctx context.Context, index int) (image.Image, error)
	io.Closer
}

// Options controls how Open picks a backend.
type Options struct {
	Backend config.Backend
	Logger  zerolog.Logger
}

var mpegExtensions = map[string]bool{
	".mpg":  true,
	".mpeg": true,
	".m1v":  true,
}

// Open opens path with the requested backend. BackendAuto uses the pure-Go
// MPEG-1 decoder for .mpg files and ffmpeg for everything else.
func Open(ctx context.Context, path string, opts Options) (Source, error) {
	backend := opts.Backend
	if backend == "" || backend == config.BackendAuto {
		backend = config.BackendFFmpeg
		if mpegExtensions[strings.ToLower(filepath.Ext(path))] {
			backend = config.BackendMPEG
		}
	}

	switch backend {
	case config.BackendMPEG:
		src, err := OpenMPEG(ctx, path)
		if err == nil {
			return src, nil
		}
		if opts.Backend != "" && opts.Backend != config.BackendAuto {
			return nil, err
		}
		if serrors.IsCancelled(err) {
			return nil, err
		}
		opts.Logger.Debug().Err(err).Str("path", path).Msg("mpeg decoder rejected file, falling back to ffmpeg")
		return openFFmpeg(ctx, path, opts)
	case config.BackendFFMS2:
		return OpenFFMS(path)
	default:
		return openFFmpeg(ctx, path, opts)
	}
}

func openFFmpeg(ctx context.Context, path string, opts Options) (Source, error) {
	src, err := OpenFFmpeg(ctx, path, opts.Logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// scaledSize returns the analysis dimensions for a width x height frame
// scaled to target width, keeping both sides even and at least 2.
func scaledSize(width, height, target int) (int, int) {
	if target <= 0 || target >= width {
		return width, height
	}
	h := int(float64(height)*float64(target)/float64(width) + 0.5)
	w := target &^ 1
	h &^= 1
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return w, h
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return serrors.NewCancelledError(err)
	}
	return nil
}
