package frames

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
)

// backendMemory labels in-process sources in Info.
const backendMemory config.Backend = "memory"

// MemorySource serves frames that are already decoded. Frames listed in
// Broken fail random access with a frame decode error, which lets callers
// exercise the skip path.
type MemorySource struct {
	info   Info
	frames []image.Image
	Broken map[int]bool
	closed bool
}

// NewMemorySource wraps frames played back at fpsNum/fpsDen.
func NewMemorySource(name string, fpsNum, fpsDen uint32, frames []image.Image) *MemorySource {
	info := Info{
		Path:        name,
		FPSNum:      fpsNum,
		FPSDen:      fpsDen,
		TotalFrames: len(frames),
		Backend:     backendMemory,
	}
	if len(frames) > 0 {
		b := frames[0].Bounds()
		info.Width, info.Height = b.Dx(), b.Dy()
	}
	if fpsNum > 0 {
		info.Duration = time.Duration(float64(len(frames)) * float64(fpsDen) / float64(fpsNum) * float64(time.Second))
	}
	return &MemorySource{info: info, frames: frames, Broken: map[int]bool{}}
}

func (m *MemorySource) Info() Info { return m.info }

func (m *MemorySource) Scan(ctx context.Context, width int, fn ScanFunc) (int, error) {
	for i, f := range m.frames {
		if err := ctxErr(ctx); err != nil {
			return i, err
		}
		w, h := scaledSize(m.info.Width, m.info.Height, width)
		var img *image.NRGBA
		if w == m.info.Width && h == m.info.Height {
			img = imaging.Clone(f)
		} else {
			img = imaging.Resize(f, w, h, imaging.Box)
		}
		if err := fn(i, img); err != nil {
			return i, err
		}
	}
	return len(m.frames), nil
}

func (m *MemorySource) Frame(ctx context.Context, index int) (image.Image, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if m.closed {
		return nil, serrors.NewFrameDecodeError(m.info.Path, index, fmt.Errorf("source closed"))
	}
	if index < 0 || index >= len(m.frames) {
		return nil, serrors.NewFrameDecodeError(m.info.Path, index, fmt.Errorf("out of range 0-%d", len(m.frames)-1))
	}
	if m.Broken[index] {
		return nil, serrors.NewFrameDecodeError(m.info.Path, index, fmt.Errorf("corrupt frame"))
	}
	return m.frames[index], nil
}

func (m *MemorySource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemorySource) Closed() bool { return m.closed }

var _ Source = (*MemorySource)(nil)
