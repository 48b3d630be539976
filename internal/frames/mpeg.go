package frames

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/mpeg"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
)

// maxEmptyDecodes bounds how many consecutive empty decodes are tolerated
// before the stream is treated as finished.
const maxEmptyDecodes = 4096

// MPEGSource decodes MPEG-1 program streams in pure Go. Random access
// decodes forward from the current position, rewinding only when asked for
// an earlier frame, so ascending requests cost one pass in total.
type MPEGSource struct {
	mu     sync.Mutex
	file   *os.File
	mpg    *mpeg.MPEG
	info   Info
	pos    int // index of the next frame DecodeVideo returns
	closed bool
}

// OpenMPEG opens an MPEG-1 file and counts its frames with one decode pass,
// so Info reports the frame count and duration before any Scan.
func OpenMPEG(ctx context.Context, path string) (*MPEGSource, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, serrors.NewUnreadableMediaError(path, "cannot access file", err)
	}

	mpg, err := mpeg.New(file)
	if err != nil {
		_ = file.Close()
		return nil, serrors.NewUnreadableMediaError(path, "not an MPEG-1 stream", err)
	}

	s := &MPEGSource{file: file, mpg: mpg}
	first := s.next()
	if first == nil {
		_ = file.Close()
		return nil, serrors.NewUnreadableMediaError(path, "no decodable video frames", nil)
	}

	for s.next() != nil {
		if err := ctxErr(ctx); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	num, den := fpsRational(mpg.Framerate())
	s.info = Info{
		Path:    path,
		Width:   first.Bounds().Dx(),
		Height:  first.Bounds().Dy(),
		FPSNum:  num,
		FPSDen:  den,
		Backend: config.BackendMPEG,
	}
	s.setFrameCount(s.pos)
	s.rewind()

	return s, nil
}

func (s *MPEGSource) setFrameCount(n int) {
	s.info.TotalFrames = n
	if s.info.FPSNum > 0 {
		s.info.Duration = time.Duration(float64(n) * float64(s.info.FPSDen) / float64(s.info.FPSNum) * float64(time.Second))
	}
}

// next decodes the following frame or returns nil at end of stream.
func (s *MPEGSource) next() *image.YCbCr {
	for empty := 0; empty < maxEmptyDecodes; empty++ {
		if frame := s.mpg.DecodeVideo(); frame != nil {
			s.pos++
			return frame.YCbCr()
		}
		if s.mpg.HasEnded() {
			return nil
		}
	}
	return nil
}

func (s *MPEGSource) rewind() {
	s.mpg.Rewind()
	s.pos = 0
}

func (s *MPEGSource) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *MPEGSource) Scan(ctx context.Context, width int, fn ScanFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, serrors.NewUnreadableMediaError(s.info.Path, "source closed", nil)
	}

	s.rewind()
	w, h := scaledSize(s.info.Width, s.info.Height, width)

	n := 0
	for {
		if err := ctxErr(ctx); err != nil {
			return n, err
		}
		frame := s.next()
		if frame == nil {
			break
		}
		if err := fn(n, imaging.Resize(frame, w, h, imaging.Box)); err != nil {
			return n, err
		}
		n++
	}

	if n == 0 {
		return 0, serrors.NewUnreadableMediaError(s.info.Path, "no decodable video frames", nil)
	}

	s.setFrameCount(n)
	return n, nil
}

func (s *MPEGSource) Frame(ctx context.Context, index int) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, serrors.NewFrameDecodeError(s.info.Path, index, fmt.Errorf("source closed"))
	}
	if index < 0 || index >= s.info.TotalFrames {
		return nil, serrors.NewFrameDecodeError(s.info.Path, index, fmt.Errorf("out of range 0-%d", s.info.TotalFrames-1))
	}

	if index < s.pos {
		s.rewind()
	}
	for {
		frame := s.next()
		if frame == nil {
			return nil, serrors.NewFrameDecodeError(s.info.Path, index, fmt.Errorf("stream ended at frame %d", s.pos))
		}
		if s.pos-1 == index {
			return imaging.Clone(frame), nil
		}
		if err := ctxErr(ctx); err != nil {
			return nil, err
		}
	}
}

func (s *MPEGSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

// fpsRational converts a decoder frame rate to a rational, recognising the
// NTSC 1000/1001 family.
func fpsRational(fps float64) (uint32, uint32) {
	if fps <= 0 {
		return 25, 1
	}
	for _, base := range []float64{24, 30, 60} {
		if math.Abs(fps-base*1000/1001) < 0.005 {
			return uint32(base * 1000), 1001
		}
	}
	if r := math.Round(fps); math.Abs(fps-r) < 0.005 {
		return uint32(r), 1
	}
	return uint32(math.Round(fps * 1000)), 1000
}

var _ Source = (*MPEGSource)(nil)
