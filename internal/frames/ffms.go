//go:build ffms2

package frames

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/ffms"
)

// FFMSSource serves frames from an FFMS2 index with exact seeking.
type FFMSSource struct {
	mu    sync.Mutex
	video *ffms.Video
	info  Info
}

// OpenFFMS indexes path with FFMS2.
func OpenFFMS(path string) (Source, error) {
	video, err := ffms.Open(path)
	if err != nil {
		return nil, serrors.NewUnreadableMediaError(path, "ffms2 could not index file", err)
	}
	if video.Frames == 0 {
		video.Close()
		return nil, serrors.NewUnreadableMediaError(path, "no decodable video frames", nil)
	}

	info := Info{
		Path:        path,
		Width:       video.Width,
		Height:      video.Height,
		FPSNum:      video.FPSNum,
		FPSDen:      video.FPSDen,
		TotalFrames: video.Frames,
		Backend:     config.BackendFFMS2,
	}
	if video.FPSNum > 0 {
		info.Duration = time.Duration(float64(video.Frames) * float64(video.FPSDen) / float64(video.FPSNum) * float64(time.Second))
	}
	return &FFMSSource{video: video, info: info}, nil
}

func (s *FFMSSource) Info() Info { return s.info }

func (s *FFMSSource) Scan(ctx context.Context, width int, fn ScanFunc) (int, error) {
	w, h := scaledSize(s.info.Width, s.info.Height, width)
	for i := 0; i < s.info.TotalFrames; i++ {
		if err := ctxErr(ctx); err != nil {
			return i, err
		}
		s.mu.Lock()
		img, err := s.video.Frame(i)
		s.mu.Unlock()
		if err != nil {
			return i, serrors.NewFrameDecodeError(s.info.Path, i, err)
		}
		if err := fn(i, imaging.Resize(img, w, h, imaging.Box)); err != nil {
			return i, err
		}
	}
	return s.info.TotalFrames, nil
}

func (s *FFMSSource) Frame(ctx context.Context, index int) (image.Image, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.video.Frame(index)
	if err != nil {
		return nil, serrors.NewFrameDecodeError(s.info.Path, index, err)
	}
	return img, nil
}

func (s *FFMSSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video.Close()
	return nil
}
