package frames

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/ffprobe"
)

var quietArgs = []string{"-hide_banner", "-nostdin", "-loglevel", "error"}

// FFmpegSource decodes through ffmpeg subprocesses. Scan streams raw RGB
// frames over a pipe; Frame seeks and decodes a single PNG.
type FFmpegSource struct {
	mu      sync.Mutex
	info    Info
	scanned bool
	closed  bool
	logger  zerolog.Logger
}

// OpenFFmpeg probes path and returns a Source backed by ffmpeg.
func OpenFFmpeg(ctx context.Context, path string, logger zerolog.Logger) (*FFmpegSource, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, serrors.NewUnreadableMediaError(path, "cannot access file", err)
	}

	probe, err := ffprobe.Probe(path)
	if err != nil {
		return nil, serrors.NewUnreadableMediaError(path, "no decodable video stream", err)
	}

	return &FFmpegSource{
		info: Info{
			Path:        path,
			Width:       probe.Width,
			Height:      probe.Height,
			FPSNum:      probe.FPSNum,
			FPSDen:      probe.FPSDen,
			TotalFrames: probe.TotalFrames,
			Duration:    probe.Duration,
			Backend:     config.BackendFFmpeg,
		},
		logger: logger,
	}, nil
}

func (s *FFmpegSource) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *FFmpegSource) Scan(ctx context.Context, width int, fn ScanFunc) (int, error) {
	info := s.Info()
	w, h := scaledSize(info.Width, info.Height, width)

	args := ffmpeg.Input(info.Path).
		Filter("scale", ffmpeg.Args{strconv.Itoa(w), strconv.Itoa(h)}).
		Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgb24"}).
		GlobalArgs(quietArgs...).
		GetArgs()

	s.logger.Debug().Strs("args", args).Msg("starting analysis pass")

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(scanCtx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, serrors.NewIOError("failed to create stdout pipe", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, serrors.NewUnreadableMediaError(info.Path, "cannot start decoder", serrors.WrapExecError("ffmpeg", err, ""))
	}

	n, scanErr := readRGBFrames(scanCtx, bufio.NewReaderSize(stdout, w*h*3), w, h, fn)
	if scanErr != nil {
		cancel()
	}
	waitErr := cmd.Wait()

	if err := ctxErr(ctx); err != nil {
		return n, err
	}
	if scanErr != nil {
		return n, scanErr
	}
	if waitErr != nil && n == 0 {
		return 0, serrors.NewUnreadableMediaError(info.Path, "decoder produced no frames",
			serrors.WrapExecError("ffmpeg", waitErr, strings.TrimSpace(stderr.String())))
	}
	if waitErr != nil {
		s.logger.Warn().Err(waitErr).Int("frames", n).Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("decoder exited early, using frames read so far")
	}
	if n == 0 {
		return 0, serrors.NewUnreadableMediaError(info.Path, "no decodable video frames", nil)
	}

	s.mu.Lock()
	s.info.TotalFrames = n
	s.scanned = true
	s.mu.Unlock()

	return n, nil
}

// readRGBFrames reads packed rgb24 frames of w x h from r until EOF.
func readRGBFrames(ctx context.Context, r io.Reader, w, h int, fn ScanFunc) (int, error) {
	frameSize := w * h * 3
	buf := make([]byte, frameSize)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	n := 0
	for {
		if err := ctxErr(ctx); err != nil {
			return n, err
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return n, nil
			}
			return n, serrors.NewIOError("failed to read decoded frame", err)
		}

		pix := img.Pix
		for i, j := 0, 0; i < frameSize; i, j = i+3, j+4 {
			pix[j] = buf[i]
			pix[j+1] = buf[i+1]
			pix[j+2] = buf[i+2]
			pix[j+3] = 0xff
		}

		if err := fn(n, img); err != nil {
			return n, err
		}
		n++
	}
}

func (s *FFmpegSource) Frame(ctx context.Context, index int) (image.Image, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	info, scanned, closed := s.info, s.scanned, s.closed
	s.mu.Unlock()

	if closed {
		return nil, serrors.NewFrameDecodeError(info.Path, index, fmt.Errorf("source closed"))
	}
	if index < 0 || (scanned && index >= info.TotalFrames) {
		return nil, serrors.NewFrameDecodeError(info.Path, index, fmt.Errorf("out of range 0-%d", info.TotalFrames-1))
	}

	args := ffmpeg.Input(info.Path, ffmpeg.KwArgs{"ss": seekPosition(index, info.FrameRate())}).
		Output("pipe:", ffmpeg.KwArgs{"frames:v": 1, "format": "image2pipe", "vcodec": "png"}).
		GlobalArgs(quietArgs...).
		GetArgs()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cerr := ctxErr(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, serrors.NewFrameDecodeError(info.Path, index,
			serrors.WrapExecError("ffmpeg", err, strings.TrimSpace(stderr.String())))
	}
	if stdout.Len() == 0 {
		return nil, serrors.NewFrameDecodeError(info.Path, index, fmt.Errorf("decoder returned no frame"))
	}

	img, err := imaging.Decode(&stdout)
	if err != nil {
		return nil, serrors.NewFrameDecodeError(info.Path, index, err)
	}
	return img, nil
}

// seekPosition returns an input seek time that lands on frame index.
// Accurate seeking keeps the first frame whose timestamp is at or after the
// position, so half a frame early selects exactly index.
func seekPosition(index int, fps float64) string {
	if index <= 0 || fps <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.6f", (float64(index)-0.5)/fps)
}

func (s *FFmpegSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ Source = (*FFmpegSource)(nil)
