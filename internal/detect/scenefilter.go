package detect

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/frames"
)

// SceneFilterDetector delegates scoring to ffmpeg's scene filter and reads
// the selected frames back from showinfo. Sensitivity maps onto the filter's
// 0-1 scene score as Sensitivity/100.
type SceneFilterDetector struct {
	logger zerolog.Logger
}

// countWidth is the scan width used when the source has no frame count.
const countWidth = 64

// Example: [Parsed_showinfo_1 @ 0x...] n:   0 pts: 135052 pts_time:135.052 ...
var ptsTimeRegex = regexp.MustCompile(`pts_time:(\d+\.?\d*)`)

func (d *SceneFilterDetector) Name() string { return "scene-filter" }

func (d *SceneFilterDetector) Detect(ctx context.Context, src frames.Source, p Params) ([]Interval, error) {
	info := src.Info()
	if info.TotalFrames <= 0 {
		n, err := src.Scan(ctx, countWidth, func(int, *image.NRGBA) error { return nil })
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, serrors.NewUnreadableMediaError(info.Path, "no decodable video frames", nil)
		}
		d.logger.Debug().Int("frames", n).Msg("counted frames by decoding")
		info.TotalFrames = n
	}

	threshold := p.Sensitivity / 100
	args := ffmpeg.Input(info.Path).
		Output("-", ffmpeg.KwArgs{"vf": sceneFilter(threshold), "f": "null"}).
		GlobalArgs("-hide_banner", "-nostdin").
		GetArgs()

	d.logger.Debug().Strs("args", args).Msg("starting scene filter")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, serrors.NewIOError("failed to create stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, serrors.NewUnreadableMediaError(info.Path, "cannot start ffmpeg", serrors.WrapExecError("ffmpeg", err, ""))
	}

	var tail bytes.Buffer
	candidates, parseErr := parseShowinfo(io.TeeReader(stderr, &tailWriter{buf: &tail}), info.FrameRate())
	waitErr := cmd.Wait()

	if err := ctx.Err(); err != nil {
		return nil, serrors.NewCancelledError(err)
	}
	if parseErr != nil {
		return nil, serrors.NewIOError("error reading ffmpeg output", parseErr)
	}
	if waitErr != nil {
		return nil, serrors.NewUnreadableMediaError(info.Path, "scene filter failed",
			serrors.WrapExecError("ffmpeg", waitErr, tail.String()))
	}

	for _, c := range candidates {
		d.logger.Debug().Int("frame", c).Msg("cut candidate")
	}
	if p.Progress != nil {
		p.Progress(info.TotalFrames, info.TotalFrames)
	}

	return BuildIntervals(candidates, info.TotalFrames, p.MinShotLength, info.FPSNum, info.FPSDen), nil
}

// sceneFilter is passed as -vf so the expression's comma stays inside quotes.
// Timestamps are rebased to the first frame so pts_time maps onto frame
// indices for streams with a nonzero start time.
func sceneFilter(threshold float64) string {
	return fmt.Sprintf("setpts=PTS-STARTPTS,select='gt(scene,%g)',showinfo", threshold)
}

// parseShowinfo extracts the frame number of every showinfo line in r.
func parseShowinfo(r io.Reader, fps float64) ([]int, error) {
	var out []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		matches := ptsTimeRegex.FindStringSubmatch(scanner.Text())
		if len(matches) < 2 {
			continue
		}
		ptsTime, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			continue
		}
		out = append(out, int(math.Round(ptsTime*fps)))
	}
	return out, scanner.Err()
}

// tailWriter keeps the last tailLimit bytes written to it.
type tailWriter struct {
	buf *bytes.Buffer
}

const tailLimit = 2048

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if over := w.buf.Len() - tailLimit; over > 0 {
		w.buf.Next(over)
	}
	return len(p), nil
}
