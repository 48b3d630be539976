// Package testvideo synthesizes small videos for tests with ffmpeg's lavfi
// color source.
package testvideo

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Segment is a run of solid color frames.
type Segment struct {
	Color   string
	Seconds float64
}

// Clip describes a synthetic video.
type Clip struct {
	Width    int
	Height   int
	FPS      int
	Segments []Segment
}

// RequireFFmpeg skips the test when ffmpeg or ffprobe is not installed.
func RequireFFmpeg(t testing.TB) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available: %v", bin, err)
		}
	}
}

// Write renders clip to path. The codec follows the extension: .mpg gets
// MPEG-1 in a program stream, anything else MPEG-4 Part 2.
func Write(t testing.TB, path string, clip Clip) {
	t.Helper()

	if len(clip.Segments) == 0 {
		t.Fatal("testvideo: no segments")
	}

	inputs := make([]*ffmpeg.Stream, 0, len(clip.Segments))
	for _, seg := range clip.Segments {
		src := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%g", seg.Color, clip.Width, clip.Height, clip.FPS, seg.Seconds)
		inputs = append(inputs, ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"}))
	}

	out := ffmpeg.KwArgs{"pix_fmt": "yuv420p", "q:v": 2, "r": clip.FPS}
	if strings.EqualFold(filepath.Ext(path), ".mpg") {
		out["c:v"] = "mpeg1video"
		out["f"] = "mpeg"
	} else {
		out["c:v"] = "mpeg4"
	}

	args := ffmpeg.Concat(inputs).
		Output(path, out).
		OverWriteOutput().
		GlobalArgs("-hide_banner", "-loglevel", "error").
		GetArgs()

	var stderr bytes.Buffer
	cmd := exec.Command("ffmpeg", args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("testvideo: ffmpeg %v failed: %v: %s", args, err, stderr.String())
	}
}

// ThreeShots is 5s black, 5s white, 2s blue at 30fps: cuts at frames 150 and 300.
func ThreeShots() Clip {
	return Clip{
		Width:  160,
		Height: 120,
		FPS:    30,
		Segments: []Segment{
			{Color: "black", Seconds: 5},
			{Color: "white", Seconds: 5},
			{Color: "blue", Seconds: 2},
		},
	}
}
