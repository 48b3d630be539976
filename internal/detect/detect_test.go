package detect

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/frames"
	"github.com/five82/shotcut/internal/testvideo"
)

func solid(c color.Color, n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
		for y := 0; y < 12; y++ {
			for x := 0; x < 16; x++ {
				img.Set(x, y, c)
			}
		}
		out[i] = img
	}
	return out
}

func gray(v uint8) color.Color { return color.NRGBA{R: v, G: v, B: v, A: 0xff} }

var (
	black = gray(0)
	white = gray(255)
	blue  = color.NRGBA{B: 255, A: 0xff}
)

func concat(parts ...[]image.Image) []image.Image {
	var out []image.Image
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// threeShots mirrors a 12 second clip at 30fps with hard cuts at 150 and 300.
func threeShots() *frames.MemorySource {
	return frames.NewMemorySource("three.mem", 30, 1, concat(
		solid(black, 150),
		solid(white, 150),
		solid(blue, 60),
	))
}

func starts(intervals []Interval) []int {
	out := make([]int, len(intervals))
	for i, iv := range intervals {
		out[i] = iv.Start
	}
	return out
}

func assertWellFormed(t *testing.T, intervals []Interval, total, minLen int) {
	t.Helper()
	require.NotEmpty(t, intervals)
	assert.Equal(t, 0, intervals[0].Start)
	assert.Equal(t, total, intervals[len(intervals)-1].End)
	for i, iv := range intervals {
		assert.Greater(t, iv.End, iv.Start, "interval %d empty", i)
		if len(intervals) > 1 {
			assert.GreaterOrEqual(t, iv.Len(), minLen, "interval %d too short", i)
		}
		if i > 0 {
			assert.Equal(t, intervals[i-1].End, iv.Start, "interval %d not contiguous", i)
		}
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		h, s, v uint8
	}{
		{"black", 0, 0, 0, 0, 0, 0},
		{"white", 255, 255, 255, 0, 0, 255},
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"half cyan", 0, 128, 128, 90, 255, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := rgbToHSV(tt.r, tt.g, tt.b)
			if h != tt.h || s != tt.s || v != tt.v {
				t.Errorf("rgbToHSV(%d, %d, %d) = (%d, %d, %d), want (%d, %d, %d)",
					tt.r, tt.g, tt.b, h, s, v, tt.h, tt.s, tt.v)
			}
		})
	}
}

func TestContentScore(t *testing.T) {
	load := func(c color.Color) *hsvFrame {
		var f hsvFrame
		f.load(solid(c, 1)[0].(*image.NRGBA))
		return &f
	}

	assert.InDelta(t, 0, contentScore(load(black), load(black)), 1e-9)
	assert.InDelta(t, 85, contentScore(load(black), load(white)), 1e-9)
	assert.InDelta(t, 125, contentScore(load(white), load(blue)), 1e-9)
	assert.InDelta(t, 0, contentScore(&hsvFrame{}, load(white)), 1e-9, "size mismatch scores zero")
}

func TestBuildIntervals(t *testing.T) {
	tests := []struct {
		name       string
		candidates []int
		total      int
		minLen     int
		want       []int
	}{
		{"no frames", []int{10}, 0, 15, nil},
		{"no cuts", nil, 100, 15, []int{0}},
		{"sorted and deduped", []int{60, 30, 30, 60}, 100, 15, []int{0, 30, 60}},
		{"frame zero ignored", []int{0, 50}, 100, 15, []int{0, 50}},
		{"too close to previous cut", []int{10, 20, 40}, 100, 15, []int{0, 20, 40}},
		{"trailing short shot merged", []int{50, 95}, 100, 15, []int{0, 50}},
		{"cut on last frame dropped", []int{99}, 100, 1, []int{0, 99}},
		{"cut past end dropped", []int{100, 120}, 100, 1, []int{0}},
		{"video shorter than minimum", []int{3}, 10, 15, []int{0}},
		{"minimum clamped to one", []int{1, 2}, 3, 0, []int{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildIntervals(tt.candidates, tt.total, tt.minLen, 30, 1)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, starts(got))
			assertWellFormed(t, got, tt.total, tt.minLen)
		})
	}
}

func TestBuildIntervalsStartTime(t *testing.T) {
	got := BuildIntervals([]int{150, 300}, 360, 15, 30, 1)
	require.Len(t, got, 3)
	assert.Equal(t, time.Duration(0), got[0].StartTime)
	assert.Equal(t, 5*time.Second, got[1].StartTime)
	assert.Equal(t, 10*time.Second, got[2].StartTime)

	ntsc := BuildIntervals([]int{24}, 48, 1, 24000, 1001)
	assert.Equal(t, 1001*time.Millisecond, ntsc[1].StartTime)
}

func TestNew(t *testing.T) {
	for _, s := range []config.Strategy{config.StrategyContent, config.StrategyAdaptive, config.StrategySceneFilter} {
		d, err := New(s, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, string(s), d.Name())
	}

	_, err := New("histogram", zerolog.Nop())
	require.ErrorIs(t, err, config.ErrInvalidStrategy)
}

func TestContentDetectorThreeShots(t *testing.T) {
	d, err := New(config.StrategyContent, zerolog.Nop())
	require.NoError(t, err)

	src := threeShots()
	got, err := d.Detect(context.Background(), src, DefaultParams(config.StrategyContent))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 150, 300}, starts(got))
	assert.Equal(t, []time.Duration{0, 5 * time.Second, 10 * time.Second},
		[]time.Duration{got[0].StartTime, got[1].StartTime, got[2].StartTime})
	assertWellFormed(t, got, 360, config.DefaultMinShotLength)
}

func TestContentDetectorSingleShot(t *testing.T) {
	d := &ContentDetector{logger: zerolog.Nop()}
	src := frames.NewMemorySource("still.mem", 25, 1, solid(white, 40))

	got, err := d.Detect(context.Background(), src, DefaultParams(config.StrategyContent))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Interval{Start: 0, End: 40}, got[0])
}

func TestContentDetectorEmptySource(t *testing.T) {
	d := &ContentDetector{logger: zerolog.Nop()}
	src := frames.NewMemorySource("empty.mem", 25, 1, nil)

	got, err := d.Detect(context.Background(), src, DefaultParams(config.StrategyContent))
	require.NoError(t, err)
	assert.Empty(t, got)
}

// steps is a gray ladder whose cut scores are 13.3, 20, 33.3 and 40.
func steps() *frames.MemorySource {
	return frames.NewMemorySource("steps.mem", 30, 1, concat(
		solid(gray(0), 30),
		solid(gray(40), 30),
		solid(gray(100), 30),
		solid(gray(200), 30),
		solid(gray(80), 30),
	))
}

func TestSensitivityMonotonic(t *testing.T) {
	for _, strategy := range []config.Strategy{config.StrategyContent, config.StrategyAdaptive} {
		t.Run(string(strategy), func(t *testing.T) {
			d, err := New(strategy, zerolog.Nop())
			require.NoError(t, err)

			prev := -1
			for _, sens := range []float64{50, 45, 40, 35, 30, 25, 20, 15, 10} {
				p := DefaultParams(strategy)
				p.Sensitivity = sens
				got, err := d.Detect(context.Background(), steps(), p)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, len(got), prev, "sensitivity %g produced fewer shots", sens)
				prev = len(got)
			}
			assert.Equal(t, 5, prev)
		})
	}
}

// strobe alternates two grays every frame, scoring 30 on each frame.
func strobe(n int) []image.Image {
	out := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			out = append(out, solid(gray(100), 1)...)
		} else {
			out = append(out, solid(gray(190), 1)...)
		}
	}
	return out
}

func TestAdaptiveIgnoresSustainedMotion(t *testing.T) {
	src := func() *frames.MemorySource {
		return frames.NewMemorySource("strobe.mem", 30, 1, concat(
			solid(black, 60),
			strobe(60),
			solid(blue, 60),
		))
	}

	p := DefaultParams(config.StrategyContent)

	content, err := (&ContentDetector{logger: zerolog.Nop()}).Detect(context.Background(), src(), p)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 60, 75, 90, 105, 120}, starts(content))

	adaptive, err := (&AdaptiveDetector{logger: zerolog.Nop()}).Detect(context.Background(), src(), p)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 60, 120}, starts(adaptive))
	assertWellFormed(t, adaptive, 180, p.MinShotLength)
}

func TestDetectProgress(t *testing.T) {
	var calls, last int
	p := DefaultParams(config.StrategyContent)
	p.Progress = func(done, total int) {
		calls++
		last = done
		assert.Equal(t, 360, total)
	}

	_, err := (&ContentDetector{logger: zerolog.Nop()}).Detect(context.Background(), threeShots(), p)
	require.NoError(t, err)
	assert.Equal(t, 13, calls)
	assert.Equal(t, 360, last)
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&AdaptiveDetector{logger: zerolog.Nop()}).Detect(ctx, threeShots(), DefaultParams(config.StrategyAdaptive))
	require.Error(t, err)
	assert.True(t, serrors.IsCancelled(err))
}

func TestRollingMean(t *testing.T) {
	r := newRollingMean(3)
	_, ok := r.mean()
	assert.False(t, ok)

	r.push(3)
	m, ok := r.mean()
	assert.True(t, ok)
	assert.InDelta(t, 3, m, 1e-9)

	for _, v := range []float64{6, 9, 12} {
		r.push(v)
	}
	m, _ = r.mean()
	assert.InDelta(t, 9, m, 1e-9)

	assert.Len(t, newRollingMean(0).buf, 1)
}

func TestParseShowinfo(t *testing.T) {
	out := strings.Join([]string{
		"Input #0, matroska,webm, from 'in.mkv':",
		"[Parsed_showinfo_1 @ 0x5581] n:   0 pts:   5000 pts_time:5       duration: 1",
		"[Parsed_showinfo_1 @ 0x5581] n:   1 pts:  10000 pts_time:10.0    duration: 1",
		"[Parsed_showinfo_1 @ 0x5581] n:   2 pts:  10033 pts_time:10.0333 duration: 1",
		"frame=    3 fps=0.0 q=-0.0 Lsize=N/A time=00:00:12.00",
	}, "\n")

	got, err := parseShowinfo(strings.NewReader(out), 30)
	require.NoError(t, err)
	assert.Equal(t, []int{150, 300, 301}, got)
}

func TestSceneFilterArgument(t *testing.T) {
	assert.Equal(t, "setpts=PTS-STARTPTS,select='gt(scene,0.27)',showinfo", sceneFilter(0.27))
}

func TestSceneFilterNeedsFrameCount(t *testing.T) {
	d := &SceneFilterDetector{logger: zerolog.Nop()}
	_, err := d.Detect(context.Background(), frames.NewMemorySource("empty.mem", 30, 1, nil), DefaultParams(config.StrategySceneFilter))
	require.ErrorIs(t, err, serrors.ErrUnreadableMedia)
}

func TestDetectorsOnEncodedVideo(t *testing.T) {
	testvideo.RequireFFmpeg(t)

	dir := t.TempDir()
	for _, file := range []string{"three.mp4", "three.mpg"} {
		path := filepath.Join(dir, file)
		testvideo.Write(t, path, testvideo.ThreeShots())

		for _, strategy := range []config.Strategy{config.StrategyContent, config.StrategyAdaptive, config.StrategySceneFilter} {
			t.Run(file+"/"+string(strategy), func(t *testing.T) {
				src, err := frames.Open(context.Background(), path, frames.Options{Backend: config.BackendAuto, Logger: zerolog.Nop()})
				require.NoError(t, err)
				defer src.Close()

				d, err := New(strategy, zerolog.Nop())
				require.NoError(t, err)

				got, err := d.Detect(context.Background(), src, DefaultParams(strategy))
				require.NoError(t, err)
				require.Len(t, got, 3)
				for i, want := range []int{0, 150, 300} {
					assert.InDelta(t, want, got[i].Start, 1, "cut %d", i)
				}
				assert.Equal(t, 360, got[2].End)
			})
		}
	}
}

// uncountedSource hides the frame count of the wrapped source.
type uncountedSource struct {
	frames.Source
}

func (u uncountedSource) Info() frames.Info {
	info := u.Source.Info()
	info.TotalFrames = 0
	return info
}

func TestSceneFilterCountsFramesWhenUnknown(t *testing.T) {
	testvideo.RequireFFmpeg(t)

	path := filepath.Join(t.TempDir(), "three.mp4")
	testvideo.Write(t, path, testvideo.ThreeShots())

	src, err := frames.OpenFFmpeg(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	defer src.Close()

	d := &SceneFilterDetector{logger: zerolog.Nop()}
	got, err := d.Detect(context.Background(), uncountedSource{src}, DefaultParams(config.StrategySceneFilter))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 360, got[2].End)
}

func TestSceneFilterNonzeroStartTime(t *testing.T) {
	testvideo.RequireFFmpeg(t)

	// MPEG-TS output starts its timestamps well after zero.
	path := filepath.Join(t.TempDir(), "three.ts")
	testvideo.Write(t, path, testvideo.ThreeShots())

	src, err := frames.OpenFFmpeg(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	defer src.Close()

	d := &SceneFilterDetector{logger: zerolog.Nop()}
	got, err := d.Detect(context.Background(), src, DefaultParams(config.StrategySceneFilter))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []int{0, 150, 300} {
		assert.InDelta(t, want, got[i].Start, 1, "cut %d", i)
	}
}
