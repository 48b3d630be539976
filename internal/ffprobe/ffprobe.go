// Package ffprobe extracts video stream information using ffprobe.
package ffprobe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/five82/shotcut/internal/util"
)

// VideoInfo describes the first video stream of a file.
type VideoInfo struct {
	Width     int
	Height    int
	FPSNum    uint32
	FPSDen    uint32
	CodecName string
	// TotalFrames is the container's frame count, or an estimate from
	// duration and frame rate when the container does not record it.
	TotalFrames int
	Duration    time.Duration
}

// FrameRate returns frames per second as a float.
func (v VideoInfo) FrameRate() float64 {
	if v.FPSDen == 0 {
		return 0
	}
	return float64(v.FPSNum) / float64(v.FPSDen)
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	NbFrames     string `json:"nb_frames"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

// Probe runs ffprobe on path and returns its video stream information.
func Probe(path string) (*VideoInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	probe, err := parseFFprobeOutput([]byte(out))
	if err != nil {
		return nil, err
	}

	return videoInfoFrom(probe, path)
}

func parseFFprobeOutput(data []byte) (*ffprobeOutput, error) {
	var result ffprobeOutput
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &result, nil
}

func videoInfoFrom(probe *ffprobeOutput, path string) (*VideoInfo, error) {
	var stream *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			stream = &probe.Streams[i]
			break
		}
	}

	if stream == nil {
		return nil, fmt.Errorf("no video stream found in %s", path)
	}

	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions in %s: %dx%d", path, stream.Width, stream.Height)
	}

	num, den, ok := util.ParseFrameRate(stream.AvgFrameRate)
	if !ok {
		num, den, ok = util.ParseFrameRate(stream.RFrameRate)
	}
	if !ok {
		return nil, fmt.Errorf("no usable frame rate in %s", path)
	}

	info := &VideoInfo{
		Width:     stream.Width,
		Height:    stream.Height,
		FPSNum:    num,
		FPSDen:    den,
		CodecName: stream.CodecName,
	}

	secs := parseSeconds(stream.Duration)
	if secs <= 0 {
		secs = parseSeconds(probe.Format.Duration)
	}
	if secs > 0 {
		info.Duration = time.Duration(math.Round(secs * float64(time.Second)))
	}

	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		info.TotalFrames = n
	} else if secs > 0 {
		info.TotalFrames = int(math.Round(secs * info.FrameRate()))
	}

	return info, nil
}

func parseSeconds(s string) float64 {
	if s == "" || s == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
