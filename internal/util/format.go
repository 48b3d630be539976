// Package util provides utility functions for formatting and common operations.
package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	KiB = 1024
	MiB = KiB * 1024
	GiB = MiB * 1024
)

// FormatBytes formats bytes with appropriate binary units (B, KiB, MiB, GiB).
func FormatBytes(bytes uint64) string {
	bf := float64(bytes)
	switch {
	case bf >= GiB:
		return fmt.Sprintf("%.2f GiB", bf/GiB)
	case bf >= MiB:
		return fmt.Sprintf("%.2f MiB", bf/MiB)
	case bf >= KiB:
		return fmt.Sprintf("%.2f KiB", bf/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDuration formats seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds < 0 || seconds != seconds { // NaN check
		return "??:??:??"
	}

	totalSecs := int64(seconds)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatTimecode formats a position as HH:MM:SS.mmm.
func FormatTimecode(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	secs := (ms % 60_000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// ParseTimecode parses HH:MM:SS.mmm (or HH:MM:SS) back into a duration.
func ParseTimecode(tc string) (time.Duration, bool) {
	parts := strings.Split(tc, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, false
	}

	total := float64(hours*3600+minutes*60) + seconds
	return time.Duration(math.Round(total*1000)) * time.Millisecond, true
}

// FrameTime returns the presentation time of frame at fpsNum/fpsDen,
// rounded to the millisecond.
func FrameTime(frame int, fpsNum, fpsDen uint32) time.Duration {
	if fpsNum == 0 || fpsDen == 0 || frame <= 0 {
		return 0
	}
	secs := float64(frame) * float64(fpsDen) / float64(fpsNum)
	return time.Duration(math.Round(secs*1000)) * time.Millisecond
}

// ParseFrameRate parses an ffprobe rate such as "30000/1001" or "25".
func ParseFrameRate(s string) (num, den uint32, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}

	numStr, denStr, found := strings.Cut(s, "/")
	if !found {
		denStr = "1"
	}

	n, err := strconv.ParseUint(numStr, 10, 32)
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.ParseUint(denStr, 10, 32)
	if err != nil || d == 0 || n == 0 {
		return 0, 0, false
	}
	return uint32(n), uint32(d), true
}
