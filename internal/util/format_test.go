package util

import (
	"math"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1024 * 1024, "1.00 MiB"},
		{1024 * 1024 * 1024 * 2, "2.00 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3661, "01:01:01"},
		{-1, "??:??:??"},
		{math.NaN(), "??:??:??"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{5 * time.Second, "00:00:05.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond, "01:02:03.045"},
		{-time.Second, "00:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTimecode(tt.d); got != tt.want {
				t.Errorf("FormatTimecode(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestParseTimecodeInvertsFormat(t *testing.T) {
	for _, d := range []time.Duration{0, 33 * time.Millisecond, 10 * time.Second, 75*time.Minute + 999*time.Millisecond} {
		tc := FormatTimecode(d)
		got, ok := ParseTimecode(tc)
		if !ok {
			t.Fatalf("ParseTimecode(%q) failed", tc)
		}
		if got != d {
			t.Errorf("ParseTimecode(%q) = %v, want %v", tc, got, d)
		}
	}

	for _, bad := range []string{"", "12:34", "aa:00:00", "00:61:00", "00:00:75"} {
		if _, ok := ParseTimecode(bad); ok {
			t.Errorf("ParseTimecode(%q) should fail", bad)
		}
	}
}

func TestFrameTime(t *testing.T) {
	tests := []struct {
		name  string
		frame int
		num   uint32
		den   uint32
		want  time.Duration
	}{
		{"frame zero", 0, 30, 1, 0},
		{"five seconds at 30fps", 150, 30, 1, 5 * time.Second},
		{"ntsc rounds to ms", 1, 30000, 1001, 33 * time.Millisecond},
		{"ntsc one minute", 1800, 30000, 1001, 60060 * time.Millisecond},
		{"invalid rate", 10, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameTime(tt.frame, tt.num, tt.den); got != tt.want {
				t.Errorf("FrameTime(%d, %d, %d) = %v, want %v", tt.frame, tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in  string
		num uint32
		den uint32
		ok  bool
	}{
		{"30/1", 30, 1, true},
		{"30000/1001", 30000, 1001, true},
		{"25", 25, 1, true},
		{"0/0", 0, 0, false},
		{"", 0, 0, false},
		{"abc", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			num, den, ok := ParseFrameRate(tt.in)
			if ok != tt.ok || num != tt.num || den != tt.den {
				t.Errorf("ParseFrameRate(%q) = %d/%d %v, want %d/%d %v", tt.in, num, den, ok, tt.num, tt.den, tt.ok)
			}
		})
	}
}
