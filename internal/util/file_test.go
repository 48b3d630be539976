package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsVideoFile(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.MP4")
	text := filepath.Join(dir, "notes.txt")
	for _, p := range []string{video, text} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if !IsVideoFile(video) {
		t.Error("expected upper-case .MP4 to be a video file")
	}
	if IsVideoFile(text) {
		t.Error("expected .txt not to be a video file")
	}
	if IsVideoFile(dir) {
		t.Error("directories are not video files")
	}
}

func TestHasImageExtension(t *testing.T) {
	for name, want := range map[string]bool{
		"shot_001.jpg": true,
		"a.JPEG":       true,
		"b.png":        true,
		"shots.json":   false,
		"noext":        false,
	} {
		if got := HasImageExtension(name); got != want {
			t.Errorf("HasImageExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestGetFileStem(t *testing.T) {
	if got := GetFileStem("/videos/holiday.trip.mkv"); got != "holiday.trip" {
		t.Errorf("GetFileStem = %q", got)
	}
}

func TestIsFilesystemRoot(t *testing.T) {
	if !IsFilesystemRoot("/") {
		t.Error("/ should be a filesystem root")
	}
	if IsFilesystemRoot(t.TempDir()) {
		t.Error("temp dir should not be a filesystem root")
	}
}

func TestFreeSpace(t *testing.T) {
	free, ok := FreeSpace(t.TempDir())
	if ok && free == 0 {
		t.Error("expected non-zero free space when reported")
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/data/out", "/data/out", true},
		{"/data/out", "/data/out/clip.mp4", true},
		{"/data/out", "/data/out/a/b/clip.mp4", true},
		{"/data", "/data/out", true},
		{"/data/out", "/data/clip.mp4", false},
		{"/data/out", "/data/outtakes/clip.mp4", false},
		{"/data/out", "/data/..out/clip.mp4", false},
		{"/data/out/..", "/data/clip.mp4", true},
	}
	for _, tt := range tests {
		if got := Contains(tt.dir, tt.path); got != tt.want {
			t.Errorf("Contains(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}
