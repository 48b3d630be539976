package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/five82/shotcut/internal/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFindVideoFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.MKV", "a.mp4", "notes.txt", ".hidden.mp4", "C.mpg"} {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp4"), 0o755))

	result, err := FindVideoFiles(dir, zerolog.Nop())
	require.NoError(t, err)

	var names []string
	for _, f := range result.Files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.mp4", "b.MKV", "C.mpg"}, names)
	assert.Equal(t, 1, result.SkippedCount)
}

func TestFindVideoFilesErrors(t *testing.T) {
	empty := t.TempDir()
	touch(t, filepath.Join(empty, "readme.md"))

	file := filepath.Join(t.TempDir(), "clip.mp4")
	touch(t, file)

	tests := []struct {
		name string
		dir  string
		kind serrors.ErrorKind
	}{
		{"missing directory", filepath.Join(empty, "nope"), serrors.KindIO},
		{"not a directory", file, serrors.KindIO},
		{"no videos", empty, serrors.KindNoFilesFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindVideoFiles(tt.dir, zerolog.Nop())
			require.Error(t, err)
			assert.True(t, serrors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestOutputDirsFor(t *testing.T) {
	tests := []struct {
		name   string
		videos []string
		want   []string
	}{
		{
			name:   "distinct stems",
			videos: []string{"/videos/holiday.mp4", "/videos/party.mkv"},
			want:   []string{"holiday", "party"},
		},
		{
			name:   "shared stem",
			videos: []string{"/videos/a.mkv", "/videos/a.mp4", "/videos/b.mp4"},
			want:   []string{"a_mkv", "a_mp4", "b"},
		},
		{
			name:   "stem differs only in case",
			videos: []string{"/videos/A.mp4", "/videos/a.mp4"},
			want:   []string{"A_mp4", "a_mp4_2"},
		},
		{
			name:   "suffixed name taken by another stem",
			videos: []string{"/videos/a.mp4", "/videos/a.mkv", "/videos/a_mkv.avi"},
			want:   []string{"a_mp4", "a_mkv", "a_mkv_2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join("out", w))
			}
			assert.Equal(t, want, OutputDirsFor("out", tt.videos))
		})
	}
}
