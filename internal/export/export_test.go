package export

import (
	"archive/zip"
	"bytes"
	"context"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shotcut/internal/config"
	serrors "github.com/five82/shotcut/internal/errors"
)

var pageRegex = regexp.MustCompile(`/Type /Page\s`)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 30, B: 60, A: 0xff})
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(90)))
}

func TestDocumentEmpty(t *testing.T) {
	_, err := Document(context.Background(), nil)
	require.ErrorIs(t, err, serrors.ErrEmptyCatalog)
}

func TestDocumentPages(t *testing.T) {
	dir := t.TempDir()
	one := filepath.Join(dir, "shot_001.jpg")
	two := filepath.Join(dir, "shot_002.png")
	writeImage(t, one, 64, 48)
	writeImage(t, two, 48, 64)

	tests := []struct {
		name  string
		paths []string
		pages int
	}{
		{"single image", []string{one}, 1},
		{"two images", []string{one, two}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Document(context.Background(), tt.paths)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
			assert.Len(t, pageRegex.FindAll(doc, -1), tt.pages)
			assert.Contains(t, string(doc), "/MediaBox [0 0 64.00 48.00]")
		})
	}
}

func TestDocumentUndecodableImage(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "shot_001.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not a jpeg"), 0o644))

	_, err := Document(context.Background(), []string{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		assert.Equal(t, zip.Deflate, f.Method)
		names = append(names, f.Name)
	}
	return names
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "shot_001.jpg"), 16, 16)
	writeImage(t, filepath.Join(dir, "shot_002.jpg"), 16, 16)
	writeImage(t, filepath.Join(dir, "nested", "extra.png"), 16, 16)
	writeImage(t, filepath.Join(dir, "nested", "shot_001.jpg"), 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shots.json"), []byte("{}"), 0o644))

	data, err := Archive(context.Background(), dir)
	require.NoError(t, err)

	names := zipNames(t, data)
	sort.Strings(names)
	assert.Equal(t, []string{"extra.png", "shot_001.jpg", "shot_002.jpg"}, names)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "shot_001.jpg" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		img, err := imaging.Decode(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, 16, img.Bounds().Dx(), "top-level file wins the name")
	}
}

func TestArchiveEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	_, err := Archive(context.Background(), dir)
	require.ErrorIs(t, err, serrors.ErrEmptyCatalog)
}

func TestArchiveMissingDir(t *testing.T) {
	_, err := Archive(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, serrors.IsKind(err, serrors.KindIO))
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "run-1.zip"},
		{"shots", "shots/run-1.zip"},
		{"/shots/2026/", "shots/2026/run-1.zip"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, "run-1"); got != tt.want {
			t.Errorf("ObjectKey(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestNewPublisherRequiresBucket(t *testing.T) {
	_, err := NewPublisher(config.StorageConfig{Endpoint: "localhost:9000"})
	require.Error(t, err)
	assert.True(t, serrors.IsKind(err, serrors.KindConfig))
}

// fakeS3 answers just enough of the S3 API for bucket creation and a
// single-part upload.
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	buckets  map[string]bool
	objects  map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	parts := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case len(parts) == 1 && r.Method == http.MethodPut:
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case len(parts) == 2 && r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[parts[0]+"/"+parts[1]] = body
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestPublish(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	p, err := NewPublisher(config.StorageConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Region:    "us-east-1",
		Bucket:    "shots",
		Prefix:    "runs",
	})
	require.NoError(t, err)

	key, err := p.Publish(context.Background(), "run-1", []byte("PK archive"))
	require.NoError(t, err)
	assert.Equal(t, "runs/run-1.zip", key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.buckets["shots"])
	assert.Equal(t, []byte("PK archive"), fake.objects["shots/runs/run-1.zip"])
	assert.NotEmpty(t, fake.requests)
}
