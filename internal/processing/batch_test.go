package processing

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shotcut"
	"github.com/five82/shotcut/internal/detect"
	serrors "github.com/five82/shotcut/internal/errors"
	"github.com/five82/shotcut/internal/frames"
	"github.com/five82/shotcut/internal/reporter"
	"github.com/five82/shotcut/internal/shots"
)

// fakeRunner clears the output dir and writes n 8x8 shots per video, or
// fails for listed videos.
type fakeRunner struct {
	shots int
	fail  map[string]error
	dirs  []string
}

func (f *fakeRunner) RunTo(ctx context.Context, videoPath, outputDir string) (*shotcut.Run, error) {
	f.dirs = append(f.dirs, outputDir)
	if err, ok := f.fail[filepath.Base(videoPath)]; ok {
		return nil, err
	}
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	var records []shots.Record
	var intervals []detect.Interval
	for i := 1; i <= f.shots; i++ {
		path := filepath.Join(outputDir, fmt.Sprintf("shot_%03d.jpg", i))
		if err := imaging.Save(imaging.New(8, 8, image.White.C), path); err != nil {
			return nil, err
		}
		records = append(records, shots.Record{ID: i, ImagePath: path, Timecode: fmt.Sprintf("00:00:%02d.000", i)})
		intervals = append(intervals, detect.Interval{Start: i * 30, End: i*30 + 30})
	}

	return &shotcut.Run{
		ID:        "run-" + filepath.Base(videoPath),
		VideoPath: videoPath,
		OutputDir: outputDir,
		Video:     frames.Info{Width: 8, Height: 8},
		Intervals: intervals,
		Catalog:   shots.NewCatalog(records),
	}, nil
}

type recordingReporter struct {
	reporter.NullReporter
	batchStarted bool
	fileProgress []int
	errors       []reporter.ReporterError
	validations  []reporter.ValidationSummary
	completed    []string
	batch        *reporter.BatchSummary
}

func (r *recordingReporter) BatchStarted(reporter.BatchStartInfo) { r.batchStarted = true }
func (r *recordingReporter) FileProgress(c reporter.FileProgressContext) {
	r.fileProgress = append(r.fileProgress, c.CurrentFile)
}
func (r *recordingReporter) Error(e reporter.ReporterError) { r.errors = append(r.errors, e) }
func (r *recordingReporter) ValidationComplete(s reporter.ValidationSummary) {
	r.validations = append(r.validations, s)
}
func (r *recordingReporter) OperationComplete(m string)           { r.completed = append(r.completed, m) }
func (r *recordingReporter) BatchComplete(s reporter.BatchSummary) { r.batch = &s }

func TestProcessSingleFile(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{shots: 3}
	rep := &recordingReporter{}

	outcomes, err := ProcessVideos(context.Background(), runner, []string{"/videos/a.mp4"}, out, Options{}, rep)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, []string{out}, runner.dirs)
	assert.False(t, rep.batchStarted)
	assert.Nil(t, rep.batch)
	assert.Equal(t, []string{"Extracted 3 shots from a.mp4"}, rep.completed)
}

func TestProcessBatchSameStemKeepsBothOutputs(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{shots: 2}
	rep := &recordingReporter{}
	files := []string{"/videos/a.mp4", "/videos/a.mkv"}

	outcomes, err := ProcessVideos(context.Background(), runner, files, out, Options{Verify: true}, rep)
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, []string{filepath.Join(out, "a_mp4"), filepath.Join(out, "a_mkv")}, runner.dirs)
	for i, o := range outcomes {
		require.NoError(t, o.Err)
		assert.True(t, o.ValidationPassed, files[i])
		assert.FileExists(t, filepath.Join(runner.dirs[i], "shot_001.jpg"))
		assert.FileExists(t, filepath.Join(runner.dirs[i], "shot_002.jpg"))
	}
}

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	out := t.TempDir()
	runner := &fakeRunner{
		shots: 2,
		fail:  map[string]error{"b.mkv": serrors.NewUnreadableMediaError("/videos/b.mkv", "no decodable video stream", nil)},
	}
	rep := &recordingReporter{}
	files := []string{"/videos/a.mp4", "/videos/b.mkv", "/videos/c.mov"}

	outcomes, err := ProcessVideos(context.Background(), runner, files, out, Options{}, rep)
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.ErrorIs(t, outcomes[1].Err, shotcut.ErrUnreadableMedia)
	assert.Equal(t, []string{
		filepath.Join(out, "a"),
		filepath.Join(out, "b"),
		filepath.Join(out, "c"),
	}, runner.dirs)

	assert.True(t, rep.batchStarted)
	assert.Equal(t, []int{1, 2, 3}, rep.fileProgress)
	require.Len(t, rep.errors, 1)
	assert.Equal(t, "Unreadable Video", rep.errors[0].Title)

	require.NotNil(t, rep.batch)
	assert.Equal(t, 2, rep.batch.SuccessfulCount)
	assert.Equal(t, 3, rep.batch.TotalFiles)
	assert.Equal(t, 4, rep.batch.TotalShots)
	assert.NotEmpty(t, rep.batch.FileResults[1].Error)
}

func TestProcessStopsOnCancellation(t *testing.T) {
	runner := &fakeRunner{
		shots: 1,
		fail:  map[string]error{"a.mp4": serrors.NewCancelledError(context.Canceled)},
	}
	rep := &recordingReporter{}

	outcomes, err := ProcessVideos(context.Background(), runner, []string{"/v/a.mp4", "/v/b.mp4"}, t.TempDir(), Options{}, rep)
	require.Error(t, err)
	assert.True(t, serrors.IsCancelled(err))
	assert.Len(t, outcomes, 1)
	assert.Empty(t, rep.errors)
	assert.Nil(t, rep.batch)
}

func TestProcessVerifiesAndRunsHook(t *testing.T) {
	runner := &fakeRunner{shots: 2}
	rep := &recordingReporter{}

	var exported []string
	opts := Options{
		Verify: true,
		AfterRun: func(ctx context.Context, run *shotcut.Run) error {
			exported = append(exported, run.ID)
			if filepath.Base(run.VideoPath) == "b.mp4" {
				return errors.New("bucket unavailable")
			}
			return nil
		},
	}

	outcomes, err := ProcessVideos(context.Background(), runner, []string{"/v/a.mp4", "/v/b.mp4"}, t.TempDir(), opts, rep)
	require.NoError(t, err)

	assert.Equal(t, []string{"run-a.mp4", "run-b.mp4"}, exported)
	require.Len(t, rep.validations, 2)
	for _, v := range rep.validations {
		assert.True(t, v.Passed, v.Steps)
	}
	assert.True(t, outcomes[0].ValidationPassed)
	assert.Error(t, outcomes[1].Err)

	require.Len(t, rep.errors, 1)
	assert.Equal(t, "Export Error", rep.errors[0].Title)
	require.NotNil(t, rep.batch)
	assert.Equal(t, 1, rep.batch.SuccessfulCount)
	assert.Equal(t, 1, rep.batch.ValidationPassedCount)
}
