package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := New()

	m.AddFrames(360)
	m.AddFrames(-1)
	m.AddIntervals(3)
	m.ShotSaved()
	m.ShotSaved()
	m.DecodeFailure()
	m.RunFinished(StatusSuccess)
	m.ObserveStage("detect", 2*time.Second)

	assert.Equal(t, 360.0, testutil.ToFloat64(m.FramesScanned))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Boundaries))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShotsExtracted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestNewUsesPrivateRegistry(t *testing.T) {
	a, b := New(), New()
	a.ShotSaved()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ShotsExtracted))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.AddFrames(1)
	m.ShotSaved()
	m.RunFinished(StatusFailed)
	m.ObserveStage("detect", time.Second)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.AddIntervals(4)

	path := filepath.Join(t.TempDir(), "shotcut.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "shotcut_shot_intervals_total 4")
}
