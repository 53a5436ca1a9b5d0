package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/metrics"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordUpload(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCounters(reg)

	c.RecordUpload(5, 2)

	assert.Equal(t, float64(3), value(t, c.ObjectsUploaded))
	assert.Equal(t, float64(2), value(t, c.UploadFailures))
}

func TestRecordDownloadOnNilIsNoop(t *testing.T) {
	var c *metrics.Counters
	c.RecordDownload(5, 1) // must not panic
}
