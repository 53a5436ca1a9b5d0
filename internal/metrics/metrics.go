// Package metrics exposes transfer counters via
// github.com/prometheus/client_golang, the way
// _examples/scttfrdmn-objectfs and _examples/vjache-cie wire counters
// over their own storage/sync engines. Nothing in the core depends on
// this package directly; cmd/dvc registers one Counters set at process
// start, feeds it from transfer.Engine's return values after every
// fetch/pull/push, and exposes it over HTTP when --metrics-addr is
// set, the same optional-flag pattern
// _examples/vjache-cie/cmd/cie/index.go uses for its own
// --metrics-addr.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counters bundles the counters a sync run updates.
type Counters struct {
	ObjectsUploaded   prometheus.Counter
	ObjectsDownloaded prometheus.Counter
	UploadFailures    prometheus.Counter
	DownloadFailures  prometheus.Counter
}

// NewCounters constructs and registers a fresh Counters set against
// reg. Passing prometheus.NewRegistry() keeps tests isolated from the
// global default registry.
func NewCounters(reg prometheus.Registerer) *Counters {
	c := &Counters{
		ObjectsUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvc_objects_uploaded_total",
			Help: "Objects successfully uploaded to the remote cache.",
		}),
		ObjectsDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvc_objects_downloaded_total",
			Help: "Objects successfully downloaded from the remote cache.",
		}),
		UploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvc_upload_failures_total",
			Help: "Per-object upload failures across all transfer batches.",
		}),
		DownloadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dvc_download_failures_total",
			Help: "Per-object download failures across all transfer batches.",
		}),
	}
	reg.MustRegister(c.ObjectsUploaded, c.ObjectsDownloaded, c.UploadFailures, c.DownloadFailures)
	return c
}

// RecordUpload updates the upload counters from one batch's outcome:
// attempted items minus failures succeeded.
func (c *Counters) RecordUpload(attempted, failures int) {
	if c == nil {
		return
	}
	c.ObjectsUploaded.Add(float64(attempted - failures))
	c.UploadFailures.Add(float64(failures))
}

// RecordDownload updates the download counters from one batch's
// outcome.
func (c *Counters) RecordDownload(attempted, failures int) {
	if c == nil {
		return
	}
	c.ObjectsDownloaded.Add(float64(attempted - failures))
	c.DownloadFailures.Add(float64(failures))
}
