package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mribeirodantas/dvc/internal/dvcerr"
	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/metrics"
)

// counters is the one set of transfer counters every subcommand feeds,
// registered against the default registry so a single process exposes
// one consistent /metrics surface regardless of which subcommand ran.
var counters = metrics.NewCounters(prometheus.DefaultRegisterer)

// startMetricsServer exposes counters over HTTP at addr, the same
// optional --metrics-addr pattern _examples/vjache-cie/cmd/cie/index.go
// uses: a background goroutine serving promhttp.Handler(), left off
// entirely when addr is empty.
func startMetricsServer(addr string) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		dvclog.Infof("metrics", "serving at %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			dvclog.Warnf("metrics", "http server stopped: %v", err)
		}
	}()
}

// recordUploadResult feeds one push upload batch's outcome into
// counters, recovering the failure count from the *dvcerr.UploadError
// the engine returns rather than widening transfer.Engine's signature.
func recordUploadResult(attempted int, err error) {
	var uploadErr *dvcerr.UploadError
	failures := 0
	if errors.As(err, &uploadErr) {
		failures = uploadErr.Count
	}
	counters.RecordUpload(attempted, failures)
}

// recordDownloadResult is recordUploadResult's download-side mirror.
func recordDownloadResult(attempted int, err error) {
	var downloadErr *dvcerr.DownloadError
	failures := 0
	if errors.As(err, &downloadErr) {
		failures = downloadErr.Count
	}
	counters.RecordDownload(attempted, failures)
}
