// Package transfer implements the transfer engine (C8): bounded-
// parallel push/pull driven by the status reconciler's output, using
// golang.org/x/sync/errgroup the way backend/b2/upload.go and
// backend/raid3/operations.go bound concurrent chunk/object transfers
// in the teacher.
package transfer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/dvcerr"
	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/progress"
	"github.com/mribeirodantas/dvc/internal/remote"
)

// Item is one object a plan moves in a single direction: its
// checksum, its local path (source for an upload, destination for a
// download), and the display names it was reconciled under.
type Item struct {
	Checksum  checksum.Checksum
	LocalPath string
	Names     []string
}

// ReporterFunc returns the Reporter a single item's transfer should
// report progress through; nil is treated as progress.Noop{}.
type ReporterFunc func(Item) progress.Reporter

// OnSuccess is called after an item's transfer completes
// successfully, e.g. to update the state index and rebuild an
// unpacked directory tree (spec §2: "Each completed transfer updates
// C4 and, for directories, rebuilds an 'unpacked' tree via C3").
// A non-nil error from OnSuccess is treated as a transfer failure for
// that item.
type OnSuccess func(ctx context.Context, item Item) error

// Engine drives push/pull/fetch against a RemoteCache.
type Engine struct {
	Remote remote.Cache
	Jobs   int
}

// New returns an Engine with jobs workers, defaulting to the remote's
// own concurrency hint when jobs <= 0 (spec §4.8: "default jobs =
// remote.JOBS").
func New(r remote.Cache, jobs int) *Engine {
	if jobs <= 0 {
		jobs = r.Jobs()
	}
	if jobs <= 0 {
		jobs = 1
	}
	return &Engine{Remote: r, Jobs: jobs}
}

// Upload pushes every item to the remote, returning the number of
// items attempted. A nonzero failure count is reported as
// *dvcerr.UploadError.
func (e *Engine) Upload(ctx context.Context, items []Item, reporterFor ReporterFunc, onSuccess OnSuccess) (int, error) {
	attempted, failures := e.run(ctx, items, func(ctx context.Context, it Item) error {
		return e.Remote.Upload(ctx, it.LocalPath, it.Checksum, reporter(reporterFor, it))
	}, onSuccess)
	if failures > 0 {
		return attempted, &dvcerr.UploadError{Count: int(failures)}
	}
	return attempted, nil
}

// Download pulls every item from the remote, returning the number of
// items attempted. A nonzero failure count is reported as
// *dvcerr.DownloadError.
func (e *Engine) Download(ctx context.Context, items []Item, reporterFor ReporterFunc, onSuccess OnSuccess) (int, error) {
	attempted, failures := e.run(ctx, items, func(ctx context.Context, it Item) error {
		return e.Remote.Download(ctx, it.Checksum, it.LocalPath, reporter(reporterFor, it))
	}, onSuccess)
	if failures > 0 {
		return attempted, &dvcerr.DownloadError{Count: int(failures)}
	}
	return attempted, nil
}

func reporter(f ReporterFunc, it Item) progress.Reporter {
	if f == nil {
		return progress.Noop{}
	}
	r := f(it)
	if r == nil {
		return progress.Noop{}
	}
	return r
}

// run spawns up to e.Jobs worker tasks sharing one work queue (spec
// §4.8 step 1). Each task never re-raises mid-batch: a transient
// failure is counted and logged, never returned up through the
// errgroup, so sibling tasks are unaffected. Only a fatal fault (spec
// §5, §7) is returned, which cancels the shared context; the
// submission loop then stops handing out new items, but tasks already
// running continue to completion to preserve their atomic
// rename-into-place contract.
func (e *Engine) run(ctx context.Context, items []Item, work func(context.Context, Item) error, onSuccess OnSuccess) (attempted int, failures int64) {
	if len(items) == 0 {
		return 0, 0
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.Jobs)

	for _, it := range items {
		if gCtx.Err() != nil {
			break
		}
		it := it
		attempted++
		g.Go(func() error {
			// ctx, not gCtx: a sibling's fatal fault must not abort this
			// transfer once it has started.
			err := work(ctx, it)
			if err == nil && onSuccess != nil {
				err = onSuccess(ctx, it)
			}
			if err != nil {
				atomic.AddInt64(&failures, 1)
				dvclog.Warnf(it.Checksum, "transfer failed: %v", err)
				if dvcerr.IsFatal(err) {
					return err
				}
				return nil
			}
			return nil
		})
	}
	_ = g.Wait()
	return attempted, failures
}
