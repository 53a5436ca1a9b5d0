package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/config"
	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/link"
	"github.com/mribeirodantas/dvc/internal/localcache"
	"github.com/mribeirodantas/dvc/internal/namedcache"
	"github.com/mribeirodantas/dvc/internal/progress"
	"github.com/mribeirodantas/dvc/internal/remote"
	"github.com/mribeirodantas/dvc/internal/remote/diskremote"
	"github.com/mribeirodantas/dvc/internal/status"
	"github.com/mribeirodantas/dvc/internal/transfer"
)

// session bundles the wiring every subcommand needs: a local cache, a
// remote, and the CLI-level named set the targets resolve to.
type session struct {
	cache  *localcache.Cache
	remote remote.Cache
	named  *namedcache.NamedCache
	// paths maps each named checksum back to the working-tree path it
	// was named from, so pull/checkout knows where to materialize it.
	paths map[checksum.Checksum]string
}

func newSession(f *flags, cacheDir, remoteDir string, targets []string) (*session, error) {
	cfg, err := config.Load(filepath.Join(cacheDir, "..", "config.yaml"))
	if err != nil {
		return nil, err
	}
	strategies, err := cfg.Cache.Strategies()
	if err != nil {
		return nil, err
	}
	m := link.New(strategies, cfg.Cache.Modes())

	c, err := localcache.New(cacheDir, m, cfg.Cache.Protected)
	if err != nil {
		return nil, err
	}

	s := &session{
		cache:  c,
		remote: diskremote.New(remoteDir, f.jobs),
		named:  namedcache.New(),
		paths:  map[checksum.Checksum]string{},
	}

	for _, t := range targets {
		abs, err := filepath.Abs(t)
		if err != nil {
			return nil, err
		}
		sum, err := resolveTarget(c, abs)
		if err != nil {
			return nil, fmt.Errorf("dvc: resolve target %s: %w", t, err)
		}
		s.named.Add(sum, t)
		s.paths[sum] = abs

		if f.recursive && sum.IsDir() {
			manifestPath, err := c.Layout.ToPath(sum)
			if err != nil {
				return nil, err
			}
			data, err := os.ReadFile(manifestPath)
			if os.IsNotExist(err) {
				if dlErr := s.remote.Download(context.Background(), sum, manifestPath, progress.Noop{}); dlErr != nil {
					return nil, dlErr
				}
				data, err = os.ReadFile(manifestPath)
			}
			if err != nil {
				return nil, err
			}
			manifest, err := checksum.ParseManifest(data)
			if err != nil {
				return nil, err
			}
			s.named.ExpandDirectory(sum, manifest)
			for _, entry := range manifest {
				s.paths[checksum.Checksum(entry.MD5)] = filepath.Join(abs, filepath.FromSlash(entry.RelPath))
			}
		}
	}
	return s, nil
}

// resolveTarget recovers a target's checksum: from its .dvc sidecar
// if one exists (the pull case, where the working-tree path may not
// exist yet), otherwise by hashing and caching the path directly (the
// push/status case, where the path is already present locally), and
// finally writing the sidecar so a later command can resolve the same
// target without the path on disk.
func resolveTarget(c *localcache.Cache, path string) (checksum.Checksum, error) {
	if sum, ok, err := config.ReadSidecar(path); err != nil {
		return "", err
	} else if ok {
		return checksum.Checksum(sum), nil
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no sidecar and no local content for %s: %w", path, err)
	}
	sum, err := c.Save(path)
	if err != nil {
		return "", err
	}
	// Save moves path's content into the cache; check out a link back
	// so the working tree keeps a (now protected) copy, the way `dvc
	// add` leaves a cache-backed link in place of the raw file.
	if err := c.Checkout(path, sum); err != nil {
		return "", err
	}
	if err := config.WriteSidecar(path, string(sum)); err != nil {
		dvclog.Warnf(path, "could not write sidecar: %v", err)
	}
	return sum, nil
}

// reconcile computes status records for every named checksum, applying
// spec §4.7's local-superset optimization to skip the remote probe
// when it can.
func (s *session) reconcile(ctx context.Context) ([]status.Record, error) {
	local := status.Presence{}
	for _, c := range s.named.Checksums() {
		local[c] = s.cache.Exists(c)
	}

	var remotePresence status.Presence
	if status.AssumeRemoteFromLocal(s.named, local) {
		remotePresence = local
	} else {
		present, err := s.remote.Exists(ctx, s.named.Checksums())
		if err != nil {
			return nil, fmt.Errorf("dvc: query remote presence: %w", err)
		}
		remotePresence = present
	}

	return status.Reconcile(s.named, local, remotePresence), nil
}

func (s *session) toItems(records []status.Record) []transfer.Item {
	items := make([]transfer.Item, 0, len(records))
	for _, r := range records {
		local, err := s.cache.Layout.ToPath(r.Checksum)
		if err != nil {
			dvclog.Warnf(r.Checksum, "skipping malformed checksum: %v", err)
			continue
		}
		items = append(items, transfer.Item{Checksum: r.Checksum, LocalPath: local, Names: r.Names})
	}
	return items
}

// warnMissing logs spec §7's per-name enumeration for MISSING records
// (SUPPLEMENTED FEATURES note 5), instead of just a count.
func warnMissing(records []status.Record) {
	for _, r := range status.Filter(records, status.Missing) {
		for _, name := range r.Names {
			dvclog.Warnf(r.Checksum, "missing: %s is named but absent from both local and remote caches", name)
		}
	}
}

func progressReporterFor(verbose bool) func(transfer.Item) progress.Reporter {
	return func(it transfer.Item) progress.Reporter {
		if !verbose {
			return progress.Noop{}
		}
		return progress.NewBarReporter(os.Stderr, string(it.Checksum))
	}
}
