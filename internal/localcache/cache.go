// Package localcache implements the local cache (C5): the public
// contract spec §4.5 lists (get_checksum, changed, save, checkout,
// exists, changed_cache), composed from the checksum engine (C1), path
// layout (C2), materializer (C3), and state index (C4).
package localcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mribeirodantas/dvc/internal/cachepath"
	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/dvcerr"
	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/link"
	"github.com/mribeirodantas/dvc/internal/state"
)

// Cache is the local content-addressed cache.
type Cache struct {
	Layout       cachepath.Layout
	State        *state.Index
	Materializer *link.Materializer
	// Protected gates whether Checkout chmods the materialized
	// working-tree path to 0o444 afterwards (spec §6's
	// cache.protected key).
	Protected bool
	// RecomputeOnChangedCache makes ChangedCache re-hash cache
	// content instead of trusting a stat (spec §9's open question;
	// default is stat-only for speed).
	RecomputeOnChangedCache bool
}

// New builds a Cache rooted at root, opening its state index at
// <root>/.dvc/state.db.
func New(root string, materializer *link.Materializer, protected bool) (*Cache, error) {
	idx, err := state.Open(filepath.Join(root, ".dvc", "state.db"))
	if err != nil {
		return nil, fmt.Errorf("localcache: open state index: %w", err)
	}
	return &Cache{
		Layout:       cachepath.New(root),
		State:        idx,
		Materializer: materializer,
		Protected:    protected,
	}, nil
}

// GetChecksum returns path's checksum, consulting the state index
// first; on a miss it hashes the file and saves the result (spec
// §4.5).
func (c *Cache) GetChecksum(path string) (checksum.Checksum, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("localcache: stat %s: %w", path, err)
	}
	if info.IsDir() {
		sum, _, err := c.hashDirectory(path)
		return sum, err
	}
	return c.getFileChecksum(path, info)
}

func (c *Cache) getFileChecksum(path string, info os.FileInfo) (checksum.Checksum, error) {
	fp := state.FingerprintOf(info)
	if sum, ok := c.State.Get(path, fp); ok {
		return sum, nil
	}
	sum, err := checksum.HashFile(path)
	if err != nil {
		return "", err
	}
	if err := c.State.Save(path, fp, sum); err != nil {
		dvclog.Warnf(path, "could not persist state index entry: %v", err)
	}
	return sum, nil
}

// hashDirectory computes a directory checksum, hashing each child
// file through getFileChecksum so the state index caches per-file
// hashes even for large trees.
func (c *Cache) hashDirectory(root string) (checksum.Checksum, checksum.Manifest, error) {
	var manifest checksum.Manifest
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".dvc" || isUnpackedDirName(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 || !info.Mode().IsRegular() {
			return nil
		}
		sum, err := c.getFileChecksum(path, info)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		manifest = append(manifest, checksum.Entry{MD5: string(sum), RelPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("localcache: hash directory %s: %w", root, err)
	}
	sort.Slice(manifest, func(i, j int) bool { return manifest[i].RelPath < manifest[j].RelPath })
	serialized, err := checksum.SerializeManifest(manifest)
	if err != nil {
		return "", nil, err
	}
	return checksum.WithDirSuffix(checksum.HashBytes(serialized)), manifest, nil
}

func isUnpackedDirName(name string) bool {
	const suffix = ".dir.unpacked"
	return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
}

// Changed reports whether path is missing or its checksum no longer
// equals c (spec §4.5).
func (c *Cache) Changed(path string, want checksum.Checksum) bool {
	if _, err := os.Stat(path); err != nil {
		return true
	}
	got, err := c.GetChecksum(path)
	if err != nil {
		return true
	}
	return got != want
}

// Exists reports whether c's cache object is present on disk. It does
// not verify content (spec §4.5).
func (c *Cache) Exists(ch checksum.Checksum) bool {
	p, err := c.Layout.ToPath(ch)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// ChangedCache stats c's cache object and, if RecomputeOnChangedCache
// is set, re-hashes its content to detect corruption (spec §4.5,
// §9's open question on stat-vs-hash).
func (c *Cache) ChangedCache(ch checksum.Checksum) (bool, error) {
	p, err := c.Layout.ToPath(ch)
	if err != nil {
		return true, err
	}
	if _, statErr := os.Stat(p); statErr != nil {
		return true, nil
	}
	if !c.RecomputeOnChangedCache || ch.IsDir() {
		return false, nil
	}
	got, err := checksum.HashFile(p)
	if err != nil {
		return true, err
	}
	if got != ch {
		return true, &dvcerr.CorruptionError{Path: p, Expected: string(ch), Actual: string(got)}
	}
	return false, nil
}

// Save recursively moves path into the cache (a file or a directory),
// protecting each file as it lands, and returns its checksum. The only
// state index entries written are those hashing records for the
// original working-tree paths before the move; none is written for the
// cache location.
func (c *Cache) Save(path string) (checksum.Checksum, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("localcache: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return c.saveDirectory(path)
	}
	return c.saveFile(path, info)
}

func (c *Cache) saveFile(path string, info os.FileInfo) (checksum.Checksum, error) {
	sum, err := c.getFileChecksum(path, info)
	if err != nil {
		return "", err
	}
	dst, err := c.Layout.ToPath(sum)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dst); err == nil {
		// Content-addressed: an identical object already present is a
		// no-op (spec §5's "concurrent creators of the same checksum
		// both produce a valid file").
		return sum, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("localcache: mkdir shard dir: %w", err)
	}
	if err := moveIntoCache(path, dst); err != nil {
		return "", fmt.Errorf("localcache: move %s into cache: %w", path, err)
	}
	if err := link.Protect(dst); err != nil {
		return "", err
	}
	return sum, nil
}

func (c *Cache) saveDirectory(root string) (checksum.Checksum, error) {
	sum, manifest, err := c.hashDirectory(root)
	if err != nil {
		return "", err
	}
	for _, entry := range manifest {
		src := filepath.Join(root, filepath.FromSlash(entry.RelPath))
		info, err := os.Stat(src)
		if err != nil {
			return "", err
		}
		if _, err := c.saveFile(src, info); err != nil {
			return "", err
		}
	}
	manifestPath, err := c.Layout.ToPath(sum)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(manifestPath); err == nil {
		return sum, nil
	}
	serialized, err := checksum.SerializeManifest(manifest)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(manifestPath, serialized, 0o644); err != nil {
		return "", fmt.Errorf("localcache: write manifest %s: %w", manifestPath, err)
	}
	if err := link.Protect(manifestPath); err != nil {
		return "", err
	}
	return sum, nil
}

// moveIntoCache relocates src to dst. Rename is attempted first (the
// common case: same filesystem); a cross-device move falls back to
// copy-then-remove.
func moveIntoCache(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// Unprotect makes path safely writable (spec §4.3); a thin pass-
// through to the materializer's mode matrix so callers needn't know
// about link.ModeMatrix directly.
func (c *Cache) Unprotect(path string) error {
	return link.Unprotect(path, c.Materializer.Modes)
}
