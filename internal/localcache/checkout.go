package localcache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/dvclog"
	"github.com/mribeirodantas/dvc/internal/link"
	"github.com/mribeirodantas/dvc/internal/state"
)

// unpackedStateKey is the state-index path key recording which
// directory checksum a given unpacked tree was last built from, so
// Checkout can tell a stale unpacked directory from a current one
// without re-walking and re-hashing it on every call.
func unpackedStateKey(unpackedPath string) string {
	return unpackedPath + "#source"
}

// Checkout materializes checksum at path via the configured link
// strategies (spec §4.5). For a directory checksum, it first ensures
// the unpacked sibling tree is current, rebuilding it only when stale,
// then links each manifest entry out of the unpacked tree into path.
func (c *Cache) Checkout(path string, ch checksum.Checksum) error {
	if ch.IsDir() {
		return c.checkoutDirectory(path, ch)
	}
	return c.checkoutFile(path, ch)
}

func (c *Cache) checkoutFile(path string, ch checksum.Checksum) error {
	src, err := c.Layout.ToPath(ch)
	if err != nil {
		return err
	}
	if err := c.Materializer.Link(src, path); err != nil {
		return err
	}
	if c.Protected {
		if err := link.Protect(path); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) checkoutDirectory(path string, ch checksum.Checksum) error {
	unpacked, err := c.Layout.UnpackedPath(ch)
	if err != nil {
		return err
	}
	if err := c.ensureUnpacked(ch, unpacked); err != nil {
		return err
	}

	manifestPath, err := c.Layout.ToPath(ch)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("localcache: read manifest %s: %w", manifestPath, err)
	}
	manifest, err := checksum.ParseManifest(data)
	if err != nil {
		return err
	}

	for _, entry := range manifest {
		dst := filepath.Join(path, filepath.FromSlash(entry.RelPath))
		srcInUnpacked := filepath.Join(unpacked, filepath.FromSlash(entry.RelPath))
		if err := os.MkdirAll(filepath.Dir(dst), c.Materializer.Modes.Dir); err != nil {
			return err
		}
		if err := c.Materializer.Link(srcInUnpacked, dst); err != nil {
			return err
		}
		if c.Protected {
			if err := link.Protect(dst); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureUnpacked rebuilds the unpacked directory iff it's missing or
// was built from a different directory checksum than ch (spec §4.5's
// "rebuild iff C4 reports drift").
func (c *Cache) ensureUnpacked(ch checksum.Checksum, unpacked string) error {
	info := state.Fingerprint{} // unpacked dirs are keyed by source checksum, not fs metadata
	if got, ok := c.State.Get(unpackedStateKey(unpacked), info); ok && got == ch {
		if _, err := os.Stat(unpacked); err == nil {
			return nil
		}
	}

	dvclog.Debugf(unpacked, "rebuilding unpacked directory for %s", ch)
	if err := os.RemoveAll(unpacked); err != nil {
		return fmt.Errorf("localcache: remove stale unpacked dir: %w", err)
	}

	manifestPath, err := c.Layout.ToPath(ch)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("localcache: read manifest %s: %w", manifestPath, err)
	}
	manifest, err := checksum.ParseManifest(data)
	if err != nil {
		return err
	}

	for _, entry := range manifest {
		srcCache, err := c.Layout.ToPath(checksum.Checksum(entry.MD5))
		if err != nil {
			return err
		}
		dst := filepath.Join(unpacked, filepath.FromSlash(entry.RelPath))
		if err := os.MkdirAll(filepath.Dir(dst), c.Materializer.Modes.Dir); err != nil {
			return err
		}
		if err := c.Materializer.Link(srcCache, dst); err != nil {
			return err
		}
	}

	return c.State.Save(unpackedStateKey(unpacked), info, ch)
}
