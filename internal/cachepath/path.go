// Package cachepath implements the bidirectional mapping between a
// checksum and its on-disk cache path (C2), matching the sharded
// layout in spec §6:
//
//	<root>/<first-two-hex>/<remaining-hex>
package cachepath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mribeirodantas/dvc/internal/checksum"
)

// unpackedSuffix names the materialized sibling of a directory
// manifest object.
const unpackedSuffix = ".unpacked"

// Layout resolves checksums to cache paths rooted at a single cache
// directory.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// ToPath returns the cache path for c: <root>/<c[0:2]>/<c[2:]>.
func (l Layout) ToPath(c checksum.Checksum) (string, error) {
	s := string(c)
	if len(s) < 2 {
		return "", fmt.Errorf("cachepath: checksum %q too short", s)
	}
	// A directory checksum keeps its ".dir" suffix as part of the
	// remaining-hex component so its manifest and the plain file
	// checksum (should a collision ever occur) never alias.
	return filepath.Join(l.Root, s[:2], s[2:]), nil
}

// ShardDir returns the two-character shard directory for c.
func (l Layout) ShardDir(c checksum.Checksum) (string, error) {
	s := string(c)
	if len(s) < 2 {
		return "", fmt.Errorf("cachepath: checksum %q too short", s)
	}
	return filepath.Join(l.Root, s[:2]), nil
}

// UnpackedPath returns the sibling unpacked-directory path for a
// directory checksum c.
func (l Layout) UnpackedPath(c checksum.Checksum) (string, error) {
	p, err := l.ToPath(c)
	if err != nil {
		return "", err
	}
	return p + unpackedSuffix, nil
}

// IsDirectoryChecksum reports whether c names a directory manifest.
func IsDirectoryChecksum(c checksum.Checksum) bool {
	return c.IsDir()
}

// FromPath attempts to recover the checksum a cache path encodes,
// given the layout's root; the inverse of ToPath, with a trailing
// ".unpacked" stripped.
func (l Layout) FromPath(path string) (checksum.Checksum, error) {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil {
		return "", fmt.Errorf("cachepath: %s not under root %s: %w", path, l.Root, err)
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, unpackedSuffix)
	parts := strings.SplitN(rel, "/", 2)
	if len(parts) != 2 || len(parts[0]) != 2 {
		return "", fmt.Errorf("cachepath: %q is not a sharded cache path", rel)
	}
	return checksum.Checksum(parts[0] + parts[1]), nil
}
