// Package namedcache implements the named cache (spec §3): an
// ephemeral mapping from checksum to a set of human-readable display
// names, defining the universe a status reconciliation run is
// computed over.
package namedcache

import (
	"sort"

	"github.com/mribeirodantas/dvc/internal/checksum"
)

// NamedCache maps checksums to display names.
type NamedCache struct {
	names map[checksum.Checksum]map[string]struct{}
}

// New returns an empty NamedCache.
func New() *NamedCache {
	return &NamedCache{names: map[checksum.Checksum]map[string]struct{}{}}
}

// Add associates name with checksum c, creating the entry if it's new.
func (n *NamedCache) Add(c checksum.Checksum, name string) {
	set, ok := n.names[c]
	if !ok {
		set = map[string]struct{}{}
		n.names[c] = set
	}
	set[name] = struct{}{}
}

// Checksums returns the keys of the named cache in sorted order.
func (n *NamedCache) Checksums() []checksum.Checksum {
	out := make([]checksum.Checksum, 0, len(n.names))
	for c := range n.names {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NamesFor returns the sorted display names for c.
func (n *NamedCache) NamesFor(c checksum.Checksum) []string {
	set, ok := n.names[c]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether c is a member of the named universe.
func (n *NamedCache) Contains(c checksum.Checksum) bool {
	_, ok := n.names[c]
	return ok
}

// Len returns the number of distinct checksums named.
func (n *NamedCache) Len() int {
	return len(n.names)
}

// ExpandDirectory unions every child checksum of a directory manifest
// into the named cache under the same display names as its directory
// checksum, implementing spec §4.7's "Directory expansion": the
// reconciler itself only ever sees flat checksums, so any directory
// checksum must be expanded by the caller before reconciliation, using
// a manifest fetched (downloading it first if locally absent).
func (n *NamedCache) ExpandDirectory(dirChecksum checksum.Checksum, manifest checksum.Manifest) {
	names := n.NamesFor(dirChecksum)
	if len(names) == 0 {
		names = []string{string(dirChecksum)}
	}
	for _, entry := range manifest {
		for _, name := range names {
			n.Add(checksum.Checksum(entry.MD5), name+"/"+entry.RelPath)
		}
	}
}
