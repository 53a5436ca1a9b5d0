package checksum

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// stateDirName is the internal directory the walk must skip; it houses
// the cache root's own bookkeeping (the state index's bolt file lives
// under a sibling directory, never inside a tree being hashed, but a
// defensive skip keeps hash_directory stable if a cache root and a
// working tree ever nest).
const stateDirName = ".dvc"

// Entry is one record of a directory manifest: a file's checksum and
// its forward-slash path relative to the directory root.
type Entry struct {
	MD5     string `json:"md5"`
	RelPath string `json:"relpath"`
}

// Manifest is the canonical, lexicographically-sorted content of a
// directory-checksum cache object.
type Manifest []Entry

// HashDirectory walks root, hashing every regular file, and returns the
// directory checksum (with the ".dir" suffix) together with the
// manifest whose canonical serialization produced it.
//
// The result is deterministic: identical (relpath, content) pairs
// yield an identical checksum regardless of walk order or host
// platform, because entries are sorted before serialization.
func HashDirectory(root string) (Checksum, Manifest, error) {
	var manifest Manifest

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if info.IsDir() {
			if info.Name() == stateDirName || strings.HasSuffix(info.Name(), ".unpacked") {
				return filepath.SkipDir
			}
			return nil
		}
		// Symbolic links are skipped rather than followed, avoiding
		// loops; only regular file content is hashed.
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		sum, hashErr := HashFile(path)
		if hashErr != nil {
			return hashErr
		}
		manifest = append(manifest, Entry{
			MD5:     string(sum),
			RelPath: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("hash directory %s: %w", root, err)
	}

	sort.Slice(manifest, func(i, j int) bool {
		return manifest[i].RelPath < manifest[j].RelPath
	})

	serialized, err := SerializeManifest(manifest)
	if err != nil {
		return "", nil, err
	}
	sum := HashBytes(serialized)
	return WithDirSuffix(sum), manifest, nil
}

// SerializeManifest produces the canonical byte-identical serialization
// of a manifest: a JSON array of {"md5", "relpath"} objects, sorted by
// relpath here (on a copy, whatever the input order), followed by a single trailing
// newline. This is the exact byte sequence that gets hashed to produce
// a ".dir" checksum, so any change here changes every directory
// checksum.
func SerializeManifest(m Manifest) ([]byte, error) {
	sorted := make(Manifest, len(m))
	copy(sorted, m)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RelPath < sorted[j].RelPath
	})
	body, err := json.Marshal(sorted)
	if err != nil {
		return nil, fmt.Errorf("serialize manifest: %w", err)
	}
	return append(body, '\n'), nil
}

// ParseManifest parses the canonical serialization back into a
// Manifest, e.g. after downloading a directory's manifest object.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
