// Package state implements the state index (C4): a persistent map
// from (absolute path, inode identity, mtime, size) to checksum, used
// to skip rehashing when filesystem metadata hasn't changed.
//
// The backing store is go.etcd.io/bbolt, a single-writer embedded
// key-value file, directly grounded on
// backend/cache/storage_persistent.go's Persistent wrapper: one
// bucket, bolt.DB.Update/View transactions, a package-level
// instance-per-path cache so repeated opens of the same state file
// share one handle. Cross-process coordination uses an advisory file
// lock on the cache root (spec §4.4, §5), via github.com/gofrs/flock
// (see DESIGN.md for why this library: grounded on
// other_examples/manifests/kopia-kopia and moby-moby, both
// content-addressed-storage-adjacent systems in the retrieval pack).
package state

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	bolt "go.etcd.io/bbolt"

	"github.com/mribeirodantas/dvc/internal/checksum"
)

const bucketName = "state"

// Fingerprint is the filesystem metadata tuple a state entry is keyed
// on in addition to the path: inode identity, modification time, and
// size. Whenever any of these drift from the stored record, the entry
// is treated as a miss.
type Fingerprint struct {
	Inode uint64
	Mtime time.Time
	Size  int64
}

type record struct {
	Fingerprint Fingerprint
	Checksum    string
}

// Index is a persistent path -> checksum map.
type Index struct {
	db   *bolt.DB
	lock *flock.Flock
	mu   sync.Mutex
}

var (
	instancesMu sync.Mutex
	instances   = map[string]*Index{}
)

// Open returns the Index backed by dbPath, sharing one *bolt.DB handle
// per path across callers in this process the way GetPersistent does
// in the teacher's cache backend.
func Open(dbPath string) (*Index, error) {
	instancesMu.Lock()
	defer instancesMu.Unlock()

	if idx, ok := instances[dbPath]; ok {
		return idx, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("state: create state dir: %w", err)
	}
	db, err := bolt.Open(dbPath, 0o644, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("state: open %s: %w", dbPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists([]byte(bucketName))
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("state: init bucket: %w", err)
	}

	idx := &Index{
		db:   db,
		lock: flock.New(dbPath + ".lock"),
	}
	instances[dbPath] = idx
	return idx, nil
}

// Close releases the backing bolt.DB handle.
func (idx *Index) Close() error {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	for path, v := range instances {
		if v == idx {
			delete(instances, path)
		}
	}
	return idx.db.Close()
}

// Get returns the stored checksum for path iff fp matches the stored
// fingerprint exactly; otherwise it reports a miss. This never
// touches the filesystem itself — fp is provided by the caller (C5),
// which is the one place that knows how to stat a path.
func (idx *Index) Get(path string, fp Fingerprint) (checksum.Checksum, bool) {
	var rec record
	var found bool
	_ = idx.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		data := b.Get([]byte(path))
		if data == nil {
			return nil
		}
		if err := decodeRecord(data, &rec); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found || rec.Fingerprint != fp {
		return "", false
	}
	return checksum.Checksum(rec.Checksum), true
}

// Save records the current fingerprint -> checksum mapping for path.
// Cross-process writers are serialized through the advisory lock on
// the cache root before the bolt transaction runs (spec §4.4).
func (idx *Index) Save(path string, fp Fingerprint, c checksum.Checksum) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.lock.Lock(); err == nil {
		defer func() { _ = idx.lock.Unlock() }()
	}

	rec := record{Fingerprint: fp, Checksum: string(c)}
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("state: encode record for %s: %w", path, err)
	}
	return idx.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put([]byte(path), data)
	})
}

// Invalidate removes any stored entry for path, e.g. after a write
// that makes the previous checksum stale.
func (idx *Index) Invalidate(path string) error {
	return idx.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Delete([]byte(path))
	})
}

func encodeRecord(r record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, r *record) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(r)
}
