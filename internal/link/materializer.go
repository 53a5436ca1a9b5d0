// Package link implements the materializer (C3): placing a cached
// object at a working-tree path via one of four strategies, with
// atomic placement, the empty-file hardlink exemption, and the
// protect/unprotect protocol of spec §4.3.
package link

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mribeirodantas/dvc/internal/dvcerr"
)

// ProtectedMode is the fixed mode of every file inside the cache tree
// (spec §3).
const ProtectedMode = os.FileMode(0o444)

// ModeMatrix is the (file, dir) mode pair applied to materialized
// working-tree content, per spec §4.3's "Per-mode matrix".
type ModeMatrix struct {
	File os.FileMode
	Dir  os.FileMode
}

// DefaultModes and SharedModes are the two matrices spec §4.3 and §6
// name (cache.shared selects between them).
var (
	DefaultModes = ModeMatrix{File: 0o644, Dir: 0o755}
	SharedModes  = ModeMatrix{File: 0o664, Dir: 0o775}
)

// Materializer places cache objects at working-tree paths.
type Materializer struct {
	Strategies []Strategy
	Modes      ModeMatrix
}

// New builds a Materializer. An empty strategies list defaults to
// DefaultStrategies.
func New(strategies []Strategy, modes ModeMatrix) *Materializer {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Materializer{Strategies: strategies, Modes: modes}
}

// Link places the content at from onto the working-tree path to,
// trying each configured strategy in order and stopping at the first
// that succeeds. It returns LinkTypeError only if every strategy
// failed.
func (m *Materializer) Link(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), m.Modes.Dir); err != nil {
		return dvcerr.Wrap(err, "mkdir for %s", to)
	}

	var lastErr error
	for _, strat := range m.Strategies {
		err := m.tryStrategy(strat, from, to)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return &dvcerr.LinkTypeError{Path: to, Strategies: stratNames(m.Strategies), Cause: lastErr}
}

func stratNames(s []Strategy) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

// tryStrategy places from at to using one strategy, writing to a
// temporary sibling and renaming into place so any partial state is
// safely removable without corrupting the destination (spec §4.3's
// "Atomic placement").
func (m *Materializer) tryStrategy(strat Strategy, from, to string) error {
	tmp := filepath.Join(filepath.Dir(to), "."+uuid.NewString())
	defer func() { _ = os.Remove(tmp) }()

	switch strat {
	case Reflink:
		if err := m.placeReflink(from, tmp); err != nil {
			return err
		}
	case Hardlink:
		if err := m.placeHardlink(from, tmp); err != nil {
			return err
		}
	case Symlink:
		if err := os.Symlink(from, tmp); err != nil {
			return err
		}
	case Copy:
		if err := m.placeCopy(from, tmp); err != nil {
			return err
		}
	default:
		return &unknownStrategyError{name: string(strat)}
	}

	if err := os.Rename(tmp, to); err != nil {
		return dvcerr.Wrap(err, "rename %s into place", to)
	}
	return nil
}

func (m *Materializer) placeReflink(from, tmp string) error {
	if err := reflink(from, tmp); err != nil {
		return err
	}
	// Reflinked files have an independent inode, so permission must
	// be set explicitly even though the source is 0o444 (spec §4.3
	// "Reflink permission independence").
	return os.Chmod(tmp, m.Modes.File)
}

func (m *Materializer) placeCopy(from, tmp string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, m.Modes.File)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Chmod(tmp, m.Modes.File)
}

// placeHardlink shares the source inode with tmp, except when the
// source is empty: zero-byte files share one digest across the whole
// corpus, and filesystems impose per-inode link caps (65,000 on
// extfs, 1024 on NTFS), so an empty file is always a fresh copy
// instead (spec §4.3 "Empty-file hardlink exemption").
func (m *Materializer) placeHardlink(from, tmp string) error {
	info, err := os.Stat(from)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return m.placeCopy(from, tmp)
	}

	if err := os.Link(from, tmp); err != nil {
		return err
	}
	if !sameInode(from, tmp) {
		_ = os.Remove(tmp)
		return &dvcerr.LinkTypeError{Path: tmp, Strategies: []string{string(Hardlink)}, Cause: errInodeMismatch}
	}
	// Hardlinks share mode with the source; the materializer does not
	// chmod (spec §4.3 "Hardlink permission sharing").
	return nil
}

var errInodeMismatch = errorString("hardlink result does not share inode identity with source")

type errorString string

func (e errorString) Error() string { return string(e) }
