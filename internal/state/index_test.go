package state_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/state"
)

func TestGetMissOnNoEntry(t *testing.T) {
	dir := t.TempDir()
	idx, err := state.Open(filepath.Join(dir, "a", "state.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	_, ok := idx.Get("/some/path", state.Fingerprint{})
	assert.False(t, ok)
}

func TestSaveThenGetHit(t *testing.T) {
	dir := t.TempDir()
	idx, err := state.Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	fp := state.Fingerprint{Inode: 42, Mtime: time.Unix(1000, 0), Size: 6}
	require.NoError(t, idx.Save("/work/foo", fp, checksum.Checksum("b1946ac92492d2347c6235b4d2611184")))

	got, ok := idx.Get("/work/foo", fp)
	require.True(t, ok)
	assert.Equal(t, checksum.Checksum("b1946ac92492d2347c6235b4d2611184"), got)
}

func TestGetMissOnFingerprintDrift(t *testing.T) {
	dir := t.TempDir()
	idx, err := state.Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	fp := state.Fingerprint{Inode: 1, Mtime: time.Unix(1000, 0), Size: 6}
	require.NoError(t, idx.Save("/work/foo", fp, checksum.Checksum("abc")))

	drifted := fp
	drifted.Size = 7
	_, ok := idx.Get("/work/foo", drifted)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	dir := t.TempDir()
	idx, err := state.Open(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	fp := state.Fingerprint{Inode: 1, Size: 1}
	require.NoError(t, idx.Save("/work/foo", fp, checksum.Checksum("abc")))
	require.NoError(t, idx.Invalidate("/work/foo"))

	_, ok := idx.Get("/work/foo", fp)
	assert.False(t, ok)
}

func TestFingerprintOfFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(p, []byte("hello\n"), 0o644))
	info, err := os.Stat(p)
	require.NoError(t, err)
	fp := state.FingerprintOf(info)
	assert.Equal(t, int64(6), fp.Size)
}
