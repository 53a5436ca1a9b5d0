package link_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/dvcerr"
	"github.com/mribeirodantas/dvc/internal/link"
)

func TestLinkCopy(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "src")
	to := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(from, []byte("hello\n"), 0o444))

	m := link.New([]link.Strategy{link.Copy}, link.DefaultModes)
	require.NoError(t, m.Link(from, to))

	got, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))

	info, err := os.Stat(to)
	require.NoError(t, err)
	assert.Equal(t, link.DefaultModes.File, info.Mode().Perm())
}

func TestEmptyFileHardlinkExemption(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hardlink semantics differ on windows")
	}
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, nil, 0o444))
	require.NoError(t, os.WriteFile(b, nil, 0o444))

	dstA := filepath.Join(dir, "dstA")
	dstB := filepath.Join(dir, "dstB")
	m := link.New([]link.Strategy{link.Hardlink}, link.DefaultModes)
	require.NoError(t, m.Link(a, dstA))
	require.NoError(t, m.Link(b, dstB))

	stA, err := os.Stat(dstA)
	require.NoError(t, err)
	stB, err := os.Stat(dstB)
	require.NoError(t, err)
	assert.False(t, os.SameFile(stA, stB), "empty files must not share an inode")
}

func TestHardlinkSharesInode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hardlink semantics differ on windows")
	}
	dir := t.TempDir()
	from := filepath.Join(dir, "src")
	to := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(from, []byte("non-empty"), 0o444))

	m := link.New([]link.Strategy{link.Hardlink}, link.DefaultModes)
	require.NoError(t, m.Link(from, to))

	stFrom, err := os.Stat(from)
	require.NoError(t, err)
	stTo, err := os.Stat(to)
	require.NoError(t, err)
	assert.True(t, os.SameFile(stFrom, stTo))
}

func TestLinkFallsThroughToNextStrategy(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "src")
	to := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(from, []byte("data"), 0o444))

	// reflink will fail on most CI filesystems/non-linux platforms and
	// the materializer must fall through to copy.
	m := link.New([]link.Strategy{link.Reflink, link.Copy}, link.DefaultModes)
	require.NoError(t, m.Link(from, to))

	got, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}

func TestLinkTypeErrorWhenAllStrategiesFail(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "does-not-exist")
	to := filepath.Join(dir, "dst")

	m := link.New([]link.Strategy{link.Copy}, link.DefaultModes)
	err := m.Link(from, to)
	require.Error(t, err)
	var linkErr *dvcerr.LinkTypeError
	require.ErrorAs(t, err, &linkErr)
}
