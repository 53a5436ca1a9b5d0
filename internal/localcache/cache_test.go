package localcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/link"
	"github.com/mribeirodantas/dvc/internal/localcache"
)

func newTestCache(t *testing.T) (*localcache.Cache, string) {
	t.Helper()
	root := t.TempDir()
	m := link.New([]link.Strategy{link.Copy}, link.DefaultModes)
	c, err := localcache.New(root, m, true)
	require.NoError(t, err)
	return c, root
}

// TestSaveCheckoutRoundTripS1 is the literal S1 scenario: a single file
// saved into the cache and checked out at a new path comes back
// byte-identical and protected.
func TestSaveCheckoutRoundTripS1(t *testing.T) {
	c, root := newTestCache(t)

	src := filepath.Join(root, "work", "greeting.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("hello, dvc"), 0o644))

	sum, err := c.Save(src)
	require.NoError(t, err)
	assert.False(t, sum.IsDir())
	assert.True(t, c.Exists(sum))

	dst := filepath.Join(root, "out", "greeting.txt")
	require.NoError(t, c.Checkout(dst, sum))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello, dvc", string(got))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o444), info.Mode().Perm())

	assert.False(t, c.Changed(dst, sum))
}

func TestSaveIsContentAddressedIdempotent(t *testing.T) {
	c, root := newTestCache(t)

	a := filepath.Join(root, "a.txt")
	b := filepath.Join(root, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same content"), 0o644))

	sumA, err := c.Save(a)
	require.NoError(t, err)
	sumB, err := c.Save(b)
	require.NoError(t, err)

	assert.Equal(t, sumA, sumB)
}

func TestSaveDirectoryRoundTrip(t *testing.T) {
	c, root := newTestCache(t)

	dir := filepath.Join(root, "work", "data")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.txt"), []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "two.txt"), []byte("two"), 0o644))

	sum, err := c.Save(dir)
	require.NoError(t, err)
	assert.True(t, sum.IsDir())
	assert.True(t, c.Exists(sum))

	out := filepath.Join(root, "out", "data")
	require.NoError(t, c.Checkout(out, sum))

	one, err := os.ReadFile(filepath.Join(out, "one.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(one))

	two, err := os.ReadFile(filepath.Join(out, "nested", "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(two))
}

// TestChangedCacheDetectsCorruptionS6 is the literal S6 scenario: a
// cache object's content is corrupted on disk (e.g. a hardlinked
// source was edited in place via an inode-sharing bug elsewhere).
// ChangedCache must report the drift once recomputation is enabled,
// rather than trusting the stat alone.
func TestChangedCacheDetectsCorruptionS6(t *testing.T) {
	c, root := newTestCache(t)
	c.RecomputeOnChangedCache = true

	src := filepath.Join(root, "work", "f.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("original"), 0o644))

	sum, err := c.Save(src)
	require.NoError(t, err)

	changed, err := c.ChangedCache(sum)
	require.NoError(t, err)
	assert.False(t, changed)

	cachePath, err := c.Layout.ToPath(sum)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(cachePath, 0o644))
	require.NoError(t, os.WriteFile(cachePath, []byte("corrupted"), 0o644))

	changed, err = c.ChangedCache(sum)
	assert.True(t, changed)
	assert.Error(t, err)
}

func TestExistsFalseForUnknownChecksum(t *testing.T) {
	c, _ := newTestCache(t)
	assert.False(t, c.Exists("deadbeefdeadbeefdeadbeefdeadbeef"))
}

func TestChangedTrueWhenPathMissing(t *testing.T) {
	c, root := newTestCache(t)
	assert.True(t, c.Changed(filepath.Join(root, "nope.txt"), "anything"))
}
