package checksum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/checksum"
)

func TestHashFileKnownVector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	sum, err := checksum.HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, checksum.Checksum("b1946ac92492d2347c6235b4d2611184"), sum)
}

func TestHashFileEmptyFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	sumA, err := checksum.HashFile(a)
	require.NoError(t, err)
	sumB, err := checksum.HashFile(b)
	require.NoError(t, err)

	assert.Equal(t, checksum.Checksum("d41d8cd98f00b204e9800998ecf8427e"), sumA)
	assert.Equal(t, sumA, sumB)
}

func TestIsDirSuffix(t *testing.T) {
	c := checksum.WithDirSuffix(checksum.Checksum("abc"))
	assert.True(t, c.IsDir())
	assert.Equal(t, checksum.Checksum("abc.dir"), c)
	// idempotent
	assert.Equal(t, c, checksum.WithDirSuffix(c))
}
