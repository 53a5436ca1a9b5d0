package link_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/link"
)

func TestProtectThenUnprotectThenProtect(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(p, []byte("content"), 0o644))

	require.NoError(t, link.Protect(p))
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, link.ProtectedMode, info.Mode().Perm())

	require.NoError(t, link.Unprotect(p, link.DefaultModes))
	info, err = os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, link.DefaultModes.File, info.Mode().Perm())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, link.Protect(p))
	info, err = os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, link.ProtectedMode, info.Mode().Perm())
}

func TestUnprotectDirectoryRecurses(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "sub", "b")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o444))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o444))

	require.NoError(t, link.Unprotect(dir, link.DefaultModes))

	infoA, err := os.Stat(a)
	require.NoError(t, err)
	assert.Equal(t, link.DefaultModes.File, infoA.Mode().Perm())

	infoB, err := os.Stat(b)
	require.NoError(t, err)
	assert.Equal(t, link.DefaultModes.File, infoB.Mode().Perm())
}
