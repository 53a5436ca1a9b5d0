package checksum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/checksum"
)

// buildTree creates files in the given order and returns the root.
func buildTree(t *testing.T, order []string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range order {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		var content []byte
		switch rel {
		case "a/x":
			content = []byte("1")
		case "b":
			content = []byte("2")
		}
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
	return root
}

func TestHashDirectoryDeterministic(t *testing.T) {
	rootAB := buildTree(t, []string{"a/x", "b"})
	rootBA := buildTree(t, []string{"b", "a/x"})

	sumAB, _, err := checksum.HashDirectory(rootAB)
	require.NoError(t, err)
	sumBA, _, err := checksum.HashDirectory(rootBA)
	require.NoError(t, err)

	require.Equal(t, sumAB, sumBA)
	require.True(t, sumAB.IsDir())
}

func TestHashDirectorySkipsUnpackedAndDvcDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stuff.dir.unpacked"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stuff.dir.unpacked", "real"), []byte("y"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".dvc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".dvc", "state.db"), []byte("z"), 0o644))

	_, manifest, err := checksum.HashDirectory(root)
	require.NoError(t, err)
	require.Len(t, manifest, 1)
	require.Equal(t, "real", manifest[0].RelPath)
}

func TestManifestRoundTrip(t *testing.T) {
	m := checksum.Manifest{
		{MD5: "aaa", RelPath: "b"},
		{MD5: "bbb", RelPath: "a/x"},
	}
	data, err := checksum.SerializeManifest(m)
	require.NoError(t, err)
	require.Equal(t, byte('\n'), data[len(data)-1])

	parsed, err := checksum.ParseManifest(data)
	require.NoError(t, err)
	require.Equal(t, "a/x", parsed[0].RelPath)
	require.Equal(t, "b", parsed[1].RelPath)
}
