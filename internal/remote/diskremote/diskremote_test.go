package diskremote_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mribeirodantas/dvc/internal/checksum"
	"github.com/mribeirodantas/dvc/internal/progress"
	"github.com/mribeirodantas/dvc/internal/remote/diskremote"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	root := t.TempDir()
	r := diskremote.New(root, 0)
	assert.Equal(t, 4, r.Jobs())

	src := filepath.Join(t.TempDir(), "obj.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	const sum = checksum.Checksum("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	const missing = checksum.Checksum("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	require.NoError(t, r.Upload(context.Background(), src, sum, progress.Noop{}))

	present, err := r.Exists(context.Background(), []checksum.Checksum{sum, missing})
	require.NoError(t, err)
	assert.True(t, present[sum])
	assert.False(t, present[missing])

	dst := filepath.Join(t.TempDir(), "restored.bin")
	require.NoError(t, r.Download(context.Background(), sum, dst, progress.Noop{}))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}
