package dvcerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mribeirodantas/dvc/internal/dvcerr"
)

func TestUploadErrorMessage(t *testing.T) {
	err := &dvcerr.UploadError{Count: 2}
	assert.Equal(t, "2 upload(s) failed", err.Error())
}

func TestDownloadErrorMessage(t *testing.T) {
	err := &dvcerr.DownloadError{Count: 5}
	assert.Equal(t, "5 download(s) failed", err.Error())
}

func TestLinkTypeErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &dvcerr.LinkTypeError{Path: "/x", Strategies: []string{"reflink", "copy"}, Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, dvcerr.IsFatal(&dvcerr.ConfigError{Msg: "circular dependency"}))
	assert.False(t, dvcerr.IsFatal(&dvcerr.UploadError{Count: 1}))
}
