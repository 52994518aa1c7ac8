package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docconv/internal/common"
	"github.com/joseph-ayodele/docconv/internal/source"
)

type fakeDownloader struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeDownloader) Download(_ context.Context, w io.WriterAt, bucket, key string) (int64, error) {
	f.bucket, f.key = bucket, key
	if f.err != nil {
		return 0, f.err
	}
	n, err := w.WriteAt([]byte(f.body), 0)
	return int64(n), err
}

func TestParseS3URL(t *testing.T) {
	bucket, key, ok, err := source.ParseS3URL("s3://docs/in/2024/contract.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "docs", bucket)
	assert.Equal(t, "in/2024/contract.pdf", key)

	_, _, ok, err = source.ParseS3URL("/tmp/contract.pdf")
	assert.NoError(t, err)
	assert.False(t, ok)

	for _, bad := range []string{"s3://", "s3://bucket-only", "s3:///key"} {
		_, _, _, err := source.ParseS3URL(bad)
		assert.ErrorIs(t, err, common.ErrInvalidInput, bad)
	}
}

func TestResolve_LocalPassThrough(t *testing.T) {
	r := source.NewResolver(common.S3Config{}, nil, source.WithDownloader(&fakeDownloader{}))

	local, cleanup, err := r.Resolve(context.Background(), "testdata/in.pdf")
	defer cleanup()

	require.NoError(t, err)
	assert.Equal(t, "testdata/in.pdf", local)
}

func TestResolve_S3Download(t *testing.T) {
	d := &fakeDownloader{body: "%PDF-1.7"}
	r := source.NewResolver(common.S3Config{}, nil, source.WithDownloader(d))

	local, cleanup, err := r.Resolve(context.Background(), "s3://docs/a/b.pdf")
	require.NoError(t, err)

	assert.Equal(t, ".pdf", filepath.Ext(local))
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
	assert.Equal(t, "docs", d.bucket)
	assert.Equal(t, "a/b.pdf", d.key)

	cleanup()
	assert.NoFileExists(t, local)
}

func TestResolve_S3DownloadFailure(t *testing.T) {
	r := source.NewResolver(common.S3Config{}, nil, source.WithDownloader(&fakeDownloader{err: errors.New("NoSuchKey")}))

	_, cleanup, err := r.Resolve(context.Background(), "s3://docs/missing.pdf")
	defer cleanup()

	assert.ErrorIs(t, err, common.ErrConversion)
	assert.Contains(t, err.Error(), "NoSuchKey")
}
