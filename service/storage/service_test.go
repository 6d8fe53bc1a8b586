package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

func TestFileName(t *testing.T) {
	testCases := []struct {
		URL        string
		expectName string
		expectExt  string
	}{
		{URL: "https://cdn.example.com/a/photo.png", expectName: "photo", expectExt: "png"},
		{URL: "https://cdn.example.com/a/archive.tar.gz", expectName: "archive", expectExt: "gz"},
		{URL: "mem://localhost/in/report.pdf?sig=1", expectName: "report", expectExt: "pdf"},
	}
	for _, tc := range testCases {
		t.Run(tc.URL, func(t *testing.T) {
			name, ext := FileName(tc.URL)
			assert.Equal(t, tc.expectName, name)
			assert.Equal(t, tc.expectExt, ext)
		})
	}
}

func TestService_Download(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/src/image.png", file.DefaultFileOsMode, bytes.NewReader([]byte("0123456789"))))

	testCases := []struct {
		name      string
		limit     int64
		URL       string
		expectErr bool
	}{
		{name: "within limit", URL: "mem://localhost/src/image.png"},
		{name: "exactly at limit", limit: 10, URL: "mem://localhost/src/image.png"},
		{name: "too large", limit: 5, URL: "mem://localhost/src/image.png", expectErr: true},
		{name: "one byte over", limit: 9, URL: "mem://localhost/src/image.png", expectErr: true},
		{name: "missing", URL: "mem://localhost/src/missing.png", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := New(Config{MaxContentLength: tc.limit})
			dest, err := srv.Download(ctx, tc.URL, "mem://localhost/dest")
			if tc.expectErr {
				assert.Error(t, err)
				if tc.limit > 0 {
					assert.ErrorIs(t, err, ErrTooLarge)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mem://localhost/dest/image.png", dest)
			data, err := fs.DownloadWithURL(ctx, dest)
			require.NoError(t, err)
			assert.Equal(t, "0123456789", string(data))
		})
	}
}

func TestService_UploadFetch(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/local/out.txt", file.DefaultFileOsMode, bytes.NewReader([]byte("result"))))

	srv := New(Config{BucketURL: "mem://localhost/bucket", BaseURL: "https://cdn.example.com/"})
	public, err := srv.Upload(ctx, "mem://localhost/local/out.txt", "/results/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/results/out.txt", public)

	data, err := fs.DownloadWithURL(ctx, "mem://localhost/bucket/results/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "result", string(data))

	require.NoError(t, srv.Fetch(ctx, "results/out.txt", "mem://localhost/local/copy.txt"))
	data, err = fs.DownloadWithURL(ctx, "mem://localhost/local/copy.txt")
	require.NoError(t, err)
	assert.Equal(t, "result", string(data))

	_, err = New(Config{}).Upload(ctx, "mem://localhost/local/out.txt", "k")
	assert.Error(t, err)
}
