package storage

import (
	"context"
	"image"
	_ "image/jpeg"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inari-web/internal/config"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a/b.jpg", want: "a/b.jpg"},
		{in: "/a/./b.jpg", want: "a/b.jpg"},
		{in: "a/../b.jpg", want: "b.jpg"},
		{in: "../secret", wantErr: true},
		{in: "a/../../secret", wantErr: true},
		{in: "..\\secret", wantErr: true},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
	}

	for _, tt := range tests {
		got, err := CleanKey(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidKey, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2022"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2022", "a.jpg"), []byte("jpeg"), 0644))

	store, err := NewLocalStorage(root)
	require.NoError(t, err)
	ctx := context.Background()

	rc, err := store.Download(ctx, "/2022/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	_, err = store.Download(ctx, "2022/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Download(ctx, "2022")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Download(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = store.GetPresignedURL(ctx, "2022/a.jpg", time.Minute)
	assert.ErrorIs(t, err, ErrPresignUnsupported)
}

func TestPlaceholderStorage(t *testing.T) {
	store := NewPlaceholderStorage()
	ctx := context.Background()

	rc, err := store.Download(ctx, "placeholder/92x40.jpg")
	require.NoError(t, err)
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 92, cfg.Width)
	assert.Equal(t, 40, cfg.Height)

	for _, key := range []string{"placeholder/0x10.jpg", "placeholder/99999x1.jpg", "other/10x10.jpg", "placeholder/10x10.png"} {
		_, err := store.Download(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestNewStorage(t *testing.T) {
	store, err := NewStorage(config.StorageConfig{Provider: "placeholder"})
	require.NoError(t, err)
	assert.IsType(t, &PlaceholderStorage{}, store)

	store, err = NewStorage(config.StorageConfig{Provider: "local", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, store)

	store, err = NewStorage(config.StorageConfig{Provider: "s3", S3: config.S3Config{
		Region:     "eu-west-2",
		BucketName: "thumbs",
		Endpoint:   "http://localhost:9000",
	}})
	require.NoError(t, err)
	assert.IsType(t, &S3Storage{}, store)

	_, err = NewStorage(config.StorageConfig{Provider: "s3"})
	assert.Error(t, err)

	_, err = NewStorage(config.StorageConfig{Provider: "ftp"})
	assert.Error(t, err)
}

func TestS3Storage_PresignedURL(t *testing.T) {
	store, err := NewS3Storage(config.S3Config{
		Region:          "eu-west-2",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "thumbs",
		Endpoint:        "http://localhost:9000",
		ForcePathStyle:  true,
	})
	require.NoError(t, err)

	u, err := store.GetPresignedURL(context.Background(), "/2022/a.jpg", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "http://localhost:9000/thumbs/2022/a.jpg")
	assert.Contains(t, u, "X-Amz-Expires=300")
}
