package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/linxGnu/goseaweedfs"

	"inari-web/internal/config"
)

// SeaweedFSStorage reads thumbnails through a SeaweedFS filer
type SeaweedFSStorage struct {
	client *goseaweedfs.Filer
}

// NewSeaweedFSStorage creates a new SeaweedFS storage instance
func NewSeaweedFSStorage(cfg config.SeaweedFSConfig) (*SeaweedFSStorage, error) {
	client, err := goseaweedfs.NewFiler(cfg.FilerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SeaweedFS client: %w", err)
	}
	return &SeaweedFSStorage{client: client}, nil
}

// Download reads the whole object; the filer client does not stream
func (s *SeaweedFSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	data, status, err := s.client.Get("/"+key, url.Values{}, nil)
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download file from SeaweedFS: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GetPresignedURL is unsupported: the filer is not assumed to be reachable
// from browsers.
func (s *SeaweedFSStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "", ErrPresignUnsupported
}
