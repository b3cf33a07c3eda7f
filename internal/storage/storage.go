package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"inari-web/internal/config"
)

// StorageProvider represents the type of storage being used
type StorageProvider string

const (
	Local       StorageProvider = "local"
	S3          StorageProvider = "s3"
	SeaweedFS   StorageProvider = "seaweedfs"
	Placeholder StorageProvider = "placeholder"
)

var (
	ErrNotFound = errors.New("thumbnail not found")
	// ErrPresignUnsupported is returned by providers that can only stream
	ErrPresignUnsupported = errors.New("presigned urls not supported")
	ErrInvalidKey         = errors.New("invalid thumbnail key")
)

// Storage defines the read side of a thumbnail store
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// CleanKey normalises a thumbnail key and rejects keys that would escape
// the storage root.
func CleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.ReplaceAll(key, "\\", "/"), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// NewStorage creates the provider selected in cfg
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch StorageProvider(cfg.Provider) {
	case Local:
		return NewLocalStorage(cfg.Path)
	case S3:
		return NewS3Storage(cfg.S3)
	case SeaweedFS:
		return NewSeaweedFSStorage(cfg.SeaweedFS)
	case Placeholder:
		return NewPlaceholderStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
