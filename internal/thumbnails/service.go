package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"go.uber.org/zap"

	"inari-web/internal/storage"
)

// Result is either a redirect to the store or a body to stream
type Result struct {
	RedirectURL string
	Body        io.ReadCloser
	ContentType string
}

// Service resolves thumbnail keys against a storage provider
type Service struct {
	store  storage.Storage
	urlTTL time.Duration
	logger *zap.Logger
}

func NewService(store storage.Storage, urlTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, urlTTL: urlTTL, logger: logger}
}

// Fetch returns the thumbnail for key. Untransformed requests prefer a
// presigned redirect when the provider supports one.
func (s *Service) Fetch(ctx context.Context, key string, opts Options) (Result, error) {
	key, err := storage.CleanKey(key)
	if err != nil {
		return Result{}, err
	}

	if opts.IsEmpty() {
		u, err := s.store.GetPresignedURL(ctx, key, s.urlTTL)
		switch {
		case err == nil:
			return Result{RedirectURL: u}, nil
		case !errors.Is(err, storage.ErrPresignUnsupported):
			s.logger.Warn("presign failed, streaming instead", zap.String("key", key), zap.Error(err))
		}
	}

	body, err := s.store.Download(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if opts.IsEmpty() {
		return Result{Body: body, ContentType: contentType(key)}, nil
	}

	defer body.Close()
	data, ct, err := Transform(body, opts)
	if err != nil {
		return Result{}, fmt.Errorf("transform %s: %w", key, err)
	}
	return Result{Body: io.NopCloser(bytes.NewReader(data)), ContentType: ct}, nil
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
