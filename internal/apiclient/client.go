// Package apiclient is the typed client of the Inari REST API, with an HTTP
// implementation and an in-memory mock used in development.
package apiclient

import (
	"context"
	"errors"
	"fmt"

	"inari-web/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("api unavailable")
)

// StatusError is returned for unexpected API responses
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// Client reads and edits collections and media
type Client interface {
	ListCollections(ctx context.Context, collectionType models.CollectionType) ([]models.Collection, error)
	CollectionDetail(ctx context.Context, collectionID string) (models.CollectionDetail, error)
	MediaDetail(ctx context.Context, mediaID string) (models.MediaDetail, error)
	DeleteMedia(ctx context.Context, mediaID string) error
	UpdateCaption(ctx context.Context, mediaID, caption string) error
	AddHashtag(ctx context.Context, mediaID, hashtag string) error
}

type tokenKey struct{}

// WithToken attaches the bearer token sent with API calls made with ctx
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached to ctx
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
