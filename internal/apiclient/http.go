package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"inari-web/internal/metrics"
	"inari-web/internal/models"
)

// HTTPClient talks to the REST API over HTTP
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collector
	logger  *zap.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.client = c }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(h *HTTPClient) { h.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *HTTPClient) { h.logger = l }
}

// BreakerSettings tunes when the circuit breaker trips
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings trips after 5 requests with 60% failures
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func WithBreakerSettings(s BreakerSettings) Option {
	return func(h *HTTPClient) { h.breaker = newBreaker(s, h) }
}

// NewHTTPClient creates a client for the API rooted at baseURL,
// e.g. https://example.com/api
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	h.breaker = newBreaker(DefaultBreakerSettings(), h)

	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newBreaker(s BreakerSettings, h *HTTPClient) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "inari-api",
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			h.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isSuccessful,
	})
}

// isSuccessful counts only transport failures and 5xx responses against
// the breaker.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

func (h *HTTPClient) ListCollections(ctx context.Context, collectionType models.CollectionType) ([]models.Collection, error) {
	path := "/timeline/months"
	if collectionType != "" {
		path += "?collection_type=" + url.QueryEscape(string(collectionType))
	}

	var out []models.Collection
	if err := h.do(ctx, "list collections", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *HTTPClient) CollectionDetail(ctx context.Context, collectionID string) (models.CollectionDetail, error) {
	var out models.CollectionDetail
	err := h.do(ctx, "collection detail", http.MethodGet, "/timeline/month/"+url.PathEscape(collectionID), nil, &out)
	return out, err
}

func (h *HTTPClient) MediaDetail(ctx context.Context, mediaID string) (models.MediaDetail, error) {
	var out models.MediaDetail
	err := h.do(ctx, "media detail", http.MethodGet, "/media/"+url.PathEscape(mediaID), nil, &out)
	return out, err
}

func (h *HTTPClient) DeleteMedia(ctx context.Context, mediaID string) error {
	return h.do(ctx, "delete media", http.MethodDelete, "/media/"+url.PathEscape(mediaID), nil, nil)
}

func (h *HTTPClient) UpdateCaption(ctx context.Context, mediaID, caption string) error {
	return h.do(ctx, "update caption", http.MethodPost, "/media/"+url.PathEscape(mediaID)+"/caption", []byte(caption), nil)
}

func (h *HTTPClient) AddHashtag(ctx context.Context, mediaID, hashtag string) error {
	return h.do(ctx, "add hashtag", http.MethodPost, "/media/"+url.PathEscape(mediaID)+"/hashtag", []byte(hashtag), nil)
}

func (h *HTTPClient) do(ctx context.Context, op, method, path string, body []byte, out interface{}) error {
	start := time.Now()

	_, err := h.breaker.Execute(func() (interface{}, error) {
		return nil, h.send(ctx, op, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	h.observe(op, start, err)
	if err != nil {
		h.logger.Debug("api call failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return err
}

func (h *HTTPClient) send(ctx context.Context, op, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func (h *HTTPClient) observe(op string, start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	h.metrics.APIDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	h.metrics.APICalls.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("status_%d", statusErr.StatusCode)
	default:
		return "error"
	}
}
