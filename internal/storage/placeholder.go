package storage

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
)

const maxPlaceholderSide = 4096

var placeholderKey = regexp.MustCompile(`^placeholder/(\d{1,5})x(\d{1,5})\.jpg$`)

// PlaceholderStorage renders solid images for keys shaped
// placeholder/<w>x<h>.jpg so development fixtures render offline.
type PlaceholderStorage struct{}

func NewPlaceholderStorage() *PlaceholderStorage {
	return &PlaceholderStorage{}
}

func (s *PlaceholderStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	width, height, ok := parsePlaceholderKey(key)
	if !ok {
		return nil, ErrNotFound
	}

	img := imaging.New(width, height, placeholderColor(width, height))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return io.NopCloser(&buf), nil
}

func (s *PlaceholderStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "", ErrPresignUnsupported
}

func parsePlaceholderKey(key string) (int, int, bool) {
	match := placeholderKey.FindStringSubmatch(key)
	if match == nil {
		return 0, 0, false
	}
	width, _ := strconv.Atoi(match[1])
	height, _ := strconv.Atoi(match[2])
	if width < 1 || height < 1 || width > maxPlaceholderSide || height > maxPlaceholderSide {
		return 0, 0, false
	}
	return width, height, true
}

// placeholderColor gives each size its own muted shade
func placeholderColor(width, height int) color.NRGBA {
	seed := uint8((width*7 + height*13) % 64)
	return color.NRGBA{R: 96 + seed, G: 112 + seed/2, B: 128, A: 255}
}
