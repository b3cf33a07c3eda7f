package thumbnails

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/url"
	"strconv"

	"github.com/disintegration/imaging"
)

const maxDimension = 4096

// Options describes a resize requested through query parameters
type Options struct {
	Width   int    // Width in pixels
	Height  int    // Height in pixels
	Fit     string // "contain", "cover", "fill"
	Crop    string // "center", "top", "bottom", "left", "right"
	Quality int    // JPEG quality (1-100)
	Format  string // "jpeg", "png"
	Preset  string
}

// ParseOptions reads w, h, fit, crop, quality, format and preset
func ParseOptions(q url.Values) (Options, error) {
	var opts Options
	var err error

	if opts.Width, err = atoi(q.Get("w")); err != nil {
		return opts, fmt.Errorf("invalid width: %w", err)
	}
	if opts.Height, err = atoi(q.Get("h")); err != nil {
		return opts, fmt.Errorf("invalid height: %w", err)
	}
	if opts.Quality, err = atoi(q.Get("quality")); err != nil {
		return opts, fmt.Errorf("invalid quality: %w", err)
	}
	opts.Fit = q.Get("fit")
	opts.Crop = q.Get("crop")
	opts.Format = q.Get("format")

	if preset := q.Get("preset"); preset != "" {
		if err := ApplyPreset(&opts, preset); err != nil {
			return opts, err
		}
	}

	return opts, opts.Validate()
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// IsEmpty reports whether the original bytes can be served untouched
func (o Options) IsEmpty() bool {
	return o.Width == 0 && o.Height == 0 && o.Crop == "" && o.Format == "" && o.Quality == 0
}

// Validate checks if the options are valid
func (o Options) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("width and height must be non-negative")
	}
	if o.Width > maxDimension || o.Height > maxDimension {
		return fmt.Errorf("maximum allowed dimension is %d pixels", maxDimension)
	}

	switch o.Fit {
	case "", "contain", "cover", "fill":
	default:
		return fmt.Errorf("invalid fit mode: %s", o.Fit)
	}
	if o.Fit != "" && o.Width == 0 && o.Height == 0 {
		return fmt.Errorf("fit mode %s needs a width or height", o.Fit)
	}

	switch o.Crop {
	case "", "center", "top", "bottom", "left", "right":
	default:
		return fmt.Errorf("invalid crop position: %s", o.Crop)
	}

	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100")
	}

	switch o.Format {
	case "", "jpeg", "jpg", "png":
	default:
		return fmt.Errorf("unsupported format: %s", o.Format)
	}

	return nil
}

// ApplyPreset fills opts with one of the named thumbnail sizes
func ApplyPreset(opts *Options, preset string) error {
	switch preset {
	case "small":
		opts.Width, opts.Height, opts.Fit, opts.Quality = 92, 92, "cover", 80
	case "medium":
		opts.Width, opts.Height, opts.Fit, opts.Quality = 420, 420, "cover", 85
	case "large":
		opts.Width, opts.Height, opts.Fit, opts.Quality = 1080, 1080, "contain", 85
	default:
		return fmt.Errorf("unknown preset: %s", preset)
	}
	opts.Preset = preset
	return nil
}

// Transform applies opts to the encoded image read from input and returns
// the encoded result with its content type.
func Transform(input io.Reader, opts Options) ([]byte, string, error) {
	src, format, err := image.Decode(input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	img := imaging.Clone(src)

	if opts.Width > 0 || opts.Height > 0 {
		img = resize(img, opts)
	}

	if opts.Crop != "" {
		bounds := img.Bounds()
		cropWidth, cropHeight := opts.Width, opts.Height
		if cropWidth == 0 || cropWidth > bounds.Dx() {
			cropWidth = bounds.Dx()
		}
		if cropHeight == 0 || cropHeight > bounds.Dy() {
			cropHeight = bounds.Dy()
		}
		img = imaging.CropAnchor(img, cropWidth, cropHeight, anchor(opts.Crop))
	}

	outputFormat := opts.Format
	if outputFormat == "" {
		outputFormat = format
	}

	var buf bytes.Buffer
	switch outputFormat {
	case "png":
		err = png.Encode(&buf, img)
		if err == nil {
			return buf.Bytes(), "image/png", nil
		}
	default:
		quality := opts.Quality
		if quality == 0 {
			quality = 85
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
		if err == nil {
			return buf.Bytes(), "image/jpeg", nil
		}
	}
	return nil, "", fmt.Errorf("failed to encode transformed image: %w", err)
}

func resize(img *image.NRGBA, opts Options) *image.NRGBA {
	width, height := opts.Width, opts.Height
	bounds := img.Bounds()

	// one missing dimension keeps the aspect ratio
	if width == 0 {
		width = int(float64(bounds.Dx()) * float64(height) / float64(bounds.Dy()))
	} else if height == 0 {
		height = int(float64(bounds.Dy()) * float64(width) / float64(bounds.Dx()))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	switch opts.Fit {
	case "cover":
		return imaging.Fill(img, width, height, anchor(opts.Crop), imaging.Lanczos)
	case "fill":
		return imaging.Resize(img, width, height, imaging.Lanczos)
	default:
		return imaging.Fit(img, width, height, imaging.Lanczos)
	}
}

func anchor(crop string) imaging.Anchor {
	switch crop {
	case "top":
		return imaging.Top
	case "bottom":
		return imaging.Bottom
	case "left":
		return imaging.Left
	case "right":
		return imaging.Right
	default:
		return imaging.Center
	}
}
