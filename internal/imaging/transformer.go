// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging transforms stored images on demand: load, crop, scale and
// re-encode according to a compact option string.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/ocms-core/internal/storage"
)

// DefaultCacheMaxAge is the default Cache-Control max-age.
const DefaultCacheMaxAge = 30 * 24 * time.Hour

const placeholder = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

var (
	// ErrNotFound is returned when the source key does not resolve.
	ErrNotFound = errors.New("imaging: source image not found")
	// ErrUnsupported is returned for sources that cannot be decoded.
	ErrUnsupported = errors.New("imaging: unsupported image format")
)

// Source is the content store images are read from.
type Source interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Result is an encoded image ready to be written to a response.
type Result struct {
	Body         []byte
	ContentType  string
	CacheControl string
}

// Config tunes the transformer.
type Config struct {
	// CacheMaxAge is emitted as max-age and s-maxage.
	CacheMaxAge time.Duration
	// MaxDimension caps the scale targets.
	MaxDimension int
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		CacheMaxAge:  DefaultCacheMaxAge,
		MaxDimension: MaxDimension,
	}
}

// Transformer runs the image pipeline against a Source.
type Transformer struct {
	source Source
	cfg    Config
}

// NewTransformer creates a transformer reading from source.
func NewTransformer(source Source, cfg Config) *Transformer {
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = DefaultCacheMaxAge
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = MaxDimension
	}
	return &Transformer{source: source, cfg: cfg}
}

// Placeholder returns a 1x1 transparent PNG as a data URI.
func Placeholder() string {
	return placeholder
}

// Transform loads key, applies the options string and encodes the result.
func (t *Transformer) Transform(ctx context.Context, key, options string) (*Result, error) {
	img, err := t.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return t.Apply(img, ParseOptions(options))
}

// Apply runs crop, scale and encode on an already decoded image.
func (t *Transformer) Apply(img image.Image, opts Options) (*Result, error) {
	img = crop(img, opts.Crop)
	img = t.scale(img, opts.Width, opts.Height)

	body, contentType, err := encode(img, opts.Format, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	return &Result{
		Body:         body,
		ContentType:  contentType,
		CacheControl: CacheControl(t.cfg.CacheMaxAge),
	}, nil
}

// CacheControl formats the immutable public Cache-Control value for maxAge.
func CacheControl(maxAge time.Duration) string {
	s := strconv.FormatInt(int64(maxAge/time.Second), 10)
	return "public, max-age=" + s + ", s-maxage=" + s + ", immutable"
}

func (t *Transformer) load(ctx context.Context, key string) (image.Image, error) {
	r, err := t.source.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupported
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	if format == "jpeg" {
		img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	}
	return img, nil
}

// crop extracts r, clipped to the image bounds. A rectangle entirely outside
// the image leaves it untouched.
func crop(img image.Image, r *Rect) image.Image {
	if r == nil {
		return img
	}
	b := img.Bounds()
	rect := image.Rect(b.Min.X+r.X, b.Min.Y+r.Y, b.Min.X+r.X+r.Width, b.Min.Y+r.Y+r.Height)
	inside := rect.Intersect(b)
	if inside.Empty() {
		return img
	}
	cropped := imaging.Crop(img, inside)
	if inside == rect {
		return cropped
	}
	// The result keeps the requested size; the part outside the source is
	// transparent.
	canvas := imaging.New(r.Width, r.Height, color.Transparent)
	return imaging.Paste(canvas, cropped, inside.Min.Sub(rect.Min))
}

// scale only ever downsizes. When both targets apply the image is fitted
// inside them; with one target the other axis follows the aspect ratio.
func (t *Transformer) scale(img image.Image, width, height int) image.Image {
	if width <= 0 && height <= 0 {
		return img
	}

	b := img.Bounds()
	w := min(width, t.cfg.MaxDimension)
	h := min(height, t.cfg.MaxDimension)
	if w >= b.Dx() {
		w = 0
	}
	if h >= b.Dy() {
		h = 0
	}

	switch {
	case w > 0 && h > 0:
		return imaging.Fit(img, w, h, imaging.Lanczos)
	case w > 0 || h > 0:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	default:
		return img
	}
}

// ContentType returns the MIME type emitted for a format option.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// encode writes img in format. Quality applies to jpeg and webp only.
func encode(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	contentType := ContentType(format)

	switch contentType {
	case "image/png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
	case "image/gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
	case "image/webp":
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(min(max(quality, 0), 100)))
		if err != nil {
			return nil, "", err
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, "", err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: min(max(quality, 1), 100)}); err != nil {
			return nil, "", err
		}
	}

	return buf.Bytes(), contentType, nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation rotates or flips img so that it displays upright for the
// given EXIF orientation (1-8).
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// detectFormat sniffs the image format. TIFF is rejected
// (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "tiff"):
		return ""
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
