package image

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyImage is returned when asked to encode an image with no pixels.
	ErrEmptyImage = errors.New("image: empty image")
)

// DefaultJPEGQuality is the JPEG quality used unless WithQuality is given.
const DefaultJPEGQuality = 95

// EncodeOption configures Encode and Save.
type EncodeOption func(*encodeOptions)

type encodeOptions struct {
	quality int
}

// WithQuality sets the JPEG quality (1-100). Other formats ignore it.
// Out-of-range values are clamped.
func WithQuality(q int) EncodeOption {
	return func(o *encodeOptions) {
		o.quality = min(max(q, 1), 100)
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opts ...EncodeOption) error {
	if img.Bounds().Empty() {
		return ErrEmptyImage
	}

	o := encodeOptions{quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&o)
	}

	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: o.quality})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", format, err)
	}
	return nil
}

// Save writes img to path, choosing the format from the file extension.
// A failed write leaves no partial file behind.
func Save(img image.Image, path string, opts ...EncodeOption) error {
	format, ok := FormatFromPath(path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := Encode(f, img, format, opts...); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("image: close file: %w", err)
	}
	return nil
}
