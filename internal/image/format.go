// Package image encodes finished renders to image files.
//
// The encoder picks the file format from the path extension: PNG and JPEG
// through the standard library, BMP and TIFF through golang.org/x/image.
// Downscale and Caption post-process an image before it is written.
package image

import (
	"path/filepath"
	"strings"
)

// Format is an image file format.
type Format uint8

const (
	// FormatPNG is lossless PNG.
	FormatPNG Format = iota + 1

	// FormatJPEG is baseline JPEG; see WithQuality.
	FormatJPEG

	// FormatBMP is uncompressed Windows bitmap.
	FormatBMP

	// FormatTIFF is deflate-compressed TIFF.
	FormatTIFF
)

// extensions maps lower-case file extensions to formats.
var extensions = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
}

// FormatFromPath returns the format implied by the extension of path.
// The second result is false for unknown or missing extensions.
func FormatFromPath(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// String returns the conventional name of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatBMP:
		return "BMP"
	case FormatTIFF:
		return "TIFF"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
