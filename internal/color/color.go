// Package color provides the color spaces of a render and the conversions
// between them.
//
// The escape-time ramp produces 8-bit hue/saturation/value triples. Hue uses
// the half-degree convention common to 8-bit HSV images: 0..179 covers
// 0..358 degrees, so the channel fits a byte. Saturation and value span
// 0..255.
package color

import (
	"errors"
	"fmt"
)

// ErrUnsupportedConversion is returned when no conversion exists between two
// color spaces.
var ErrUnsupportedConversion = errors.New("color: unsupported conversion")

// Space identifies the color space of a three-channel pixel.
type Space uint8

const (
	// SpaceHSV is 8-bit hue (half degrees), saturation, value.
	SpaceHSV Space = iota
	// SpaceRGB is 8-bit red, green, blue in the sRGB display space.
	SpaceRGB
)

// String returns the name of the color space.
func (s Space) String() string {
	switch s {
	case SpaceHSV:
		return "HSV"
	case SpaceRGB:
		return "RGB"
	default:
		return fmt.Sprintf("Space(%d)", uint8(s))
	}
}

// Triple is one three-channel pixel. The meaning of each channel depends on
// the Space it is in.
type Triple [3]uint8

// ConvertFunc converts a single pixel between two spaces.
type ConvertFunc func(Triple) Triple

// Lookup returns the per-pixel conversion from one space to another.
// Converting a space to itself is the identity.
func Lookup(from, to Space) (ConvertFunc, error) {
	switch {
	case from == to:
		return func(c Triple) Triple { return c }, nil
	case from == SpaceHSV && to == SpaceRGB:
		return func(c Triple) Triple {
			r, g, b := HSVToRGB(c[0], c[1], c[2])
			return Triple{r, g, b}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, from, to)
	}
}
