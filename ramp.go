package mandel

import (
	"image/color"
	"math"

	icolor "github.com/gogpu/mandel/internal/color"
)

// HSV is an 8-bit hue/saturation/value color. H is in half degrees
// (0..179), S and V span 0..255. The zero HSV is black.
type HSV struct {
	H, S, V uint8
}

// RGBA implements color.Color by converting to sRGB, so an HSV can be
// handed to anything in the image packages.
func (c HSV) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := icolor.HSVToRGB(c.H, c.S, c.V)
	return color.RGBA{R: r8, G: g8, B: b8, A: 0xff}.RGBA()
}

// HSVModel converts any color to HSV.
var HSVModel = color.ModelFunc(hsvModel)

func hsvModel(c color.Color) color.Color {
	if hsv, ok := c.(HSV); ok {
		return hsv
	}
	r, g, b, _ := c.RGBA()
	return rgbToHSV(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// rgbToHSV is the inverse of the HSV conversion, used only by HSVModel.
func rgbToHSV(r, g, b uint8) HSV {
	hi := max(r, g, b)
	lo := min(r, g, b)
	if hi == 0 {
		return HSV{}
	}
	d := float64(hi - lo)
	s := uint8(math.Round(d / float64(hi) * 255))
	if d == 0 {
		return HSV{S: 0, V: hi}
	}

	var deg float64
	switch hi {
	case r:
		deg = 60 * (float64(g) - float64(b)) / d
	case g:
		deg = 120 + 60*(float64(b)-float64(r))/d
	default:
		deg = 240 + 60*(float64(r)-float64(g))/d
	}
	if deg < 0 {
		deg += 360
	}
	h := int(math.Round(deg / 2))
	if h >= 180 {
		h -= 180
	}
	return HSV{H: uint8(h), S: s, V: hi}
}

// Ramp maps escape iterations onto the value channel as a triangular wave.
//
// The escape index n is scaled by Ratio; each run of Value+1 scaled units is
// one band. Even bands fall from Value to 0, odd bands rise from 0 to
// Value, so consecutive bands meet without a seam. Hue and saturation are
// constant.
type Ramp struct {
	Ratio      float64
	Hue        uint8
	Saturation uint8
	Value      uint8
}

// DefaultRamp is the ramp used unless a renderer is configured otherwise:
// 4.5 scaled units per iteration in a 512-unit cycle.
var DefaultRamp = Ramp{Ratio: 4.5, Hue: 176, Saturation: 128, Value: 255}

// Color returns the color for r. Bounded points are the zero color.
func (rp Ramp) Color(r Result) HSV {
	n, ok := r.Escaped()
	if !ok {
		return HSV{}
	}

	period := int(rp.Value) + 1
	scaled := int(math.Floor(float64(n) * rp.Ratio))
	band := scaled / period
	offset := scaled % period

	v := offset
	if band%2 == 0 {
		v = int(rp.Value) - offset
	}
	return HSV{H: rp.Hue, S: rp.Saturation, V: uint8(v)}
}

// ColorOf colors r with DefaultRamp.
func ColorOf(r Result) HSV {
	return DefaultRamp.Color(r)
}
