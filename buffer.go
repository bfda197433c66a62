package mandel

import (
	"image"
	"image/color"

	icolor "github.com/gogpu/mandel/internal/color"
	"github.com/gogpu/mandel/internal/parallel"
)

// Buffer is the finished output of a render: one HSV color per pixel in
// row-major order.
//
// A Buffer has no exported mutators. Render fills it and returns it only
// after every worker has finished, so a returned Buffer is safe for
// concurrent reads.
type Buffer struct {
	width   int
	height  int
	pix     []HSV
	bounded int
}

// newBuffer allocates a zeroed buffer for g.
func newBuffer(g Grid) *Buffer {
	return &Buffer{
		width:  g.Width,
		height: g.Height,
		pix:    make([]HSV, g.Pixels()),
	}
}

// Width returns the width of the buffer in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the height of the buffer in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// HSVAt returns the color of pixel (x, y), or the zero color when the
// pixel is outside the buffer.
func (b *Buffer) HSVAt(x, y int) HSV {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return HSV{}
	}
	return b.pix[y*b.width+x]
}

// Row returns a copy of row y. It returns nil if y is out of range.
func (b *Buffer) Row(y int) []HSV {
	if y < 0 || y >= b.height {
		return nil
	}
	row := make([]HSV, b.width)
	copy(row, b.pix[y*b.width:(y+1)*b.width])
	return row
}

// Stats returns the number of bounded and escaped pixels of the render.
func (b *Buffer) Stats() (bounded, escaped int) {
	return b.bounded, len(b.pix) - b.bounded
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return HSVModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// At implements image.Image. The returned color is an HSV.
func (b *Buffer) At(x, y int) color.Color {
	return b.HSVAt(x, y)
}

// ColorSpace identifies the color space of a converted image.
type ColorSpace = icolor.Space

// Color spaces accepted by Convert.
const (
	SpaceHSV = icolor.SpaceHSV
	SpaceRGB = icolor.SpaceRGB
)

// ErrUnsupportedConversion is returned by Convert for color space pairs it
// cannot translate.
var ErrUnsupportedConversion = icolor.ErrUnsupportedConversion

// Convert returns a copy of the buffer translated from one color space to
// another, as an opaque RGBA image whose three color channels hold the
// target space's channels. Converting SpaceHSV to SpaceHSV dumps the raw
// channels. Renderer.Convert does the same work in parallel.
func (b *Buffer) Convert(from, to ColorSpace) (*image.RGBA, error) {
	return b.convert(from, to, runInline)
}

// RGBA converts the buffer to a display-ready sRGB image.
func (b *Buffer) RGBA() *image.RGBA {
	img, _ := b.convert(SpaceHSV, SpaceRGB, runInline)
	return img
}

func runInline(tasks []func()) {
	for _, task := range tasks {
		task()
	}
}

// convert splits the rows into bands, one task per band, and hands the
// tasks to exec. Each task writes only its own rows of dst.
func (b *Buffer) convert(from, to ColorSpace, exec func([]func())) (*image.RGBA, error) {
	conv, err := icolor.Lookup(from, to)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(b.Bounds())
	if len(b.pix) == 0 {
		return dst, nil
	}

	rowsPerSpan := max(1, parallel.DefaultSpan/b.width)
	spans := parallel.Partition(b.height, rowsPerSpan)
	tasks := make([]func(), len(spans))
	for i, s := range spans {
		tasks[i] = func() {
			for y := s.Lo; y < s.Hi; y++ {
				src := b.pix[y*b.width : (y+1)*b.width]
				out := dst.Pix[y*dst.Stride : y*dst.Stride+b.width*4]
				for x, c := range src {
					t := conv(icolor.Triple{c.H, c.S, c.V})
					out[x*4+0] = t[0]
					out[x*4+1] = t[1]
					out[x*4+2] = t[2]
					out[x*4+3] = 0xff
				}
			}
		}
	}

	exec(tasks)
	return dst, nil
}
