package image

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// captionBackground is the translucent strip drawn behind caption text.
var captionBackground = color.RGBA{A: 0xa0}

// goRegular parses the embedded Go Regular font once.
var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// Caption draws a single line of text in the bottom-left corner of dst over
// a translucent strip. size is the font size in pixels.
func Caption(dst xdraw.Image, text string, size float64) error {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return fmt.Errorf("image: caption size %v must be positive", size)
	}

	f, err := goRegular()
	if err != nil {
		return fmt.Errorf("image: parse caption font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("image: caption face: %w", err)
	}
	defer func() { _ = face.Close() }()

	m := face.Metrics()
	pad := max(1, int(size/3))
	textW := font.MeasureString(face, text).Ceil()
	textH := (m.Ascent + m.Descent).Ceil()

	b := dst.Bounds()
	strip := image.Rect(b.Min.X, b.Max.Y-textH-2*pad, b.Min.X+textW+2*pad, b.Max.Y).Intersect(b)
	xdraw.Draw(dst, strip, image.NewUniform(captionBackground), image.Point{}, xdraw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(b.Min.X+pad, b.Max.Y-pad-m.Descent.Ceil()),
	}
	d.DrawString(text)
	return nil
}
