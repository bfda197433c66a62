package image

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Downscale resamples src to w×h with a Catmull-Rom filter.
// Rendering at a multiple of the target size and downscaling smooths the
// aliasing along the set's boundary. If src already has the target size it
// is copied unchanged.
func Downscale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sr := src.Bounds()
	if sr.Dx() == w && sr.Dy() == h {
		xdraw.Copy(dst, image.Point{}, src, sr, xdraw.Src, nil)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, xdraw.Src, nil)
	return dst
}
