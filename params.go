package mandel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned by Render when the viewport, grid or
// iteration parameters cannot describe a render.
var ErrInvalidParameters = errors.New("mandel: invalid parameters")

// Viewport is the rectangle of the complex plane mapped onto the image.
// Top is the imaginary coordinate of pixel row 0 and Left the real
// coordinate of pixel column 0; the rectangle extends Width along the real
// axis and Height along the imaginary axis.
type Viewport struct {
	Top, Left     float64
	Width, Height float64
}

// Grid is the output resolution in pixels.
type Grid struct {
	Width, Height int
}

// Pixels returns the number of pixels in the grid.
func (g Grid) Pixels() int {
	return g.Width * g.Height
}

// IterationParams bounds the escape-time iteration.
//
// EscapeThresholdSquared is compared with |z|², so 4.0 corresponds to the
// classic escape radius 2. It must stay small enough that z cannot overflow
// to infinity before the test fires; values between 4 and 100 are safe.
type IterationParams struct {
	MaxIter                int
	EscapeThresholdSquared float64
}

// Point maps pixel (ix, iy) of g to its point c = cr + ci·i in the plane.
// The pixel index is divided by the grid dimension before scaling, so pixel
// 0 maps to the viewport's edge and pixel Width-1 falls one step short of
// the opposite edge.
func (v Viewport) Point(g Grid, ix, iy int) (cr, ci float64) {
	ci = v.Top + (float64(iy)/float64(g.Height))*v.Height
	cr = v.Left + (float64(ix)/float64(g.Width))*v.Width
	return cr, ci
}

// Validate reports whether the viewport has a positive finite extent.
func (v Viewport) Validate() error {
	switch {
	case !finite(v.Top) || !finite(v.Left):
		return fmt.Errorf("%w: viewport origin (%v, %v) is not finite", ErrInvalidParameters, v.Left, v.Top)
	case !(v.Width > 0) || !finite(v.Width):
		return fmt.Errorf("%w: viewport width %v must be positive", ErrInvalidParameters, v.Width)
	case !(v.Height > 0) || !finite(v.Height):
		return fmt.Errorf("%w: viewport height %v must be positive", ErrInvalidParameters, v.Height)
	}
	return nil
}

// Validate reports whether the grid has positive dimensions.
func (g Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalidParameters, g.Width, g.Height)
	}
	if g.Width > math.MaxInt/g.Height {
		return fmt.Errorf("%w: grid %dx%d overflows", ErrInvalidParameters, g.Width, g.Height)
	}
	return nil
}

// Validate reports whether the iteration bound and threshold are usable.
func (p IterationParams) Validate() error {
	if p.MaxIter <= 0 {
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidParameters, p.MaxIter)
	}
	if !(p.EscapeThresholdSquared > 0) || math.IsInf(p.EscapeThresholdSquared, 0) {
		return fmt.Errorf("%w: escape threshold %v must be positive and finite", ErrInvalidParameters, p.EscapeThresholdSquared)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validate checks a full render request.
func validate(v Viewport, g Grid, p IterationParams) error {
	return errors.Join(v.Validate(), g.Validate(), p.Validate())
}
