// Package mandel renders escape-time images of the Mandelbrot set.
//
// # Overview
//
// Every pixel of a Grid is mapped through a Viewport to a point c of the
// complex plane. Evaluate iterates z ↦ z² + c from z = 0 until |z|² reaches
// the escape threshold or the iteration budget runs out, yielding a Result:
// Escaped(n) or Bounded. A Ramp turns the Result into an HSV color, and a
// Renderer does this for the whole grid on a pool of worker goroutines.
//
// # Quick Start
//
//	r := mandel.NewRenderer()
//	defer r.Close()
//
//	buf, err := r.Render(mandel.ClassicViewport, mandel.ClassicGrid, mandel.ClassicParams)
//	if err != nil {
//	    return err
//	}
//	img := buf.RGBA() // display-ready sRGB
//
// # Parallelism
//
// The flat pixel range [0, width*height) is cut into contiguous chunks. Each
// chunk owns a capacity-clipped slice of the output buffer, so workers never
// share a cell and no locking is involved. Render returns only after every
// chunk has finished.
//
// # Coloring
//
// Bounded points are black. Escaped points keep a fixed hue and saturation
// and ramp their value up and down as the escape index grows, a triangular
// wave without a seam at the wrap point. Buffer holds the raw HSV colors;
// Buffer.RGBA and Renderer.Convert translate them for encoding.
//
// # Precision
//
// All arithmetic is float64. There is no overflow guard beyond the escape
// test, so the threshold must be small (4 to 100) for z to stay finite.
package mandel

// Version is the current version of the module.
const Version = "0.1.0"
