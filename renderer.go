package mandel

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gogpu/mandel/internal/parallel"
)

// ProgressFunc receives the number of finished pixels and the total after
// each chunk of a render completes. It is called from worker goroutines and
// must be safe for concurrent use. Calls from different workers may arrive
// out of order; the largest done seen so far is the true progress.
type ProgressFunc func(done, total int)

// Renderer evaluates viewports over pixel grids in parallel.
//
// A Renderer owns a pool of worker goroutines that lives until Close. It is
// safe for concurrent use: several renders may share the pool.
type Renderer struct {
	opts options
	pool *parallel.WorkerPool // nil when rendering inline
}

// NewRenderer creates a renderer and starts its workers.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}

	r := &Renderer{opts: o}
	if o.workers > 1 {
		r.pool = parallel.NewWorkerPool(o.workers)
	}
	return r
}

// Workers returns the number of goroutines a render fans out to.
func (r *Renderer) Workers() int {
	return r.opts.workers
}

// Close stops the worker goroutines. Renders started after Close run on the
// calling goroutine. Close is safe to call multiple times.
func (r *Renderer) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Render computes the escape-time color of every pixel of g mapped through
// v. It blocks until the whole grid is done.
//
// Invalid parameters are rejected with an error wrapping
// ErrInvalidParameters before any work starts.
func (r *Renderer) Render(v Viewport, g Grid, p IterationParams) (*Buffer, error) {
	return r.RenderWithProgress(v, g, p, nil)
}

// RenderWithProgress is Render with a progress callback; fn may be nil.
func (r *Renderer) RenderWithProgress(v Viewport, g Grid, p IterationParams, fn ProgressFunc) (*Buffer, error) {
	if err := validate(v, g, p); err != nil {
		return nil, err
	}
	rp := r.opts.ramp
	if !(rp.Ratio >= 0) || math.IsInf(rp.Ratio, 0) {
		return nil, fmt.Errorf("%w: ramp ratio %v must be non-negative and finite", ErrInvalidParameters, rp.Ratio)
	}

	start := time.Now()
	buf := newBuffer(g)
	total := g.Pixels()

	spans := parallel.Partition(total, r.opts.chunkPixels)
	parts := parallel.Split(buf.pix, spans)
	bounded := make([]int, len(spans))

	Logger().Debug("render partitioned",
		"grid", fmt.Sprintf("%dx%d", g.Width, g.Height),
		"chunks", len(spans),
		"chunk_pixels", spans[0].Len(),
		"workers", r.opts.workers)

	var done atomic.Int64
	tasks := make([]func(), len(spans))
	for i, s := range spans {
		tasks[i] = func() {
			bounded[i] = fill(parts[i], s.Lo, v, g, p, rp)
			if fn != nil {
				fn(int(done.Add(int64(s.Len()))), total)
			}
		}
	}

	if r.pool != nil {
		r.pool.ExecuteAll(tasks)
	} else {
		runInline(tasks)
	}

	for _, n := range bounded {
		buf.bounded += n
	}

	Logger().Info("render complete",
		"pixels", total,
		"bounded", buf.bounded,
		"max_iter", p.MaxIter,
		"elapsed", time.Since(start))

	return buf, nil
}

// Convert is Buffer.Convert with the rows converted on the renderer's
// workers.
func (r *Renderer) Convert(b *Buffer, from, to ColorSpace) (*image.RGBA, error) {
	if r.pool == nil {
		return b.convert(from, to, runInline)
	}
	return b.convert(from, to, r.pool.ExecuteAll)
}

// fill colors the pixels whose flat indices start at lo into dst and returns
// how many of them were bounded. dst is owned by the caller's task alone.
func fill(dst []HSV, lo int, v Viewport, g Grid, p IterationParams, rp Ramp) (bounded int) {
	ix, iy := lo%g.Width, lo/g.Width
	_, ci := v.Point(g, 0, iy)

	for k := range dst {
		cr, _ := v.Point(g, ix, iy)
		res := Evaluate(cr, ci, p)
		if res.IsBounded() {
			bounded++
		}
		dst[k] = rp.Color(res)

		ix++
		if ix == g.Width {
			ix = 0
			iy++
			_, ci = v.Point(g, 0, iy)
		}
	}
	return bounded
}

// Render is a one-shot render on a temporary Renderer with default options.
func Render(v Viewport, g Grid, p IterationParams) (*Buffer, error) {
	r := NewRenderer()
	defer r.Close()
	return r.Render(v, g, p)
}
