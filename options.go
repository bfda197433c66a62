package mandel

// Option configures a Renderer during creation.
//
// Example:
//
//	// Defaults: GOMAXPROCS workers, 64x64-pixel spans, DefaultRamp.
//	r := mandel.NewRenderer()
//
//	// Single-threaded render with a faster color cycle.
//	r := mandel.NewRenderer(
//	    mandel.WithWorkers(1),
//	    mandel.WithRamp(mandel.Ramp{Ratio: 9, Hue: 176, Saturation: 128, Value: 255}),
//	)
type Option func(*options)

// options holds the optional configuration of a Renderer.
type options struct {
	workers     int
	chunkPixels int
	ramp        Ramp
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		workers:     0, // GOMAXPROCS
		chunkPixels: 0, // parallel.DefaultSpan
		ramp:        DefaultRamp,
	}
}

// WithWorkers sets the number of worker goroutines.
// Zero or a negative value selects GOMAXPROCS. With one worker the render
// runs on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithChunkPixels sets how many consecutive pixels one task renders.
// Smaller chunks balance better when some regions iterate far longer than
// others; larger chunks cost less to schedule. Zero or a negative value
// selects the default of 4096.
func WithChunkPixels(n int) Option {
	return func(o *options) {
		o.chunkPixels = n
	}
}

// WithRamp sets the escape-time color ramp.
func WithRamp(rp Ramp) Option {
	return func(o *options) {
		o.ramp = rp
	}
}
