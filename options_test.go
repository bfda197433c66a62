package mandel

import (
	"runtime"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	if o.workers != 0 || o.chunkPixels != 0 {
		t.Errorf("workers, chunkPixels = %d, %d, want 0, 0", o.workers, o.chunkPixels)
	}
	if o.ramp != DefaultRamp {
		t.Errorf("ramp = %+v, want DefaultRamp", o.ramp)
	}
}

func TestNewRenderer_DefaultWorkers(t *testing.T) {
	r := NewRenderer(WithWorkers(-2))
	defer r.Close()

	if want := runtime.GOMAXPROCS(0); r.Workers() != want {
		t.Errorf("Workers() = %d, want GOMAXPROCS %d", r.Workers(), want)
	}
}

func TestNewRenderer_Options(t *testing.T) {
	r := NewRenderer(WithWorkers(3), WithChunkPixels(17))
	defer r.Close()

	if r.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", r.Workers())
	}
	if r.opts.chunkPixels != 17 {
		t.Errorf("chunkPixels = %d, want 17", r.opts.chunkPixels)
	}
	if r.opts.ramp != DefaultRamp {
		t.Errorf("ramp = %+v, want DefaultRamp", r.opts.ramp)
	}
}

func TestNewRenderer_SingleWorkerHasNoPool(t *testing.T) {
	r := NewRenderer(WithWorkers(1))
	defer r.Close()

	if r.pool != nil {
		t.Error("single-worker renderer started a pool")
	}
}

func TestWithRamp(t *testing.T) {
	rp := Ramp{Ratio: 1, Hue: 3, Saturation: 4, Value: 9}
	r := NewRenderer(WithWorkers(1), WithRamp(rp))
	defer r.Close()

	buf, err := r.Render(Viewport{Top: 0, Left: 2, Width: 1, Height: 1}, Grid{Width: 1, Height: 1}, ClassicParams)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := buf.HSVAt(0, 0); got != (HSV{H: 3, S: 4, V: 9}) {
		t.Errorf("pixel = %+v, want {3 4 9}", got)
	}
}

