package mandel

import (
	"math"
	"testing"
)

var classic = IterationParams{MaxIter: 256, EscapeThresholdSquared: 4.0}

func TestEvaluate_FarPointsEscapeImmediately(t *testing.T) {
	thresholds := []float64{4.0, 10.0, 100.0}
	points := [][2]float64{
		{2, 0}, {-2, 0}, {0, 2}, {0, -2}, {3, 4}, {-7.5, 1e3}, {10, 10},
	}

	for _, th := range thresholds {
		p := IterationParams{MaxIter: 50, EscapeThresholdSquared: th}
		for _, c := range points {
			if c[0]*c[0]+c[1]*c[1] < th {
				continue
			}
			if got := Evaluate(c[0], c[1], p); got != Escaped(0) {
				t.Errorf("Evaluate(%v, %v) threshold %v = %v, want Escaped(0)", c[0], c[1], th, got)
			}
		}
	}
}

func TestEvaluate_OriginIsBounded(t *testing.T) {
	for _, maxIter := range []int{1, 2, 17, 1000, 100_000} {
		p := IterationParams{MaxIter: maxIter, EscapeThresholdSquared: 4}
		if got := Evaluate(0, 0, p); !got.IsBounded() {
			t.Errorf("Evaluate(0, 0) maxIter=%d = %v, want Bounded", maxIter, got)
		}
	}
}

func TestEvaluate_KnownPoints(t *testing.T) {
	tests := []struct {
		name   string
		cr, ci float64
		want   Result
	}{
		{"period two", -1, 0, Bounded},
		{"cusp of cardioid", 0.25, 0, Bounded},
		{"imaginary unit cycles", 0, 1, Bounded},
		{"center of classic view", -0.667, 0, Bounded},
		{"one escapes second step", 1, 0, Escaped(1)},
		{"one half", 0.5, 0, Escaped(4)},
		{"on threshold counts as escaped", 2, 0, Escaped(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.cr, tt.ci, classic); got != tt.want {
				t.Errorf("Evaluate(%v, %v) = %v, want %v", tt.cr, tt.ci, got, tt.want)
			}
		})
	}
}

// TestEvaluate_IndexOfFirstEscapedIterate pins the index convention: the
// result is Escaped(k-1) where z_k is the first iterate with |z_k|² at or
// above the threshold.
func TestEvaluate_IndexOfFirstEscapedIterate(t *testing.T) {
	points := []complex128{1, 0.5, complex(0.4, 0.4), complex(-2, 0.5), complex(0.3, 0.6), complex(-1.9, 0.1)}

	for _, c := range points {
		want := Bounded
		var z complex128
		for k := 1; k <= classic.MaxIter; k++ {
			z = z*z + c
			if real(z)*real(z)+imag(z)*imag(z) >= classic.EscapeThresholdSquared {
				want = Escaped(k - 1)
				break
			}
		}
		if want.IsBounded() {
			t.Fatalf("test point %v does not escape", c)
		}

		if got := Evaluate(real(c), imag(c), classic); got != want {
			t.Errorf("Evaluate(%v) = %v, want %v", c, got, want)
		}
	}
}

func TestEvaluate_EscapeIndexBelowMaxIter(t *testing.T) {
	p := IterationParams{MaxIter: 30, EscapeThresholdSquared: 4}
	for i := range 200 {
		cr := -2.2 + float64(i)*0.016
		for j := range 50 {
			ci := -1.2 + float64(j)*0.05
			if n, ok := Evaluate(cr, ci, p).Escaped(); ok && (n < 0 || n >= p.MaxIter) {
				t.Fatalf("Evaluate(%v, %v) = Escaped(%d), outside [0, %d)", cr, ci, n, p.MaxIter)
			}
		}
	}
}

func TestEvaluate_MoreIterationsNeverUnescape(t *testing.T) {
	short := IterationParams{MaxIter: 40, EscapeThresholdSquared: 4}
	long := IterationParams{MaxIter: 400, EscapeThresholdSquared: 4}

	for i := range 64 {
		cr := -2 + float64(i)/32
		ci := 0.3
		a := Evaluate(cr, ci, short)
		b := Evaluate(cr, ci, long)
		if n, ok := a.Escaped(); ok && a != b {
			t.Errorf("c=(%v, %v): Escaped(%d) with 40 iterations but %v with 400", cr, ci, n, b)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	for i := range 100 {
		cr := -0.75 + float64(i)*1e-4
		ci := 0.1
		first := Evaluate(cr, ci, classic)
		for range 3 {
			if again := Evaluate(cr, ci, classic); again != first {
				t.Fatalf("Evaluate(%v, %v) = %v then %v", cr, ci, first, again)
			}
		}
	}
}

func TestEvaluate_ConjugateSymmetry(t *testing.T) {
	for i := range 100 {
		cr := -2 + float64(i)*0.025
		ci := math.Ldexp(float64(i%13), -4)
		if a, b := Evaluate(cr, ci, classic), Evaluate(cr, -ci, classic); a != b {
			t.Errorf("Evaluate(%v, ±%v) = %v and %v", cr, ci, a, b)
		}
	}
}

func TestEvaluate_NoAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = Evaluate(-0.5, 0.5, classic)
	})
	if allocs != 0 {
		t.Errorf("Evaluate allocates %v times per call, want 0", allocs)
	}
}

func TestResult(t *testing.T) {
	var zero Result
	if !zero.IsBounded() || zero != Bounded {
		t.Error("zero Result should be Bounded")
	}
	if n, ok := Bounded.Escaped(); ok || n != 0 {
		t.Errorf("Bounded.Escaped() = (%d, %v), want (0, false)", n, ok)
	}

	r := Escaped(7)
	if r.IsBounded() {
		t.Error("Escaped(7).IsBounded() = true")
	}
	if n, ok := r.Escaped(); !ok || n != 7 {
		t.Errorf("Escaped(7).Escaped() = (%d, %v), want (7, true)", n, ok)
	}
	if Escaped(0) == Bounded {
		t.Error("Escaped(0) must differ from Bounded")
	}

	if got := r.String(); got != "Escaped(7)" {
		t.Errorf("String() = %q, want %q", got, "Escaped(7)")
	}
	if got := Bounded.String(); got != "Bounded" {
		t.Errorf("String() = %q, want %q", got, "Bounded")
	}
}

func BenchmarkEvaluate_Bounded(b *testing.B) {
	p := IterationParams{MaxIter: 10000, EscapeThresholdSquared: 10}
	b.ReportAllocs()
	for b.Loop() {
		_ = Evaluate(-0.1, 0.1, p)
	}
}

func BenchmarkEvaluate_Escaping(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = Evaluate(-0.75, 0.1, classic)
	}
}
