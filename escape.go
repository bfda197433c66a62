package mandel

import "fmt"

// Result is the outcome of iterating one point: either Escaped(n), the
// orbit left the threshold at iteration n, or Bounded.
//
// The zero Result is Bounded.
type Result struct {
	iter    int
	escaped bool
}

// Bounded is the result for a point whose orbit stayed below the threshold
// for every allowed iteration.
var Bounded = Result{}

// Escaped returns the result for an orbit that escaped at iteration n.
func Escaped(n int) Result {
	return Result{iter: n, escaped: true}
}

// Escaped returns the escape iteration and true, or 0 and false when the
// point is bounded.
func (r Result) Escaped() (n int, ok bool) {
	return r.iter, r.escaped
}

// IsBounded reports whether the orbit never escaped.
func (r Result) IsBounded() bool {
	return !r.escaped
}

// String implements fmt.Stringer.
func (r Result) String() string {
	if !r.escaped {
		return "Bounded"
	}
	return fmt.Sprintf("Escaped(%d)", r.iter)
}

// Evaluate iterates z ↦ z² + c from z = 0 for c = cr + ci·i.
//
// Iteration j computes z_{j+1} and tests |z_{j+1}|² against the threshold;
// the first j in [0, MaxIter) at which the test passes is returned as
// Escaped(j). Since z_1 = c, any c with |c|² ≥ EscapeThresholdSquared is
// Escaped(0). If no iteration escapes Evaluate returns Bounded.
//
// The squares of z are carried into the next iteration, so each step costs
// three multiplies. Evaluate has no error conditions and never allocates.
func Evaluate(cr, ci float64, p IterationParams) Result {
	var zr, zi, zr2, zi2 float64
	for j := range p.MaxIter {
		// The cross term needs zr from before this step.
		zi = 2*zr*zi + ci
		zr = zr2 - zi2 + cr
		zr2 = zr * zr
		zi2 = zi * zi
		if zr2+zi2 >= p.EscapeThresholdSquared {
			return Escaped(j)
		}
	}
	return Bounded
}
