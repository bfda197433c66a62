// Package parallel provides the data-parallel scheduling used by the renderer.
//
// A render is a flat range of pixel indices [0, width*height). Partition cuts
// that range into contiguous spans; each span is executed as one task on a
// WorkerPool. Spans never overlap, so a task may write its slice of the
// output without synchronization.
package parallel

// DefaultSpan is the default number of pixels per span.
// It matches one 64x64 tile, small enough to balance load across workers
// and large enough that scheduling overhead stays negligible.
const DefaultSpan = 64 * 64

// Span is a half-open range [Lo, Hi) of flat pixel indices.
type Span struct {
	Lo, Hi int
}

// Len returns the number of indices in the span.
func (s Span) Len() int {
	return s.Hi - s.Lo
}

// Partition splits [0, n) into contiguous spans of size pixels.
// The last span is shorter when n is not a multiple of size.
// A size of 0 or less selects DefaultSpan. For n <= 0 Partition returns nil.
//
// The spans are ordered, pairwise disjoint, and their union is exactly [0, n).
func Partition(n, size int) []Span {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultSpan
	}

	spans := make([]Span, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, Span{Lo: lo, Hi: min(lo+size, n)})
	}
	return spans
}

// Split hands out one capacity-clipped sub-slice of buf per span.
// parts[i] aliases buf[spans[i].Lo:spans[i].Hi] and cannot be re-sliced or
// appended past Hi, so ownership of each index range moves to exactly one
// holder. Split panics if a span lies outside buf.
func Split[T any](buf []T, spans []Span) [][]T {
	parts := make([][]T, len(spans))
	for i, s := range spans {
		parts[i] = buf[s.Lo:s.Hi:s.Hi]
	}
	return parts
}
