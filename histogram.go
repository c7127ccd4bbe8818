package fractal

import (
	"fmt"
	"math"
	"math/bits"
)

// Histogram is a frequency table over iteration counts with reduced
// value precision, so the bucket count stays bounded no matter how high
// the iteration cap is pushed.
//
// Values are bucketed to the requested number of significant decimal
// digits: values below twice 10^sigfigs (rounded up to a power of two)
// are recorded exactly, and above that bucket widths double every time
// the value range doubles. At the viewer's 3 significant digits every
// count up to 2047 is exact, which covers the default 1024-iteration
// cap with room to spare; the precision is a tuning parameter, not a
// fixed constant.
//
// The zero count state is meaningful: an empty histogram (a frame where
// no pixel escaped) reports 0 from ValueAtQuantile, Max, and
// NextDistinct. Callers treat all-zero thresholds as a normal frame.
//
// A Histogram is reset and rebuilt from scratch every frame; it carries
// no state between frames.
type Histogram struct {
	subBucketCount              int
	subBucketHalfCount          int
	subBucketHalfCountMagnitude int

	counts     []int64
	totalCount int64

	// maxValue is the largest raw value recorded since the last Reset,
	// 0 when empty.
	maxValue uint32
}

// NewHistogram creates a histogram tracking values to the given number
// of significant decimal digits, between 1 and 5.
func NewHistogram(sigfigs int) (*Histogram, error) {
	if sigfigs < 1 || sigfigs > 5 {
		return nil, fmt.Errorf("fractal: sigfigs must be in [1, 5], got %d", sigfigs)
	}

	// Smallest power of two able to hold 2*10^sigfigs distinct values:
	// the largest range over which values resolve to sigfigs digits.
	largest := 2 * int(math.Pow10(sigfigs))
	magnitude := bits.Len(uint(largest - 1))

	h := &Histogram{
		subBucketCount:              1 << magnitude,
		subBucketHalfCount:          1 << (magnitude - 1),
		subBucketHalfCountMagnitude: magnitude - 1,
	}
	h.counts = make([]int64, h.subBucketCount)
	return h, nil
}

// Reset clears all counts, keeping the allocated buckets.
func (h *Histogram) Reset() {
	clear(h.counts)
	h.totalCount = 0
	h.maxValue = 0
}

// Record adds one occurrence of v. Sample filtering (escaped vs.
// non-escaped) happens in the caller; the histogram counts whatever it
// is fed.
func (h *Histogram) Record(v uint32) {
	idx := h.countsIndex(v)
	if idx >= len(h.counts) {
		grown := len(h.counts) * 2
		for idx >= grown {
			grown *= 2
		}
		counts := make([]int64, grown)
		copy(counts, h.counts)
		h.counts = counts
	}
	h.counts[idx]++
	h.totalCount++
	if v > h.maxValue {
		h.maxValue = v
	}
}

// TotalCount returns the number of recorded samples.
func (h *Histogram) TotalCount() int64 { return h.totalCount }

// Max returns the highest value equivalent to the largest recorded
// sample, or 0 if nothing was recorded.
func (h *Histogram) Max() uint32 {
	if h.totalCount == 0 {
		return 0
	}
	return h.highestEquivalent(h.maxValue)
}

// CountAt returns the count recorded in v's bucket.
func (h *Histogram) CountAt(v uint32) int64 {
	idx := h.countsIndex(v)
	if idx >= len(h.counts) {
		return 0
	}
	return h.counts[idx]
}

// ValueAtQuantile returns the smallest recorded value v such that the
// fraction of samples at or below v is at least q, reported at the
// bucket's highest equivalent value. Returns 0 for an empty histogram.
func (h *Histogram) ValueAtQuantile(q float64) uint32 {
	if h.totalCount == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	} else if q > 1 {
		q = 1
	}

	target := int64(math.Ceil(q * float64(h.totalCount)))
	if target < 1 {
		target = 1
	}

	var cum int64
	for idx, c := range h.counts {
		cum += c
		if cum >= target {
			return h.highestEquivalent(h.valueFromIndex(idx))
		}
	}
	return h.Max()
}

// NextDistinct returns the smallest recorded value strictly greater
// than v, or Max if no recorded value lies above v. Returns 0 for an
// empty histogram.
func (h *Histogram) NextDistinct(v uint32) uint32 {
	if h.totalCount == 0 {
		return 0
	}
	for idx := h.countsIndex(v) + 1; idx < len(h.counts); idx++ {
		if h.counts[idx] != 0 {
			return h.highestEquivalent(h.valueFromIndex(idx))
		}
	}
	return h.Max()
}

// bucketIndex returns the power-of-two bucket v falls in; bucket 0 holds
// all exactly-representable values below subBucketCount.
func (h *Histogram) bucketIndex(v uint32) int {
	pow2 := bits.Len32(v | uint32(h.subBucketCount-1))
	return pow2 - (h.subBucketHalfCountMagnitude + 1)
}

// countsIndex maps a value to its position in the counts slice.
func (h *Histogram) countsIndex(v uint32) int {
	bucket := h.bucketIndex(v)
	sub := int(v >> uint(bucket))
	return (bucket+1)*h.subBucketHalfCount + (sub - h.subBucketHalfCount)
}

// valueFromIndex is the inverse of countsIndex, returning the lowest
// value in the bucket at idx.
func (h *Histogram) valueFromIndex(idx int) uint32 {
	bucket := idx/h.subBucketHalfCount - 1
	sub := idx%h.subBucketHalfCount + h.subBucketHalfCount
	if bucket < 0 {
		bucket = 0
		sub = idx
	}
	return uint32(sub) << uint(bucket)
}

// highestEquivalent returns the largest value that falls in the same
// bucket as v.
func (h *Histogram) highestEquivalent(v uint32) uint32 {
	bucket := h.bucketIndex(v)
	return v | (1<<uint(bucket) - 1)
}
