package fractal

// ThresholdSet holds the nine ascending octile boundaries T[0..8] over
// the escaped-sample iteration counts of the previous frame. The shader
// consumes them as two groups of four (see FirstFour and SecondFour);
// T[8] is the observed maximum and bounds the last color band.
//
// The zero value is the empty-frame sentinel: a frame where no pixel
// escaped produces all-zero thresholds, which the shader renders as a
// single band. That is a legitimate state, not an error.
type ThresholdSet [9]uint32

// FirstFour returns T[0..3], the lower uniform threshold group.
func (t ThresholdSet) FirstFour() [4]uint32 {
	return [4]uint32{t[0], t[1], t[2], t[3]}
}

// SecondFour returns T[4..7], the upper uniform threshold group.
func (t ThresholdSet) SecondFour() [4]uint32 {
	return [4]uint32{t[4], t[5], t[6], t[7]}
}

// Max returns T[8], the observed maximum iteration count.
func (t ThresholdSet) Max() uint32 { return t[8] }

// Octiles derives the nine octile boundaries from h and resolves
// degenerate (equal) adjacent boundaries.
//
// T[i] is the value at quantile i/8. Heavily repeated iteration counts,
// common near the set boundary, collapse several octiles onto the same
// value and would produce zero-width color bands; the nudge pass scans
// i from 0 to 6 and forces T[i+1] above T[i] wherever the data permits:
// T[i+1] becomes max(T[i], T[i+1]), and if still equal to T[i], the
// smallest recorded value strictly above it, clamped to the observed
// maximum. The result is non-decreasing, and strictly increasing except
// where clamped at the maximum.
//
// An empty histogram yields the zero ThresholdSet.
func Octiles(h *Histogram) ThresholdSet {
	var t ThresholdSet
	if h.TotalCount() == 0 {
		return t
	}

	for i := range t {
		t[i] = h.ValueAtQuantile(float64(i) / 8)
	}

	max := h.Max()
	for i := range 7 {
		if t[i+1] < t[i] {
			t[i+1] = t[i]
		}
		if t[i+1] == t[i] {
			next := h.NextDistinct(t[i+1])
			if next > max {
				next = max
			}
			t[i+1] = next
		}
	}
	return t
}
