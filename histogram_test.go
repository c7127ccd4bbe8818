package fractal

import "testing"

func mustHistogram(t *testing.T, sigfigs int) *Histogram {
	t.Helper()
	h, err := NewHistogram(sigfigs)
	if err != nil {
		t.Fatalf("NewHistogram(%d) failed: %v", sigfigs, err)
	}
	return h
}

func TestNewHistogramInvalidSigfigs(t *testing.T) {
	for _, sigfigs := range []int{0, -1, 6} {
		if _, err := NewHistogram(sigfigs); err == nil {
			t.Errorf("NewHistogram(%d) should fail", sigfigs)
		}
	}
}

func TestHistogramEmpty(t *testing.T) {
	h := mustHistogram(t, 3)

	if got := h.TotalCount(); got != 0 {
		t.Errorf("TotalCount() = %d, want 0", got)
	}
	if got := h.Max(); got != 0 {
		t.Errorf("Max() = %d, want 0", got)
	}
	if got := h.ValueAtQuantile(0.5); got != 0 {
		t.Errorf("ValueAtQuantile(0.5) = %d, want 0", got)
	}
	if got := h.NextDistinct(100); got != 0 {
		t.Errorf("NextDistinct(100) = %d, want 0", got)
	}
}

func TestHistogramRecordExact(t *testing.T) {
	// At 3 significant digits all values up to 2047 land in exact buckets.
	h := mustHistogram(t, 3)

	for range 3 {
		h.Record(42)
	}
	h.Record(1024)
	h.Record(2047)

	if got := h.TotalCount(); got != 5 {
		t.Errorf("TotalCount() = %d, want 5", got)
	}
	if got := h.CountAt(42); got != 3 {
		t.Errorf("CountAt(42) = %d, want 3", got)
	}
	if got := h.CountAt(43); got != 0 {
		t.Errorf("CountAt(43) = %d, want 0", got)
	}
	if got := h.Max(); got != 2047 {
		t.Errorf("Max() = %d, want 2047", got)
	}
}

func TestHistogramReducedPrecision(t *testing.T) {
	// At 1 significant digit, values 100 and 101 share a bucket; at 3
	// they do not.
	coarse := mustHistogram(t, 1)
	coarse.Record(100)
	if got := coarse.CountAt(101); got != 1 {
		t.Errorf("coarse CountAt(101) = %d, want 1 (shared bucket)", got)
	}

	fine := mustHistogram(t, 3)
	fine.Record(100)
	if got := fine.CountAt(101); got != 0 {
		t.Errorf("fine CountAt(101) = %d, want 0", got)
	}
	if got := fine.CountAt(100); got != 1 {
		t.Errorf("fine CountAt(100) = %d, want 1", got)
	}
}

func TestHistogramGrowth(t *testing.T) {
	// Values far beyond the initial bucket range must grow the table,
	// not panic, and still resolve to the right bucket.
	h := mustHistogram(t, 2)
	h.Record(1 << 20)
	h.Record(5)

	if got := h.TotalCount(); got != 2 {
		t.Errorf("TotalCount() = %d, want 2", got)
	}
	if got := h.CountAt(1 << 20); got != 1 {
		t.Errorf("CountAt(1<<20) = %d, want 1", got)
	}
	if got := h.Max(); got < 1<<20 {
		t.Errorf("Max() = %d, want >= %d", got, 1<<20)
	}
}

func TestHistogramValueAtQuantile(t *testing.T) {
	h := mustHistogram(t, 3)
	for range 4 {
		h.Record(1)
	}
	for range 2 {
		h.Record(50)
	}
	for range 4 {
		h.Record(100)
	}

	tests := []struct {
		q    float64
		want uint32
	}{
		{0, 1},
		{0.25, 1},
		{0.4, 1},
		{0.5, 50},
		{0.6, 50},
		{0.7, 100},
		{1, 100},
	}
	for _, tt := range tests {
		if got := h.ValueAtQuantile(tt.q); got != tt.want {
			t.Errorf("ValueAtQuantile(%v) = %d, want %d", tt.q, got, tt.want)
		}
	}
}

func TestHistogramValueAtQuantileClamped(t *testing.T) {
	h := mustHistogram(t, 3)
	h.Record(7)

	if got := h.ValueAtQuantile(-0.5); got != 7 {
		t.Errorf("ValueAtQuantile(-0.5) = %d, want 7", got)
	}
	if got := h.ValueAtQuantile(2); got != 7 {
		t.Errorf("ValueAtQuantile(2) = %d, want 7", got)
	}
}

func TestHistogramNextDistinct(t *testing.T) {
	h := mustHistogram(t, 3)
	h.Record(1)
	h.Record(50)
	h.Record(999)

	tests := []struct {
		v    uint32
		want uint32
	}{
		{0, 1},
		{1, 50},
		{49, 50},
		{50, 999},
		{999, 999}, // nothing above: falls back to max
		{1500, 999},
	}
	for _, tt := range tests {
		if got := h.NextDistinct(tt.v); got != tt.want {
			t.Errorf("NextDistinct(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestHistogramReset(t *testing.T) {
	h := mustHistogram(t, 3)
	h.Record(10)
	h.Record(20)
	h.Reset()

	if got := h.TotalCount(); got != 0 {
		t.Errorf("TotalCount() after Reset = %d, want 0", got)
	}
	if got := h.CountAt(10); got != 0 {
		t.Errorf("CountAt(10) after Reset = %d, want 0", got)
	}
	if got := h.Max(); got != 0 {
		t.Errorf("Max() after Reset = %d, want 0", got)
	}

	h.Record(5)
	if got := h.ValueAtQuantile(1); got != 5 {
		t.Errorf("ValueAtQuantile(1) after re-record = %d, want 5", got)
	}
}
