// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/fractal"
)

// fakeRenderer is an in-memory PassRenderer that records every call and
// serves canned samples and colors.
type fakeRenderer struct {
	passes  []Params
	samples []IterationSample
	colors  []byte

	renderErr error
}

func (f *fakeRenderer) Render(p *Params) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.passes = append(f.passes, *p)
	return nil
}

func (f *fakeRenderer) ReadColors(dst []byte) error {
	copy(dst, f.colors)
	return nil
}

func (f *fakeRenderer) ReadIterations(dst []IterationSample) error {
	copy(dst, f.samples)
	return nil
}

func testOrchestrator(t *testing.T, mode CompositeMode, samples []IterationSample) (*Orchestrator, *fakeRenderer, *fractal.Viewport) {
	t.Helper()

	// A tiny surface keeps the sample buffers readable in tests.
	view := fractal.NewViewport(4, 5, fractal.Config{Mandelbrot: true})
	fake := &fakeRenderer{
		samples: make([]IterationSample, 20),
		colors:  make([]byte, 20*4),
	}
	copy(fake.samples, samples)
	for i := range fake.colors {
		fake.colors[i] = byte(i)
	}

	o, err := NewOrchestrator(fake, view, mode)
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}
	return o, fake, view
}

func escaped(counts ...uint32) []IterationSample {
	out := make([]IterationSample, len(counts))
	for i, c := range counts {
		out[i] = IterationSample{Count: c, Escaped: true}
	}
	return out
}

func TestFrameBlitSinglePass(t *testing.T) {
	o, fake, view := testOrchestrator(t, ModeBlit, escaped(1, 2, 3, 4, 5, 6, 7, 8))

	colors, err := o.Frame()
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if len(fake.passes) != 1 {
		t.Fatalf("blit frame ran %d passes, want 1", len(fake.passes))
	}
	// The single pass must carry the stale (initial zero) thresholds;
	// the updated ones land on the viewport for the next frame.
	if fake.passes[0].MaxThreshold != 0 {
		t.Errorf("first pass MaxThreshold = %d, want 0 (stale)", fake.passes[0].MaxThreshold)
	}
	if view.Thresholds == (fractal.ThresholdSet{}) {
		t.Error("Equalize did not update the viewport thresholds")
	}
	if colors[3] != 3 {
		t.Errorf("colors[3] = %d, want 3", colors[3])
	}
}

func TestFrameRerenderUsesUpdatedThresholds(t *testing.T) {
	o, fake, view := testOrchestrator(t, ModeRerender, escaped(1, 2, 3, 4, 5, 6, 7, 8))

	if _, err := o.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	if len(fake.passes) != 2 {
		t.Fatalf("rerender frame ran %d passes, want 2", len(fake.passes))
	}
	if fake.passes[0].MaxThreshold != 0 {
		t.Errorf("first pass MaxThreshold = %d, want 0 (stale)", fake.passes[0].MaxThreshold)
	}
	if got, want := fake.passes[1].MaxThreshold, view.Thresholds.Max(); got != want {
		t.Errorf("second pass MaxThreshold = %d, want %d (updated)", got, want)
	}
	if got, want := fake.passes[1].ThresholdsLow, view.Thresholds.FirstFour(); got != want {
		t.Errorf("second pass ThresholdsLow = %v, want %v", got, want)
	}
}

func TestFrameExcludesNonEscapedSamples(t *testing.T) {
	samples := []IterationSample{
		{Count: 10, Escaped: true},
		{Count: 9999, Escaped: false},
	}
	o, _, view := testOrchestrator(t, ModeBlit, samples)

	if _, err := o.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	want := fractal.ThresholdSet{10, 10, 10, 10, 10, 10, 10, 10, 10}
	if view.Thresholds != want {
		t.Errorf("thresholds = %v, want %v (derived only from the escaped sample)", view.Thresholds, want)
	}
	if got := o.Histogram().TotalCount(); got != 1 {
		t.Errorf("histogram TotalCount = %d, want 1", got)
	}
}

func TestFrameAllNonEscapedYieldsSentinel(t *testing.T) {
	samples := make([]IterationSample, 20)
	for i := range samples {
		samples[i] = IterationSample{Count: 1024, Escaped: false}
	}
	o, _, view := testOrchestrator(t, ModeBlit, samples)
	view.Thresholds = fractal.ThresholdSet{1, 2, 3, 4, 5, 6, 7, 8, 9}

	if _, err := o.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if view.Thresholds != (fractal.ThresholdSet{}) {
		t.Errorf("thresholds = %v, want all-zero sentinel", view.Thresholds)
	}
}

func TestFrameCachesUntilInvalidate(t *testing.T) {
	o, fake, _ := testOrchestrator(t, ModeBlit, escaped(1, 2, 3))

	if _, err := o.Frame(); err != nil {
		t.Fatalf("first Frame failed: %v", err)
	}
	if _, err := o.Frame(); err != nil {
		t.Fatalf("second Frame failed: %v", err)
	}
	if len(fake.passes) != 1 {
		t.Errorf("clean Frame re-rendered: %d passes, want 1", len(fake.passes))
	}

	o.Invalidate()
	if !o.Dirty() {
		t.Fatal("Dirty() = false after Invalidate")
	}
	if _, err := o.Frame(); err != nil {
		t.Fatalf("Frame after Invalidate failed: %v", err)
	}
	if len(fake.passes) != 2 {
		t.Errorf("Frame after Invalidate ran %d passes total, want 2", len(fake.passes))
	}
}

func TestPhaseSequenceEnforced(t *testing.T) {
	o, _, _ := testOrchestrator(t, ModeBlit, escaped(1))

	if err := o.Readback(); !errors.Is(err, ErrOutOfPhase) {
		t.Errorf("Readback before RenderOffscreen: err = %v, want ErrOutOfPhase", err)
	}
	if err := o.Equalize(); !errors.Is(err, ErrOutOfPhase) {
		t.Errorf("Equalize before Readback: err = %v, want ErrOutOfPhase", err)
	}
	if err := o.Composite(); !errors.Is(err, ErrOutOfPhase) {
		t.Errorf("Composite before Equalize: err = %v, want ErrOutOfPhase", err)
	}

	if err := o.RenderOffscreen(); err != nil {
		t.Fatalf("RenderOffscreen failed: %v", err)
	}
	if err := o.RenderOffscreen(); !errors.Is(err, ErrOutOfPhase) {
		t.Errorf("double RenderOffscreen: err = %v, want ErrOutOfPhase", err)
	}
}

func TestFrameRenderErrorPropagates(t *testing.T) {
	o, fake, _ := testOrchestrator(t, ModeBlit, escaped(1))
	fake.renderErr = errors.New("device lost")

	if _, err := o.Frame(); err == nil {
		t.Fatal("Frame should propagate the render error")
	}
}

func TestParseCompositeMode(t *testing.T) {
	for _, mode := range []CompositeMode{ModeBlit, ModeRerender} {
		got, err := ParseCompositeMode(mode.String())
		if err != nil {
			t.Errorf("ParseCompositeMode(%q) failed: %v", mode.String(), err)
			continue
		}
		if got != mode {
			t.Errorf("ParseCompositeMode(%q) = %v, want %v", mode.String(), got, mode)
		}
	}

	auto, err := ParseCompositeMode("auto")
	if err != nil {
		t.Fatalf("ParseCompositeMode(\"auto\") failed: %v", err)
	}
	if auto != DefaultCompositeMode() {
		t.Errorf("ParseCompositeMode(\"auto\") = %v, want platform default %v", auto, DefaultCompositeMode())
	}

	if _, err := ParseCompositeMode("copy"); err == nil {
		t.Error("ParseCompositeMode(\"copy\") should fail")
	}
}

func TestFromViewportSnapshot(t *testing.T) {
	view := fractal.NewViewport(1024, 768, fractal.Config{
		Mandelbrot: false,
		Function:   fractal.FunctionCloud,
		Scheme:     fractal.SchemeViridis,
	})
	view.Thresholds = fractal.ThresholdSet{1, 2, 3, 4, 5, 6, 7, 8, 9}

	p := FromViewport(view)

	if p.Mandelbrot != 0 {
		t.Errorf("Mandelbrot = %d, want 0 for julia mode", p.Mandelbrot)
	}
	if p.Function != fractal.FunctionCloud.Selector() {
		t.Errorf("Function = %d, want cloud selector", p.Function)
	}
	if p.Colorize != fractal.ColorizeCloud.Selector() {
		t.Errorf("Colorize = %d, want cloud colorizer (derived from function)", p.Colorize)
	}
	if p.Scheme != fractal.SchemeViridis.Selector() {
		t.Errorf("Scheme = %d, want viridis selector", p.Scheme)
	}
	if p.ThresholdsLow != [4]uint32{1, 2, 3, 4} || p.ThresholdsHigh != [4]uint32{5, 6, 7, 8} || p.MaxThreshold != 9 {
		t.Errorf("threshold split = %v / %v / %d, want [1 2 3 4] / [5 6 7 8] / 9",
			p.ThresholdsLow, p.ThresholdsHigh, p.MaxThreshold)
	}

	// Mutating the viewport after the snapshot must not affect p.
	view.ZoomIn()
	if p.XMin != -2 {
		t.Errorf("snapshot XMin changed after viewport mutation: %v", p.XMin)
	}
}
