// Package fractal implements an interactive Mandelbrot/Julia viewer with
// adaptive histogram-equalized coloring, built on the GoGPU ecosystem.
//
// # Overview
//
// Every frame the viewer renders the escape-time iteration counts on the
// GPU, reads them back, computes the octiles (8-quantiles) of the escaped
// samples, and feeds the resulting thresholds into the composite pass.
// Color-bin boundaries therefore track the actual iteration distribution
// at the current zoom instead of a fixed palette mapping, so contrast
// stays high at any depth.
//
// # Architecture
//
// The root package holds the GPU-free core of the feedback loop:
//   - Viewport: the complex-plane window and its pan/zoom/reset transforms
//   - Histogram: reduced-precision frequency table over iteration counts
//   - Octiles: quantile boundary extraction with degeneracy handling
//   - Function, ColorScheme: closed selector types for the shader
//
// Supporting packages:
//   - render: the per-frame render → readback → equalize → composite
//     state machine, against a pluggable pass renderer
//   - internal/gpu: the wgpu/hal compute implementation of that renderer
//   - input: raw pointer/wheel/key events → viewport mutations
//   - panel: the live parameter/histogram control strip, drawn with gg
//   - cmd/fractalview: window and event-loop wiring via gogpu
//
// Everything below cmd runs on the single event-loop thread; no
// synchronization is needed around the Viewport.
package fractal
