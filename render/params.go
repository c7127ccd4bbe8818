// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives the per-frame feedback loop between the GPU
// fractal pass and the host-side histogram equalization: render
// offscreen, read back iteration counts, derive octile thresholds, then
// composite to the visible surface.
package render

import (
	"github.com/gogpu/fractal"
)

// Params is the complete per-pass parameter set handed to the pass
// renderer. It is a value snapshot of the Viewport taken at dispatch
// time, so a pass is unaffected by input-handler mutations that land
// while it is in flight.
//
// Bounds are narrowed to float32 here: WGSL has no 64-bit floats, so
// the shader works in single precision. The Viewport keeps float64
// bounds so repeated pan/zoom steps do not accumulate error on the
// host side.
type Params struct {
	// XMin, XMax, YMin, YMax are the complex-plane window bounds.
	XMin, XMax float32
	YMin, YMax float32

	// Width, Height are the surface dimensions in pixels.
	Width, Height float32

	// MaxIterations caps the escape-time loop.
	MaxIterations uint32

	// Mandelbrot is 1 for Mandelbrot mode, 0 for Julia.
	Mandelbrot uint32

	// ThresholdsLow and ThresholdsHigh are the octile boundaries
	// T[0..3] and T[4..7]; MaxThreshold is T[8].
	ThresholdsLow  [4]uint32
	ThresholdsHigh [4]uint32
	MaxThreshold   uint32

	// Function, Colorize and Scheme are the shader selector indices.
	Function uint32
	Colorize uint32
	Scheme   uint32
}

// FromViewport snapshots v into a Params value. The colorize selector
// is derived from the function selection, never chosen independently.
func FromViewport(v *fractal.Viewport) Params {
	var mandelbrot uint32
	if v.Mandelbrot {
		mandelbrot = 1
	}
	return Params{
		XMin:           float32(v.XMin),
		XMax:           float32(v.XMax),
		YMin:           float32(v.YMin),
		YMax:           float32(v.YMax),
		Width:          v.Width,
		Height:         v.Height,
		MaxIterations:  v.MaxIterations,
		Mandelbrot:     mandelbrot,
		ThresholdsLow:  v.Thresholds.FirstFour(),
		ThresholdsHigh: v.Thresholds.SecondFour(),
		MaxThreshold:   v.Thresholds.Max(),
		Function:       v.Function.Selector(),
		Colorize:       v.Function.Colorizer().Selector(),
		Scheme:         v.Scheme.Selector(),
	}
}

// IterationSample is one pixel's raw escape-time result: the iteration
// count reached and whether the orbit escaped before the cap. Samples
// that did not escape are excluded from the histogram.
type IterationSample struct {
	Count   uint32
	Escaped bool
}
