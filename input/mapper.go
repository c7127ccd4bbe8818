// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package input translates decoded window events into viewport
// mutations. The mapper owns the pointer drag state; everything else is
// stateless dispatch onto the shared Viewport.
package input

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fractal"
)

// Mapper applies pointer and keyboard events to a Viewport and reports
// every mutation through the invalidate callback so the host schedules
// a redraw. All methods run on the event-loop thread.
type Mapper struct {
	view       *fractal.Viewport
	invalidate func()

	dragging     bool
	lastX, lastY float64
}

// NewMapper creates a mapper driving view. invalidate is called after
// every viewport mutation; it must not be nil.
func NewMapper(view *fractal.Viewport, invalidate func()) *Mapper {
	return &Mapper{view: view, invalidate: invalidate}
}

// MouseButton records the left-button state. A press anchors the drag
// at (x, y); a release ends it. The press itself mutates nothing.
func (m *Mapper) MouseButton(pressed bool, x, y float64) {
	m.dragging = pressed
	if pressed {
		m.lastX, m.lastY = x, y
	}
}

// MouseMove pans the viewport while the left button is held: dragging
// the plane under the cursor, so pointer-right moves the window left.
// The vertical axis flips because screen y grows downward.
func (m *Mapper) MouseMove(x, y float64) {
	if !m.dragging {
		return
	}
	m.view.Pan(m.lastX-x, y-m.lastY)
	m.lastX, m.lastY = x, y
	m.invalidate()
}

// Scroll zooms on wheel motion: negative y zooms out, positive zooms
// in. A zero delta is ignored.
func (m *Mapper) Scroll(dy float64) {
	switch {
	case dy < 0:
		m.view.ZoomOut()
	case dy > 0:
		m.view.ZoomIn()
	default:
		return
	}
	m.invalidate()
}

// Key dispatches a key press. Unbound keys are ignored.
//
//	-, =        zoom out / in
//	space       reset bounds for the current mode
//	arrows      scroll one unit on the respective axis
//	m           toggle Mandelbrot / Julia mode
//	f           cycle the Julia function
//	c           cycle the color scheme
func (m *Mapper) Key(key gpucontext.Key) {
	switch key {
	case gpucontext.KeyMinus:
		m.view.ZoomOut()
	case gpucontext.KeyEqual:
		m.view.ZoomIn()
	case gpucontext.KeySpace:
		m.view.Reset(m.view.Mandelbrot)
	case gpucontext.KeyLeft:
		m.view.Scroll(-1, 0)
	case gpucontext.KeyRight:
		m.view.Scroll(1, 0)
	case gpucontext.KeyUp:
		m.view.Scroll(0, -1)
	case gpucontext.KeyDown:
		m.view.Scroll(0, 1)
	case gpucontext.KeyM:
		m.view.SetMandelbrot(!m.view.Mandelbrot)
	case gpucontext.KeyF:
		m.view.SetFunction(nextFunction(m.view.Function))
	case gpucontext.KeyC:
		m.view.SetScheme(nextScheme(m.view.Scheme))
	default:
		return
	}
	m.invalidate()
}

func nextFunction(f fractal.Function) fractal.Function {
	fs := fractal.Functions()
	return fs[(int(f)+1)%len(fs)]
}

func nextScheme(s fractal.ColorScheme) fractal.ColorScheme {
	ss := fractal.ColorSchemes()
	return ss[(int(s)+1)%len(ss)]
}
