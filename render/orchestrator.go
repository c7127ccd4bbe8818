// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gogpu/fractal"
)

// histogramSigfigs is the value precision of the per-frame histogram.
// Three significant digits record every count up to 2047 exactly, which
// covers the 1024-iteration cap. Raise this if the cap grows past the
// exact range and octile resolution degrades.
const histogramSigfigs = 3

// ErrOutOfPhase reports a feedback-loop operation invoked outside its
// place in the render/readback/equalize/composite sequence.
var ErrOutOfPhase = errors.New("render: operation out of phase")

// PassRenderer is the GPU collaborator driven by the Orchestrator. One
// Render call produces both per-pixel outputs for the frame; the two
// Read methods expose them after the pass completes.
//
// Implementations live in internal/gpu. Tests substitute an in-memory
// fake.
type PassRenderer interface {
	// Render runs one full fractal pass with the given parameters,
	// blocking until the GPU work completes.
	Render(p *Params) error

	// ReadColors copies the RGBA pixels of the last Render into dst,
	// which must hold width*height*4 bytes.
	ReadColors(dst []byte) error

	// ReadIterations copies the raw escape-time results of the last
	// Render into dst, which must hold width*height samples.
	ReadIterations(dst []IterationSample) error
}

// CompositeMode selects how the final visible frame is produced after
// equalization.
type CompositeMode int

const (
	// ModeRerender runs the fractal pass a second time with the frame's
	// updated thresholds. One extra full pass per frame, but the visible
	// colors always match the thresholds derived from the same frame.
	ModeRerender CompositeMode = iota

	// ModeBlit presents the first pass's colors directly. Those were
	// shaded with the previous frame's thresholds, so coloring lags the
	// equalization by one frame; interactively the lag is invisible and
	// the frame costs half as much GPU work.
	ModeBlit
)

// String returns the mode name as accepted by ParseCompositeMode.
func (m CompositeMode) String() string {
	switch m {
	case ModeRerender:
		return "rerender"
	case ModeBlit:
		return "blit"
	default:
		return fmt.Sprintf("CompositeMode(%d)", int(m))
	}
}

// DefaultCompositeMode returns the preferred mode for the current
// platform: the cheap single-pass path on Windows, the re-render path
// elsewhere, where driver copy behavior has proven less reliable.
func DefaultCompositeMode() CompositeMode {
	if runtime.GOOS == "windows" {
		return ModeBlit
	}
	return ModeRerender
}

// ParseCompositeMode maps a mode name to its CompositeMode. The name
// "auto" selects the platform default.
func ParseCompositeMode(name string) (CompositeMode, error) {
	switch name {
	case "rerender":
		return ModeRerender, nil
	case "blit":
		return ModeBlit, nil
	case "auto":
		return DefaultCompositeMode(), nil
	}
	return ModeRerender, fmt.Errorf("render: unknown composite mode %q", name)
}

// phase tracks the Orchestrator's position in the per-frame sequence.
type phase int

const (
	phaseIdle phase = iota
	phaseRendered
	phaseSampled
	phaseEqualized
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseRendered:
		return "rendered"
	case phaseSampled:
		return "sampled"
	case phaseEqualized:
		return "equalized"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Orchestrator runs the per-frame feedback loop as an explicit phase
// sequence: RenderOffscreen, Readback, Equalize, Composite. Each phase
// is a separate method so the host-side phases can be exercised without
// a GPU; Frame drives a complete cycle.
//
// The Orchestrator mutates the Viewport's thresholds during Equalize
// and reads the rest of the Viewport when building pass parameters. All
// calls happen on the event-loop thread.
type Orchestrator struct {
	renderer PassRenderer
	view     *fractal.Viewport
	hist     *fractal.Histogram
	mode     CompositeMode

	phase phase
	dirty bool

	// samples and colors are reused across frames; the surface size is
	// fixed, so they are allocated once.
	samples []IterationSample
	colors  []byte
}

// NewOrchestrator creates an orchestrator for the given pass renderer
// and viewport. The first Frame call always renders.
func NewOrchestrator(r PassRenderer, view *fractal.Viewport, mode CompositeMode) (*Orchestrator, error) {
	hist, err := fractal.NewHistogram(histogramSigfigs)
	if err != nil {
		return nil, err
	}
	pixels := int(view.Width) * int(view.Height)
	return &Orchestrator{
		renderer: r,
		view:     view,
		hist:     hist,
		mode:     mode,
		samples:  make([]IterationSample, pixels),
		colors:   make([]byte, pixels*4),
		dirty:    true,
	}, nil
}

// Invalidate marks the viewport as changed so the next Frame renders
// instead of returning the cached pixels.
func (o *Orchestrator) Invalidate() { o.dirty = true }

// Dirty reports whether the next Frame will render.
func (o *Orchestrator) Dirty() bool { return o.dirty }

// Mode returns the composite mode in effect.
func (o *Orchestrator) Mode() CompositeMode { return o.mode }

// Histogram exposes the previous frame's escaped-sample histogram for
// diagnostic display. Valid after Equalize until the next Readback.
func (o *Orchestrator) Histogram() *fractal.Histogram { return o.hist }

// Colors returns the most recent composited RGBA pixels. The slice is
// reused across frames; callers must not retain it past the next Frame.
func (o *Orchestrator) Colors() []byte { return o.colors }

// RenderOffscreen runs the first fractal pass of the frame, shading
// with the thresholds carried over from the previous frame.
func (o *Orchestrator) RenderOffscreen() error {
	if o.phase != phaseIdle {
		return fmt.Errorf("%w: RenderOffscreen in phase %v", ErrOutOfPhase, o.phase)
	}
	p := FromViewport(o.view)
	if err := o.renderer.Render(&p); err != nil {
		return fmt.Errorf("render: offscreen pass: %w", err)
	}
	o.phase = phaseRendered
	return nil
}

// Readback copies the pass's raw iteration results to the host.
func (o *Orchestrator) Readback() error {
	if o.phase != phaseRendered {
		return fmt.Errorf("%w: Readback in phase %v", ErrOutOfPhase, o.phase)
	}
	if err := o.renderer.ReadIterations(o.samples); err != nil {
		return fmt.Errorf("render: iteration readback: %w", err)
	}
	o.phase = phaseSampled
	return nil
}

// Equalize rebuilds the histogram from the escaped samples and stores
// the derived octile thresholds on the viewport. Non-escaped samples
// never enter the histogram; a frame with no escapes yields the all-zero
// threshold sentinel.
func (o *Orchestrator) Equalize() error {
	if o.phase != phaseSampled {
		return fmt.Errorf("%w: Equalize in phase %v", ErrOutOfPhase, o.phase)
	}
	o.hist.Reset()
	for _, s := range o.samples {
		if s.Escaped {
			o.hist.Record(s.Count)
		}
	}
	o.view.Thresholds = fractal.Octiles(o.hist)

	slogger().Debug("equalized frame",
		"samples", o.hist.TotalCount(),
		"max", o.hist.Max(),
		"thresholds", o.view.Thresholds)

	o.phase = phaseEqualized
	return nil
}

// Composite produces the frame's visible pixels. In ModeBlit the first
// pass's colors are presented as-is; in ModeRerender the fractal pass
// runs again with the thresholds Equalize just stored.
func (o *Orchestrator) Composite() error {
	if o.phase != phaseEqualized {
		return fmt.Errorf("%w: Composite in phase %v", ErrOutOfPhase, o.phase)
	}
	if o.mode == ModeRerender {
		p := FromViewport(o.view)
		if err := o.renderer.Render(&p); err != nil {
			return fmt.Errorf("render: composite pass: %w", err)
		}
	}
	if err := o.renderer.ReadColors(o.colors); err != nil {
		return fmt.Errorf("render: color readback: %w", err)
	}
	o.phase = phaseIdle
	o.dirty = false
	return nil
}

// Frame runs one complete feedback cycle and returns the composited
// RGBA pixels. If the viewport has not changed since the last Frame,
// the cached pixels are returned without touching the GPU.
func (o *Orchestrator) Frame() ([]byte, error) {
	if !o.dirty && o.phase == phaseIdle {
		return o.colors, nil
	}
	for _, step := range []func() error{
		o.RenderOffscreen,
		o.Readback,
		o.Equalize,
		o.Composite,
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return o.colors, nil
}
