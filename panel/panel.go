// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package panel draws the diagnostic side strip: the current mode and
// selector rows, the frame's octile thresholds, and a bar plot of the
// iteration-count histogram. Clicking a selector row cycles it.
package panel

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/render"
)

// Width is the fixed pixel width of the panel strip.
const Width = 280

// Panel layout. Rows are full-width click targets.
const (
	margin    = 12.0
	rowHeight = 26.0
	rowsTop   = 48.0

	plotTop    = 220.0
	plotBottom = 16.0
)

// Action identifies the viewport mutation a panel click requests.
type Action int

const (
	ActionNone Action = iota
	ActionToggleMode
	ActionCycleFunction
	ActionCycleScheme
)

// Panel renders the diagnostic strip and resolves clicks on it. The
// composite mode is fixed at startup and shown for reference only.
type Panel struct {
	view *fractal.Viewport
	face text.Face
	mode render.CompositeMode

	height int
}

// New creates a panel for view, height pixels tall. face may be nil, in
// which case text rows are skipped and only the histogram plot is drawn
// (clicks still resolve by row position).
func New(view *fractal.Viewport, face text.Face, mode render.CompositeMode, height int) *Panel {
	return &Panel{view: view, face: face, mode: mode, height: height}
}

// Draw renders the panel into cc, which must be Width wide and the
// panel's height tall. hist is the previous frame's escaped-sample
// histogram; an empty histogram draws an empty plot.
func (p *Panel) Draw(cc *gg.Context, hist *fractal.Histogram) {
	cc.SetRGB(0.09, 0.09, 0.12)
	cc.DrawRectangle(0, 0, Width, float64(p.height))
	cc.Fill()

	if p.face != nil {
		cc.SetFont(p.face)
		cc.SetRGB(0.95, 0.95, 0.95)
		cc.DrawString(p.title(), margin, 30)

		rows := []string{
			fmt.Sprintf("mode: %s", p.modeName()),
			fmt.Sprintf("function: %s", p.view.Function),
			fmt.Sprintf("scheme: %s", p.view.Scheme),
			fmt.Sprintf("composite: %s", p.mode),
		}
		cc.SetRGB(0.8, 0.8, 0.85)
		for i, row := range rows {
			cc.DrawString(row, margin, rowsTop+float64(i)*rowHeight+18)
		}

		t := p.view.Thresholds
		cc.SetRGB(0.6, 0.6, 0.7)
		cc.DrawString(fmt.Sprintf("octiles %v", t.FirstFour()), margin, rowsTop+4*rowHeight+18)
		cc.DrawString(fmt.Sprintf("        %v max %d", t.SecondFour(), t.Max()), margin, rowsTop+5*rowHeight+18)
	}

	p.drawHistogram(cc, hist)
}

func (p *Panel) title() string {
	if p.view.Mandelbrot {
		return "mandelbrot"
	}
	return fmt.Sprintf("julia / %s", p.view.Function)
}

func (p *Panel) modeName() string {
	if p.view.Mandelbrot {
		return "mandelbrot"
	}
	return "julia"
}

// drawHistogram plots per-value counts as vertical bars across the
// recorded value range, tallest bar normalized to the plot height.
func (p *Panel) drawHistogram(cc *gg.Context, hist *fractal.Histogram) {
	plotW := float64(Width) - 2*margin
	plotH := float64(p.height) - plotTop - plotBottom
	if plotH <= 0 {
		return
	}

	cc.SetRGB(0.05, 0.05, 0.07)
	cc.DrawRectangle(margin, plotTop, plotW, plotH)
	cc.Fill()

	if hist == nil || hist.TotalCount() == 0 {
		return
	}

	max := hist.Max()
	cols := int(plotW)
	counts := make([]int64, cols)
	var peak int64

	// Fold the value range onto plot columns, keeping the largest count
	// per column so narrow spikes stay visible.
	for col := range counts {
		lo := uint32(uint64(col) * uint64(max+1) / uint64(cols))
		hi := uint32(uint64(col+1) * uint64(max+1) / uint64(cols))
		if hi <= lo {
			hi = lo + 1
		}
		for v := lo; v < hi; v++ {
			if c := hist.CountAt(v); c > counts[col] {
				counts[col] = c
			}
		}
		if counts[col] > peak {
			peak = counts[col]
		}
	}
	if peak == 0 {
		return
	}

	cc.SetRGB(0.35, 0.65, 0.95)
	for col, c := range counts {
		if c == 0 {
			continue
		}
		h := plotH * float64(c) / float64(peak)
		cc.DrawRectangle(margin+float64(col), plotTop+plotH-h, 1, h)
	}
	cc.Fill()
}

// HitTest maps a click at panel-local coordinates to the action its row
// requests. Clicks outside the selector rows return ActionNone.
func (p *Panel) HitTest(x, y float64) Action {
	if x < 0 || x >= Width || y < rowsTop {
		return ActionNone
	}
	switch row := int((y - rowsTop) / rowHeight); row {
	case 0:
		return ActionToggleMode
	case 1:
		return ActionCycleFunction
	case 2:
		return ActionCycleScheme
	default:
		return ActionNone
	}
}

// Apply performs the viewport mutation for a, reporting whether the
// viewport changed.
func (p *Panel) Apply(a Action) bool {
	switch a {
	case ActionToggleMode:
		p.view.SetMandelbrot(!p.view.Mandelbrot)
	case ActionCycleFunction:
		fs := fractal.Functions()
		p.view.SetFunction(fs[(int(p.view.Function)+1)%len(fs)])
	case ActionCycleScheme:
		ss := fractal.ColorSchemes()
		p.view.SetScheme(ss[(int(p.view.Scheme)+1)%len(ss)])
	default:
		return false
	}
	return true
}
