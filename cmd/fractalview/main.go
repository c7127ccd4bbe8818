// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// fractalview is an interactive Mandelbrot / Julia set viewer.
//
// The window is split into a fixed 1024x768 fractal surface and a side
// panel showing the current selectors, octile thresholds, and the
// iteration-count histogram the adaptive coloring derives from. Drag to
// pan, scroll or -/= to zoom, space to reset, m/f/c (or panel clicks)
// to switch mode, function, and color scheme.
//
// Usage:
//
//	fractalview [-mandelbrot] [-function name] [-scheme name] [-composite mode] [-v]
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gg"
	_ "github.com/gogpu/gg/gpu" // Register GPU accelerator for panel rendering
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/input"
	fractalgpu "github.com/gogpu/fractal/internal/gpu"
	"github.com/gogpu/fractal/panel"
	"github.com/gogpu/fractal/render"
)

const (
	fractalWidth  = 1024
	fractalHeight = 768

	windowWidth  = fractalWidth + panel.Width
	windowHeight = fractalHeight
)

func main() {
	mandelbrot := flag.Bool("mandelbrot", false, "render the Mandelbrot set instead of a Julia set")
	functionName := flag.String("function", "default", "julia function: default, cos, sin, spider, cloud, snowflakes")
	schemeName := flag.String("scheme", "turbo", "color scheme: turbo, inferno, viridis, plasma, grayscale")
	compositeName := flag.String("composite", "auto", "composite path: blit, rerender, or auto")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		fractal.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	function, err := fractal.ParseFunction(*functionName)
	if err != nil {
		log.Fatal(err)
	}
	scheme, err := fractal.ParseColorScheme(*schemeName)
	if err != nil {
		log.Fatal(err)
	}
	mode, err := render.ParseCompositeMode(*compositeName)
	if err != nil {
		log.Fatal(err)
	}

	view := fractal.NewViewport(fractalWidth, fractalHeight, fractal.Config{
		Mandelbrot: *mandelbrot,
		Function:   function,
		Scheme:     scheme,
	})

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle("Mandelbrot / Julia set viewer").
		WithSize(windowWidth, windowHeight).
		WithContinuousRender(false))

	pnl := panel.New(view, loadFont(), mode, windowHeight)

	var (
		canvas     *ggcanvas.Canvas
		dispatcher *fractalgpu.Dispatcher
		orch       *render.Orchestrator
		animToken  *gogpu.AnimationToken
		surface    *image.RGBA
	)

	mapper := input.NewMapper(view, func() {
		if orch != nil {
			orch.Invalidate()
		}
	})

	app.OnDraw(func(dc *gogpu.Context) {
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}

		// First frame: the GPU context exists now, so bring up the
		// fractal pipeline on the window's shared device. Failures here
		// are fatal; there is no session without a pipeline.
		if canvas == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}

			dispatcher, err = fractalgpu.NewDispatcherFromProvider(provider, fractalWidth, fractalHeight)
			if err != nil {
				log.Fatalf("Failed to attach fractal pipeline: %v", err)
			}
			if err := dispatcher.Init(); err != nil {
				log.Fatalf("Failed to initialize fractal pipeline: %v", err)
			}

			orch, err = render.NewOrchestrator(dispatcher, view, mode)
			if err != nil {
				log.Fatalf("Failed to create orchestrator: %v", err)
			}

			canvas, err = ggcanvas.New(provider, w, h)
			if err != nil {
				log.Fatalf("Failed to create canvas: %v", err)
			}

			surface = image.NewRGBA(image.Rect(0, 0, fractalWidth, fractalHeight))
			animToken = app.StartAnimation()
			log.Printf("Backend: %s, composite: %s", dc.Backend(), mode)
		}

		rendered := orch.Dirty()
		colors, err := orch.Frame()
		if err != nil {
			// A failed GPU submission mid-session means unrecoverable
			// driver state; frame-level retry is pointless.
			log.Fatalf("Rendering failed: %v", err)
		}
		if rendered {
			copy(surface.Pix, colors)
		}

		fractalImg := gg.ImageBufFromImage(surface)
		if err := canvas.Draw(func(cc *gg.Context) {
			cc.DrawImage(fractalImg, 0, 0)
			cc.Push()
			cc.Translate(fractalWidth, 0)
			pnl.Draw(cc, orch.Histogram())
			cc.Pop()
		}); err != nil {
			log.Printf("Draw error: %v", err)
		}

		sv := dc.SurfaceView()
		sw, sh := dc.SurfaceSize()
		if err := canvas.RenderDirect(sv, sw, sh); err != nil {
			log.Printf("RenderDirect error: %v", err)
		}
	})

	app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		mapper.Key(key)
	})

	// Pointer events route by region: the fractal surface pans and
	// zooms, the panel strip resolves clicks to selector changes. The
	// event source advertises pointer support through an optional
	// interface; keyboard-only operation works without it.
	type pointerSource interface {
		OnMouseButton(fn func(button int, pressed bool, x, y float64))
		OnMouseMove(fn func(x, y float64))
		OnScroll(fn func(dx, dy float64))
	}
	if ps, ok := any(app.EventSource()).(pointerSource); ok {
		ps.OnMouseButton(func(button int, pressed bool, x, y float64) {
			if button != 0 {
				return
			}
			if x >= fractalWidth {
				if pressed {
					if pnl.Apply(pnl.HitTest(x-fractalWidth, y)) && orch != nil {
						orch.Invalidate()
					}
				}
				return
			}
			mapper.MouseButton(pressed, x, y)
		})
		ps.OnMouseMove(mapper.MouseMove)
		ps.OnScroll(func(_, dy float64) {
			mapper.Scroll(dy)
		})
	} else {
		log.Print("Pointer events unavailable; keyboard controls only")
	}

	app.OnClose(func() {
		if animToken != nil {
			animToken.Stop()
		}
		if dispatcher != nil {
			dispatcher.Close()
		}
		gg.CloseAccelerator()
	})

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}

// loadFont finds a system font for the panel text. Returns nil if no
// font is available; the panel then draws without text rows.
func loadFont() text.Face {
	candidates := []string{
		// Windows
		"C:\\Windows\\Fonts\\segoeui.ttf",
		"C:\\Windows\\Fonts\\arial.ttf",
		// macOS
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"/System/Library/Fonts/Monaco.ttf",
		// Linux
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		source, err := text.NewFontSourceFromFile(path)
		if err != nil {
			continue
		}
		return source.Face(14)
	}
	fmt.Fprintln(os.Stderr, "no system font found; panel text disabled")
	return nil
}
