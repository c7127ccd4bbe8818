package fractal

// Config holds the startup selections supplied once at process start.
type Config struct {
	// Mandelbrot selects Mandelbrot mode; false means Julia mode.
	Mandelbrot bool

	// Function is the Julia function variant (meaningful in Julia mode;
	// in Mandelbrot mode it only determines the iteration cap).
	Function Function

	// Scheme is the color map variant.
	Scheme ColorScheme
}

// Viewport is the mutable complex-plane window and the shading state
// attached to it. It is the single shared parameter object: input
// handlers mutate the bounds and selectors, the render orchestrator
// stores the per-frame thresholds, and the pass renderer reads all of
// it when building uniforms.
//
// All mutation happens between redraw cycles on the event-loop thread,
// so Viewport carries no synchronization.
type Viewport struct {
	// Bounds of the visible window in the complex plane.
	// Invariant: XMax > XMin and YMax > YMin.
	XMin, XMax float64
	YMin, YMax float64

	// Pixel dimensions of the fractal surface. The window is not
	// resizable, so these are fixed for the process lifetime.
	Width, Height float32

	// MaxIterations caps the escape-time loop. Re-derived whenever the
	// function selection changes.
	MaxIterations uint32

	// Mandelbrot selects the mode; false renders the Julia set of the
	// selected Function.
	Mandelbrot bool

	// Function and Scheme are the shader selectors.
	Function Function
	Scheme   ColorScheme

	// Thresholds are the current octile boundaries, recomputed by the
	// orchestrator every frame and consumed by the next composite pass.
	Thresholds ThresholdSet
}

// NewViewport constructs the viewport for a fixed-size surface from the
// startup configuration, with canonical bounds for the selected mode.
func NewViewport(width, height int, cfg Config) *Viewport {
	v := &Viewport{
		Width:         float32(width),
		Height:        float32(height),
		MaxIterations: cfg.Function.MaxIterations(),
		Mandelbrot:    cfg.Mandelbrot,
		Function:      cfg.Function,
		Scheme:        cfg.Scheme,
	}
	v.Reset(cfg.Mandelbrot)
	return v
}

// Reset restores the canonical bounds for the given mode, independent of
// the current bounds: (-2, 1, -1, 1) for Mandelbrot, (-2, 2, -2, 2) for
// Julia.
func (v *Viewport) Reset(mandelbrot bool) {
	v.XMin = -2
	if mandelbrot {
		v.XMax = 1
		v.YMin = -1
		v.YMax = 1
	} else {
		v.XMax = 2
		v.YMin = -2
		v.YMax = 2
	}
}

// Scroll shifts the window by (x, y) scroll units, where one unit is 10%
// of the currently visible span on that axis.
func (v *Viewport) Scroll(x, y float64) {
	sx := (v.XMax - v.XMin) / 10
	sy := (v.YMax - v.YMin) / 10
	v.XMin += x * sx
	v.XMax += x * sx
	v.YMin += y * sy
	v.YMax += y * sy
}

// Pan converts a raw screen-space pointer delta into scroll units.
func (v *Viewport) Pan(dx, dy float64) {
	v.Scroll(dx/100, dy/100)
}

// ZoomIn shrinks the window symmetrically by a tenth of the pre-call
// span on each side (span ×0.8).
func (v *Viewport) ZoomIn() {
	sx := (v.XMax - v.XMin) / 10
	sy := (v.YMax - v.YMin) / 10
	v.XMin += sx
	v.XMax -= sx
	v.YMin += sy
	v.YMax -= sy
}

// ZoomOut grows the window symmetrically by a tenth of the pre-call span
// on each side (span ×1.2).
//
// The step is recomputed from the span at each call, so ZoomIn followed
// by ZoomOut lands on ×0.8×1.2 = ×0.96 of the original span, not ×1.0.
// That asymmetry is deliberate viewer feel, not a rounding bug.
func (v *Viewport) ZoomOut() {
	sx := (v.XMax - v.XMin) / 10
	sy := (v.YMax - v.YMin) / 10
	v.XMin -= sx
	v.XMax += sx
	v.YMin -= sy
	v.YMax += sy
}

// SetMandelbrot switches the mode and resets the bounds to the new
// mode's canonical window.
func (v *Viewport) SetMandelbrot(mandelbrot bool) {
	v.Mandelbrot = mandelbrot
	v.Reset(mandelbrot)
}

// SetFunction selects the Julia function and re-derives the iteration
// cap for it.
func (v *Viewport) SetFunction(f Function) {
	v.Function = f
	v.MaxIterations = f.MaxIterations()
}

// SetScheme selects the color map.
func (v *Viewport) SetScheme(s ColorScheme) {
	v.Scheme = s
}
