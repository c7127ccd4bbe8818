package fractal

import "fmt"

// Function selects the iterated function for Julia mode. In Mandelbrot
// mode the function selector is ignored by the shader, but it still
// determines the iteration cap.
//
// Selector values are stable shader table indices; the shader switches
// on them instead of the stringly-typed subroutine dispatch a GL program
// would use.
type Function uint32

const (
	// FunctionDefault iterates the classic z^2 + c.
	FunctionDefault Function = iota

	// FunctionCos iterates cos(z) + c.
	FunctionCos

	// FunctionSin iterates sin(z) + c.
	FunctionSin

	// FunctionSpider iterates z^2 + c with c drifting toward z each step.
	FunctionSpider

	// FunctionCloud iterates exp(z^3) - 0.621, colored by the cloud colorizer.
	FunctionCloud

	// FunctionSnowflakes iterates z^2 + c for a constant producing
	// snowflake-like orbits. Uses a much lower iteration cap: at the
	// default cap the image saturates to a single band.
	FunctionSnowflakes

	functionCount
)

// String returns the function name as accepted by ParseFunction.
func (f Function) String() string {
	switch f {
	case FunctionDefault:
		return "default"
	case FunctionCos:
		return "cos"
	case FunctionSin:
		return "sin"
	case FunctionSpider:
		return "spider"
	case FunctionCloud:
		return "cloud"
	case FunctionSnowflakes:
		return "snowflakes"
	default:
		return fmt.Sprintf("Function(%d)", uint32(f))
	}
}

// Selector returns the shader table index for f.
func (f Function) Selector() uint32 { return uint32(f) }

// MaxIterations returns the iteration cap appropriate for f.
func (f Function) MaxIterations() uint32 {
	if f == FunctionSnowflakes {
		return 27
	}
	return 1024
}

// Colorizer returns the colorize stage derived from f. The derivation is
// fixed: the cloud and snowflake functions produce value distributions
// the default octile colorizer renders poorly.
func (f Function) Colorizer() Colorizer {
	switch f {
	case FunctionCloud:
		return ColorizeCloud
	case FunctionSnowflakes:
		return ColorizeSnowflakes
	default:
		return ColorizeDefault
	}
}

// Functions returns all selectable functions in display order.
func Functions() []Function {
	fs := make([]Function, functionCount)
	for i := range fs {
		fs[i] = Function(i)
	}
	return fs
}

// ParseFunction maps a name (as printed by Function.String) back to its
// Function. Returns an error for unknown names.
func ParseFunction(name string) (Function, error) {
	for _, f := range Functions() {
		if f.String() == name {
			return f, nil
		}
	}
	return FunctionDefault, fmt.Errorf("fractal: unknown function %q", name)
}

// Colorizer selects the final colorize stage in the shader. It is never
// chosen directly; it is derived from the Function (see Function.Colorizer).
type Colorizer uint32

const (
	// ColorizeDefault maps the iteration count through the octile
	// thresholds into one of eight color bins.
	ColorizeDefault Colorizer = iota

	// ColorizeCloud shades by smoothed escape magnitude.
	ColorizeCloud

	// ColorizeSnowflakes shades by normalized iteration count directly.
	ColorizeSnowflakes
)

// Selector returns the shader table index for c.
func (c Colorizer) Selector() uint32 { return uint32(c) }

// ColorScheme selects the color map applied inside the colorize stage.
type ColorScheme uint32

const (
	// SchemeTurbo is the Turbo rainbow map (default).
	SchemeTurbo ColorScheme = iota

	// SchemeInferno is the Inferno perceptual map.
	SchemeInferno

	// SchemeViridis is the Viridis perceptual map.
	SchemeViridis

	// SchemePlasma is the Plasma perceptual map.
	SchemePlasma

	// SchemeGrayscale maps bins to linear gray levels.
	SchemeGrayscale

	schemeCount
)

// String returns the scheme name as accepted by ParseColorScheme.
func (s ColorScheme) String() string {
	switch s {
	case SchemeTurbo:
		return "turbo"
	case SchemeInferno:
		return "inferno"
	case SchemeViridis:
		return "viridis"
	case SchemePlasma:
		return "plasma"
	case SchemeGrayscale:
		return "grayscale"
	default:
		return fmt.Sprintf("ColorScheme(%d)", uint32(s))
	}
}

// Selector returns the shader table index for s.
func (s ColorScheme) Selector() uint32 { return uint32(s) }

// ColorSchemes returns all selectable schemes in display order.
func ColorSchemes() []ColorScheme {
	ss := make([]ColorScheme, schemeCount)
	for i := range ss {
		ss[i] = ColorScheme(i)
	}
	return ss
}

// ParseColorScheme maps a name (as printed by ColorScheme.String) back to
// its ColorScheme. Returns an error for unknown names.
func ParseColorScheme(name string) (ColorScheme, error) {
	for _, s := range ColorSchemes() {
		if s.String() == name {
			return s, nil
		}
	}
	return SchemeTurbo, fmt.Errorf("fractal: unknown color scheme %q", name)
}
