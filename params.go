package boxblur

import (
	"github.com/expr-lang/expr"
	"github.com/pkg/errors"

	"github.com/esimov/boxblur/utils"
)

// PowerUnset marks a chroma or alpha power as unspecified, in which case it
// falls back to the luma power when the parameters are resolved.
const PowerUnset = -1

// The default blur parameters applied to the luma plane.
const (
	DefaultLumaRadius = "2"
	DefaultLumaPower  = 2
)

// Configuration errors reported before any frame is processed.
var (
	// ErrMissingLumaRadius is returned when no luma radius expression is set.
	ErrMissingLumaRadius = errors.New("luma radius expression is not set")

	// ErrInvalidRadius is returned when a resolved radius is negative or the
	// blur window exceeds the dimensions of the plane it applies to.
	ErrInvalidRadius = errors.New("invalid blur radius")
)

// FilterParam holds the blur settings of a single frame component: the
// radius of the blurring box, given as an expression over the frame
// geometry, and how many times the blur is applied.
type FilterParam struct {
	Radius string
	Power  int
}

// FilterParams configures the blur of each frame component. The luma radius
// expression is mandatory; an unset chroma or alpha radius falls back to the
// luma expression, an unset (PowerUnset) chroma or alpha power falls back to
// the luma power.
//
// Radius expressions may reference the following variables:
//
//	w, h        the input width and height
//	cw, ch      the chroma plane width and height
//	hsub, vsub  the chroma subsampling factors
type FilterParams struct {
	Luma   FilterParam
	Chroma FilterParam
	Alpha  FilterParam
}

// withDefaults fills the missing chroma and alpha parameters from luma.
func (p FilterParams) withDefaults() (FilterParams, error) {
	if p.Luma.Radius == "" {
		return p, ErrMissingLumaRadius
	}
	if p.Chroma.Radius == "" {
		p.Chroma.Radius = p.Luma.Radius
	}
	if p.Chroma.Power < 0 {
		p.Chroma.Power = p.Luma.Power
	}
	if p.Alpha.Radius == "" {
		p.Alpha.Radius = p.Luma.Radius
	}
	if p.Alpha.Power < 0 {
		p.Alpha.Power = p.Luma.Power
	}
	return p, nil
}

// geometry carries the per-frame constants the radius expressions and the
// radius validation run against.
type geometry struct {
	w, h       int
	cw, ch     int
	hsub, vsub int
}

func newGeometry(w, h int, format PixelFormat) geometry {
	d := format.desc()
	return geometry{
		w: w, h: h,
		cw: w >> d.hsub, ch: h >> d.vsub,
		hsub: d.hsub, vsub: d.vsub,
	}
}

// evalRadius evaluates a radius expression against the frame geometry. The
// expression is evaluated in floating point and the result truncated, like
// the rest of the option arithmetic.
func (g geometry) evalRadius(component, expression string) (int, error) {
	env := map[string]interface{}{
		"w":    float64(g.w),
		"h":    float64(g.h),
		"cw":   float64(g.cw),
		"ch":   float64(g.ch),
		"hsub": float64(int(1) << g.hsub),
		"vsub": float64(int(1) << g.vsub),
	}

	out, err := expr.Eval(expression, env)
	if err != nil {
		return 0, errors.Wrapf(err, "error when evaluating %s radius expression %q", component, expression)
	}

	switch v := out.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.Errorf("%s radius expression %q does not evaluate to a number", component, expression)
	}
}

// checkRadius validates a resolved radius against the plane it applies to.
// The blur window spans 2*radius+1 samples and the sliding pass reads the
// whole window around the first output sample, so the window must fit within
// both plane dimensions.
func checkRadius(component string, radius, w, h int) error {
	if radius < 0 || 2*radius >= utils.Min(w, h) {
		return errors.Wrapf(ErrInvalidRadius,
			"invalid %s radius value %d, must be >= 0 and <= %d", component, radius, (utils.Min(w, h)-1)/2)
	}
	return nil
}

// resolve evaluates the radius expression of every component against the
// frame geometry and validates the results: luma and alpha against the full
// frame size, chroma against the subsampled chroma size. It returns one
// (radius, power) pair per plane, the two chroma planes always identical.
func (p FilterParams) resolve(g geometry) (radius, power [maxPlanes]int, err error) {
	lr, err := g.evalRadius("luma", p.Luma.Radius)
	if err != nil {
		return radius, power, err
	}
	cr, err := g.evalRadius("chroma", p.Chroma.Radius)
	if err != nil {
		return radius, power, err
	}
	ar, err := g.evalRadius("alpha", p.Alpha.Radius)
	if err != nil {
		return radius, power, err
	}

	if err = checkRadius("luma", lr, g.w, g.h); err != nil {
		return radius, power, err
	}
	if err = checkRadius("chroma", cr, g.cw, g.ch); err != nil {
		return radius, power, err
	}
	if err = checkRadius("alpha", ar, g.w, g.h); err != nil {
		return radius, power, err
	}

	radius[planeY] = lr
	radius[planeU], radius[planeV] = cr, cr
	radius[planeA] = ar

	power[planeY] = p.Luma.Power
	power[planeU], power[planeV] = p.Chroma.Power, p.Chroma.Power
	power[planeA] = p.Alpha.Power

	return radius, power, nil
}
