package peakfit

import (
	"math"
)

// Param is one named fit parameter. Min and Max default to unbounded
// (±Inf). A Param with Vary=false, or with a non-empty Expr, is held fixed
// at Value during fitting; Expr itself is carried as caller metadata and is
// never evaluated here.
type Param struct {
	Name   string
	Value  float64
	Stderr float64
	Min    float64
	Max    float64
	Vary   bool
	Expr   string
}

// NewParam returns an unbounded, varying parameter with the given value.
func NewParam(name string, value float64) Param {
	return Param{
		Name:   name,
		Value:  value,
		Stderr: math.NaN(),
		Min:    math.Inf(-1),
		Max:    math.Inf(1),
		Vary:   true,
	}
}

// free reports whether the parameter participates in optimization.
func (p Param) free() bool {
	return p.Vary && p.Expr == ""
}

// Params maps prefix-qualified parameter names to parameters. A Params is
// treated as an immutable snapshot: every fit produces a fresh set, and
// helpers return copies rather than mutating in place.
type Params map[string]Param

// Clone returns a copy of the parameter set.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Merge returns a new set containing p overlaid with other.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	for k, v := range other {
		out[k] = v
	}

	return out
}

// Value returns the value of the named parameter, or NaN when missing.
// The NaN fallback lets downstream grids propagate gaps instead of failing.
func (p Params) Value(name string) float64 {
	if param, ok := p[name]; ok {
		return param.Value
	}

	return math.NaN()
}

// Stderr returns the standard error of the named parameter, or NaN when
// missing.
func (p Params) Stderr(name string) float64 {
	if param, ok := p[name]; ok {
		return param.Stderr
	}

	return math.NaN()
}

// Hint describes a caller-supplied constraint on one parameter: an initial
// value and optional bounds. Nil fields leave the guessed setting alone.
type Hint struct {
	Value *float64
	Min   *float64
	Max   *float64
	Vary  *bool
}

// HintValue is shorthand for a Hint that only sets the initial value.
func HintValue(v float64) Hint {
	return Hint{Value: &v}
}

// HintWindow is shorthand for a Hint constraining a parameter to
// value ± halfWidth.
func HintWindow(value, halfWidth float64) Hint {
	lo, hi := value-halfWidth, value+halfWidth
	return Hint{Value: &value, Min: &lo, Max: &hi}
}

// applyHints overlays hints onto a parameter snapshot, returning a new set.
// Hint keys are full prefix-qualified names; unknown names are added as
// fresh parameters so that fixed caller values survive into the fit.
func applyHints(base Params, hints map[string]Hint) Params {
	if len(hints) == 0 {
		return base.Clone()
	}

	out := base.Clone()
	for name, h := range hints {
		param, ok := out[name]
		if !ok {
			param = NewParam(name, 0)
		}
		if h.Value != nil {
			param.Value = *h.Value
		}
		if h.Min != nil {
			param.Min = *h.Min
		}
		if h.Max != nil {
			param.Max = *h.Max
		}
		if h.Vary != nil {
			param.Vary = *h.Vary
		}
		out[name] = param
	}

	return out
}

// Bounded parameters are mapped onto an unconstrained internal variable with
// the MINUIT sine transforms, so the solver itself never sees the bounds.

// toInternal maps an external (possibly bounded) value to the internal
// unconstrained variable.
func toInternal(p Param) float64 {
	v := p.Value
	hasMin := !math.IsInf(p.Min, -1)
	hasMax := !math.IsInf(p.Max, 1)

	switch {
	case hasMin && hasMax:
		span := p.Max - p.Min
		if span <= 0 {
			return 0
		}
		u := 2*(v-p.Min)/span - 1
		u = math.Max(-1, math.Min(1, u))
		return math.Asin(u)
	case hasMin:
		if v < p.Min {
			v = p.Min
		}
		return math.Sqrt((v-p.Min+1)*(v-p.Min+1) - 1)
	case hasMax:
		if v > p.Max {
			v = p.Max
		}
		return math.Sqrt((p.Max-v+1)*(p.Max-v+1) - 1)
	default:
		return v
	}
}

// toExternal maps the internal unconstrained variable back to the external
// value inside the parameter's bounds.
func toExternal(p Param, internal float64) float64 {
	hasMin := !math.IsInf(p.Min, -1)
	hasMax := !math.IsInf(p.Max, 1)

	switch {
	case hasMin && hasMax:
		return p.Min + (math.Sin(internal)+1)/2*(p.Max-p.Min)
	case hasMin:
		return p.Min - 1 + math.Sqrt(internal*internal+1)
	case hasMax:
		return p.Max + 1 - math.Sqrt(internal*internal+1)
	default:
		return internal
	}
}
