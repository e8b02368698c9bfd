package bandfit

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-arpes/peakfit"
)

// Errors returned by sweep entry points.
var (
	ErrNoBands         = errors.New("bandfit: at least one band required")
	ErrUnknownShape    = errors.New("bandfit: unknown band shape")
	ErrBandName        = errors.New("bandfit: band name must be a nonempty prefix")
	ErrPatternDim      = errors.New("bandfit: no pattern dimension present in the spectrum")
	ErrTooFewPoints    = errors.New("bandfit: patterned band needs at least two control points")
	ErrEmptyGrid       = errors.New("bandfit: result grid contains no fits")
	ErrGridShape       = errors.New("bandfit: assignment and result grids differ in shape")
	ErrNotTwoDim       = errors.New("bandfit: spectrum must be two-dimensional")
	ErrTooManyBands    = errors.New("bandfit: identity resolution is factorial in band count")
	ErrNoFiniteCenters = errors.New("bandfit: no finite centers to fit")
)

// maxResolvableBands bounds the permutation search. The assignment step is
// O(k!) per slice, which is fine for the few simultaneous bands that occur
// in practice and useless beyond that.
const maxResolvableBands = 6

// Shape selects the line-shape model backing a band.
type Shape int

const (
	ShapeLorentzian Shape = iota
	ShapeGaussian
)

// String returns the shape name as used in pattern files.
func (s Shape) String() string {
	switch s {
	case ShapeLorentzian:
		return "lorentzian"
	case ShapeGaussian:
		return "gaussian"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape maps a shape name to its Shape value.
func ParseShape(name string) (Shape, error) {
	switch name {
	case "lorentzian":
		return ShapeLorentzian, nil
	case "gaussian":
		return ShapeGaussian, nil
	default:
		return 0, ErrUnknownShape
	}
}

// model instantiates the line-shape model for a shape under a prefix.
func (s Shape) model(prefix string) (peakfit.Model, error) {
	switch s {
	case ShapeLorentzian:
		return peakfit.NewLorentzian(prefix), nil
	case ShapeGaussian:
		return peakfit.NewGaussian(prefix), nil
	default:
		return nil, ErrUnknownShape
	}
}

// BandSpec describes one band requested from a sequential sweep: a named
// line shape plus optional parameter hints. Hint keys are bare parameter
// names ("center", "sigma", ...); the band's prefix is applied internally.
type BandSpec struct {
	Name  string
	Shape Shape
	Hints map[string]peakfit.Hint
}

func (b BandSpec) validate() error {
	if b.Name == "" {
		return ErrBandName
	}

	return nil
}

func (b BandSpec) model() (peakfit.Model, error) {
	return b.Shape.model(b.Name)
}

// prefixedHints qualifies the bare hint names with the band prefix.
func (b BandSpec) prefixedHints() map[string]peakfit.Hint {
	if len(b.Hints) == 0 {
		return nil
	}

	out := make(map[string]peakfit.Hint, len(b.Hints))
	for k, v := range b.Hints {
		out[b.Name+k] = v
	}

	return out
}

// ControlPoint anchors a patterned band: at patterning-coordinate value
// At, the band center along the fit axis is expected near Center.
type ControlPoint struct {
	At     float64
	Center float64
}

// PatternedBand describes one band for a patterned sweep. Dims lists the
// candidate patterning dimensions; the first one present among the
// spectrum's free axes is used. Control points are interpolated pairwise:
// a slice whose patterning coordinate falls outside every bracketing
// interval gets no instance of this band.
type PatternedBand struct {
	Name   string
	Shape  Shape
	Dims   []string
	Points []ControlPoint
	Stray  float64 // overrides the sweep stray when positive
	Hints  map[string]peakfit.Hint
}

func (b PatternedBand) validate() error {
	if b.Name == "" {
		return ErrBandName
	}
	if len(b.Points) < 2 {
		return ErrTooFewPoints
	}
	if len(b.Dims) == 0 {
		return ErrPatternDim
	}

	return nil
}

// interpolateCenters returns the expected centers of this band at the
// given patterning-coordinate value, one per bracketing control-point
// interval that contains it. Outside every interval the result is empty.
func (b PatternedBand) interpolateCenters(at float64) []float64 {
	var out []float64
	for i := 0; i+1 < len(b.Points); i++ {
		lo, hi := b.Points[i], b.Points[i+1]
		a0, a1 := lo.At, hi.At
		c0, c1 := lo.Center, hi.Center
		if a1 < a0 {
			a0, a1 = a1, a0
			c0, c1 = c1, c0
		}
		if at < a0 || at > a1 {
			continue
		}
		if a1 == a0 {
			out = append(out, c0)
			continue
		}
		out = append(out, c0+(at-a0)/(a1-a0)*(c1-c0))
	}

	return out
}
