package deriv

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-arpes/spectrum"
)

var (
	ErrOrder     = errors.New("deriv: derivative order must be non-negative")
	ErrAlpha     = errors.New("deriv: regularization alpha must be positive")
	ErrWeight    = errors.New("deriv: weight must be nonzero")
	ErrDelta     = errors.New("deriv: delta must be positive and smaller than both axes")
	ErrNotTwoDim = errors.New("deriv: spectrum must be two-dimensional")
	ErrShortAxis = errors.New("deriv: axis too short to differentiate")
)

// DnAlong takes the order-th derivative along dim with respect to the
// axis coordinates. Order zero returns a copy.
func DnAlong(s *spectrum.Spectrum, dim string, order int) (*spectrum.Spectrum, error) {
	if order < 0 {
		return nil, ErrOrder
	}

	out := s.Clone()
	for n := 0; n < order; n++ {
		var err error
		out, err = D1Along(out, dim)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// D1Along takes the first derivative along dim.
//
// Interior points use the three-point stencil exact for parabolas on
// nonuniform grids; the endpoints fall back to one-sided differences.
func D1Along(s *spectrum.Spectrum, dim string) (*spectrum.Spectrum, error) {
	out := s.Clone()
	it, err := out.Marginals(dim)
	if err != nil {
		return nil, err
	}
	x := it.X()
	if len(x) < 2 {
		return nil, ErrShortAxis
	}

	g := make([]float64, len(x))
	for it.Next() {
		gradient1D(g, it.Marginal(), x)
		it.SetMarginal(g)
	}

	return out, nil
}

// D2Along takes the second derivative along dim by differentiating twice.
func D2Along(s *spectrum.Spectrum, dim string) (*spectrum.Spectrum, error) {
	return DnAlong(s, dim, 2)
}

// gradient1D writes df/dx into dst.
func gradient1D(dst, f, x []float64) {
	n := len(f)
	dst[0] = (f[1] - f[0]) / (x[1] - x[0])
	dst[n-1] = (f[n-1] - f[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hd := x[i] - x[i-1]
		hs := x[i+1] - x[i]
		dst[i] = (hs*hs*f[i+1] + (hd*hd-hs*hs)*f[i] - hd*hd*f[i-1]) /
			(hs * hd * (hd + hs))
	}
}

// Curvature1D computes the one-dimensional maximum-curvature enhancement
// along dim:
//
//	C(x) = f'' / (alpha*|min f'|^2 + f'^2)^(3/2)
//
// Alpha regularizes flat regions; around 0.1 works for most data.
func Curvature1D(s *spectrum.Spectrum, dim string, alpha float64) (*spectrum.Spectrum, error) {
	if alpha <= 0 {
		return nil, ErrAlpha
	}

	d1, err := D1Along(s, dim)
	if err != nil {
		return nil, err
	}
	d2, err := D1Along(d1, dim)
	if err != nil {
		return nil, err
	}

	floor := alpha * minAbsSq(d1.Values())

	out := d2.Clone()
	dv := d1.Values()
	ov := out.Values()
	for i := range ov {
		den := floor + dv[i]*dv[i]
		ov[i] /= den * math.Sqrt(den)
	}

	return out, nil
}

// Curvature2D computes the two-dimensional maximum-curvature enhancement
// over dimX and dimY (Eq. (14) of Rev. Sci. Instrum. 82, 043712 (2011)).
//
// The axes are balanced by the squared ratio of their grid spacings;
// weight2d shifts that balance further. Values well above 1 weigh the
// dimX derivative, values below -1 the dimY derivative (negative values
// divide instead of multiply, so -2 and 1/2 act alike).
func Curvature2D(s *spectrum.Spectrum, dimX, dimY string, alpha, weight2d float64) (*spectrum.Spectrum, error) {
	if alpha <= 0 {
		return nil, ErrAlpha
	}
	if weight2d == 0 {
		return nil, ErrWeight
	}
	if s.NDim() != 2 {
		return nil, ErrNotTwoDim
	}

	cx, err := s.Coord(dimX)
	if err != nil {
		return nil, err
	}
	cy, err := s.Coord(dimY)
	if err != nil {
		return nil, err
	}
	if len(cx) < 2 || len(cy) < 2 {
		return nil, ErrShortAxis
	}

	weight := (cx[1] - cx[0]) / (cy[1] - cy[0])
	weight *= weight
	if weight2d > 0 {
		weight *= weight2d
	} else {
		weight /= -weight2d
	}

	dx, err := D1Along(s, dimX)
	if err != nil {
		return nil, err
	}
	dy, err := D1Along(s, dimY)
	if err != nil {
		return nil, err
	}
	dxx, err := D1Along(dx, dimX)
	if err != nil {
		return nil, err
	}
	dyy, err := D1Along(dy, dimY)
	if err != nil {
		return nil, err
	}
	dxy, err := D1Along(dx, dimY)
	if err != nil {
		return nil, err
	}

	avg := math.Max(minAbsSq(dx.Values()), weight*minAbsSq(dy.Values()))

	out := s.Clone()
	fx, fy := dx.Values(), dy.Values()
	fxx, fyy, fxy := dxx.Values(), dyy.Values(), dxy.Values()
	ov := out.Values()
	for i := range ov {
		num := (alpha*avg+weight*fx[i]*fx[i])*fyy[i] -
			2*weight*fx[i]*fy[i]*fxy[i] +
			weight*(alpha*avg+fy[i]*fy[i])*fxx[i]
		den := alpha*avg + weight*fx[i]*fx[i] + fy[i]*fy[i]
		ov[i] = num / (den * math.Sqrt(den))
	}

	return out, nil
}

// MinimumGradient enhances band positions in a diffuse two-dimensional
// spectrum by dividing the intensity by its gradient modulus over the
// eight delta-step neighbor differences. Intensity maxima sit where the
// gradient vanishes, so ridges come out amplified. Smooth noisy data
// first; see SmoothGaussian.
func MinimumGradient(s *spectrum.Spectrum, delta int) (*spectrum.Spectrum, error) {
	if s.NDim() != 2 {
		return nil, ErrNotTwoDim
	}
	shape := s.Shape()
	n0, n1 := shape[0], shape[1]
	if delta < 1 || delta >= n0 || delta >= n1 {
		return nil, ErrDelta
	}

	at := func(i, j int) float64 { return s.At(i, j) }

	modulus := s.Clone()
	for i := 0; i < n0; i++ {
		for j := 0; j < n1; j++ {
			sum := 0.0
			add := func(di, dj int) {
				ii, jj := i+di, j+dj
				if ii < 0 || ii >= n0 || jj < 0 || jj >= n1 {
					return
				}
				d := at(ii, jj) - at(i, j)
				sum += d * d
			}
			add(delta, 0)
			add(-delta, 0)
			add(0, delta)
			add(0, -delta)
			add(delta, delta)
			add(delta, -delta)
			add(-delta, delta)
			add(-delta, -delta)
			modulus.SetAt(math.Sqrt(sum), i, j)
		}
	}

	return s.Div(modulus)
}

// minAbsSq returns the squared magnitude of the most negative value, the
// regularization scale both curvature variants share.
func minAbsSq(vals []float64) float64 {
	min := math.Inf(1)
	for _, v := range vals {
		if v < min {
			min = v
		}
	}
	m := math.Abs(min)

	return m * m
}
