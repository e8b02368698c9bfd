package peakfit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// fwhmToGaussianSigma converts a full width at half maximum to a
	// Gaussian standard deviation: FWHM = 2*sqrt(2*ln 2)*sigma.
	fwhmToGaussianSigma = 2.3548200450309493

	sqrt2Pi = 2.5066282746310002
)

// peakShape holds the simple statistics a peak guess is derived from.
type peakShape struct {
	center float64
	height float64
	base   float64
	fwhm   float64
}

// estimatePeak locates the maximum and measures the width at half maximum
// by walking outward from the peak with linear interpolation at the
// crossings. Falls back to a sixth of the axis span when a crossing is not
// found on either side.
func estimatePeak(data, x []float64) peakShape {
	iMax := floats.MaxIdx(data)
	base := floats.Min(data)
	height := data[iMax] - base
	half := base + height/2

	span := math.Abs(x[len(x)-1] - x[0])
	left := x[0]
	for i := iMax; i > 0; i-- {
		if data[i-1] <= half {
			t := (data[i] - half) / (data[i] - data[i-1])
			left = x[i] + t*(x[i-1]-x[i])
			break
		}
	}

	right := x[len(x)-1]
	for i := iMax; i < len(x)-1; i++ {
		if data[i+1] <= half {
			t := (data[i] - half) / (data[i] - data[i+1])
			right = x[i] + t*(x[i+1]-x[i])
			break
		}
	}

	fwhm := math.Abs(right - left)
	if fwhm == 0 {
		fwhm = span / 6
	}
	if fwhm == 0 {
		fwhm = 1
	}

	return peakShape{
		center: x[iMax],
		height: height,
		base:   base,
		fwhm:   fwhm,
	}
}

// Lorentzian is a Cauchy line shape:
//
//	f(x) = amplitude/pi * sigma / ((x-center)^2 + sigma^2)
//
// sigma is the half width at half maximum. Parameters: amplitude, center,
// sigma.
type Lorentzian struct {
	prefix string
}

// NewLorentzian returns a Lorentzian with the given parameter prefix.
func NewLorentzian(prefix string) Lorentzian { return Lorentzian{prefix: prefix} }

func (m Lorentzian) Prefix() string { return m.prefix }

func (m Lorentzian) Names() []string {
	return []string{m.prefix + "amplitude", m.prefix + "center", m.prefix + "sigma"}
}

func (m Lorentzian) EvalTo(dst, x []float64, p Params) {
	a := p.Value(m.prefix + "amplitude")
	c := p.Value(m.prefix + "center")
	s := p.Value(m.prefix + "sigma")
	for i, xi := range x {
		d := xi - c
		dst[i] = a / math.Pi * s / (d*d + s*s)
	}
}

func (m Lorentzian) Guess(data, x []float64) Params {
	ps := estimatePeak(data, x)
	sigma := ps.fwhm / 2

	out := make(Params, 3)
	out[m.prefix+"amplitude"] = NewParam(m.prefix+"amplitude", ps.height*math.Pi*sigma)
	out[m.prefix+"center"] = NewParam(m.prefix+"center", ps.center)
	sig := NewParam(m.prefix+"sigma", sigma)
	sig.Min = 0
	out[m.prefix+"sigma"] = sig

	return out
}

// Gaussian is a normal line shape:
//
//	f(x) = amplitude/(sigma*sqrt(2*pi)) * exp(-(x-center)^2 / (2*sigma^2))
//
// Parameters: amplitude, center, sigma.
type Gaussian struct {
	prefix string
}

// NewGaussian returns a Gaussian with the given parameter prefix.
func NewGaussian(prefix string) Gaussian { return Gaussian{prefix: prefix} }

func (m Gaussian) Prefix() string { return m.prefix }

func (m Gaussian) Names() []string {
	return []string{m.prefix + "amplitude", m.prefix + "center", m.prefix + "sigma"}
}

func (m Gaussian) EvalTo(dst, x []float64, p Params) {
	a := p.Value(m.prefix + "amplitude")
	c := p.Value(m.prefix + "center")
	s := p.Value(m.prefix + "sigma")
	norm := a / (s * sqrt2Pi)
	for i, xi := range x {
		d := xi - c
		dst[i] = norm * math.Exp(-d*d/(2*s*s))
	}
}

func (m Gaussian) Guess(data, x []float64) Params {
	ps := estimatePeak(data, x)
	sigma := ps.fwhm / fwhmToGaussianSigma

	out := make(Params, 3)
	out[m.prefix+"amplitude"] = NewParam(m.prefix+"amplitude", ps.height*sigma*sqrt2Pi)
	out[m.prefix+"center"] = NewParam(m.prefix+"center", ps.center)
	sig := NewParam(m.prefix+"sigma", sigma)
	sig.Min = 0
	out[m.prefix+"sigma"] = sig

	return out
}

// Linear is a straight line: f(x) = slope*x + intercept.
type Linear struct {
	prefix string
}

// NewLinear returns a Linear model with the given parameter prefix.
func NewLinear(prefix string) Linear { return Linear{prefix: prefix} }

func (m Linear) Prefix() string { return m.prefix }

func (m Linear) Names() []string {
	return []string{m.prefix + "slope", m.prefix + "intercept"}
}

func (m Linear) EvalTo(dst, x []float64, p Params) {
	slope := p.Value(m.prefix + "slope")
	intercept := p.Value(m.prefix + "intercept")
	for i, xi := range x {
		dst[i] = slope*xi + intercept
	}
}

func (m Linear) Guess(data, x []float64) Params {
	alpha, beta := stat.LinearRegression(x, data, nil, false)

	out := make(Params, 2)
	out[m.prefix+"slope"] = NewParam(m.prefix+"slope", beta)
	out[m.prefix+"intercept"] = NewParam(m.prefix+"intercept", alpha)

	return out
}

// Quadratic is a parabola: f(x) = a*x^2 + b*x + c.
type Quadratic struct {
	prefix string
}

// NewQuadratic returns a Quadratic model with the given parameter prefix.
func NewQuadratic(prefix string) Quadratic { return Quadratic{prefix: prefix} }

func (m Quadratic) Prefix() string { return m.prefix }

func (m Quadratic) Names() []string {
	return []string{m.prefix + "a", m.prefix + "b", m.prefix + "c"}
}

func (m Quadratic) EvalTo(dst, x []float64, p Params) {
	a := p.Value(m.prefix + "a")
	b := p.Value(m.prefix + "b")
	c := p.Value(m.prefix + "c")
	for i, xi := range x {
		dst[i] = (a*xi+b)*xi + c
	}
}

// Guess solves the Vandermonde least-squares problem directly, so the
// "guess" is already the optimal parabola for clean data.
func (m Quadratic) Guess(data, x []float64) Params {
	n := len(x)
	vand := mat.NewDense(n, 3, nil)
	for i, xi := range x {
		vand.Set(i, 0, xi*xi)
		vand.Set(i, 1, xi)
		vand.Set(i, 2, 1)
	}

	var qr mat.QR
	qr.Factorize(vand)

	rhs := mat.NewDense(n, 1, nil)
	for i, v := range data {
		rhs.Set(i, 0, v)
	}

	a, b, c := 0.0, 0.0, stat.Mean(data, nil)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, rhs); err == nil {
		a, b, c = sol.At(0, 0), sol.At(1, 0), sol.At(2, 0)
	}

	out := make(Params, 3)
	out[m.prefix+"a"] = NewParam(m.prefix+"a", a)
	out[m.prefix+"b"] = NewParam(m.prefix+"b", b)
	out[m.prefix+"c"] = NewParam(m.prefix+"c", c)

	return out
}

// AffineBackground is a sloped background underneath a peak:
//
//	f(x) = lin_bg*x + const_bg
//
// It carries no localized peak, so identity resolution skips it.
type AffineBackground struct {
	prefix string
}

// NewAffineBackground returns an affine background model with the given
// parameter prefix.
func NewAffineBackground(prefix string) AffineBackground {
	return AffineBackground{prefix: prefix}
}

func (m AffineBackground) Prefix() string { return m.prefix }

func (m AffineBackground) Names() []string {
	return []string{m.prefix + "lin_bg", m.prefix + "const_bg"}
}

func (m AffineBackground) EvalTo(dst, x []float64, p Params) {
	slope := p.Value(m.prefix + "lin_bg")
	offset := p.Value(m.prefix + "const_bg")
	for i, xi := range x {
		dst[i] = slope*xi + offset
	}
}

// Guess fits the lower envelope crudely: a regression against the data
// would absorb the peaks, so the slope comes from the edge samples and the
// offset from the minimum.
func (m AffineBackground) Guess(data, x []float64) Params {
	slope := 0.0
	if dx := x[len(x)-1] - x[0]; dx != 0 {
		slope = (data[len(data)-1] - data[0]) / dx
	}
	offset := floats.Min(data) - slope*x[0]

	out := make(Params, 2)
	out[m.prefix+"lin_bg"] = NewParam(m.prefix+"lin_bg", slope)
	out[m.prefix+"const_bg"] = NewParam(m.prefix+"const_bg", offset)

	return out
}

// Constant is a flat background: f(x) = c.
type Constant struct {
	prefix string
}

// NewConstant returns a constant background model with the given parameter
// prefix.
func NewConstant(prefix string) Constant { return Constant{prefix: prefix} }

func (m Constant) Prefix() string { return m.prefix }

func (m Constant) Names() []string {
	return []string{m.prefix + "c"}
}

func (m Constant) EvalTo(dst, x []float64, p Params) {
	c := p.Value(m.prefix + "c")
	for i := range x {
		dst[i] = c
	}
}

func (m Constant) Guess(data, _ []float64) Params {
	out := make(Params, 1)
	out[m.prefix+"c"] = NewParam(m.prefix+"c", stat.Mean(data, nil))

	return out
}
