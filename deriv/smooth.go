package deriv

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-arpes/spectrum"
)

var (
	ErrWidth  = errors.New("deriv: smoothing width must be positive")
	ErrRepeat = errors.New("deriv: repeat count must be positive")
)

// directConvLimit is the work bound (row length times kernel length)
// above which convolution switches to the FFT.
const directConvLimit = 1 << 14

// SmoothGaussian convolves the spectrum with a Gaussian along each named
// axis, repeat times over.
//
// Widths map axis names to the Gaussian sigma in coordinate units of
// that axis. The kernel is truncated at four sigma and renormalized;
// edges are handled by reflection, so total intensity is conserved away
// from strong boundary slopes. Repeated application approaches a wider
// Gaussian and is the usual way to stabilize curvature analysis.
func SmoothGaussian(s *spectrum.Spectrum, widths map[string]float64, repeat int) (*spectrum.Spectrum, error) {
	if repeat < 1 {
		return nil, ErrRepeat
	}
	for _, sigma := range widths {
		if sigma <= 0 {
			return nil, ErrWidth
		}
	}

	out := s.Clone()
	for dim, sigma := range widths {
		coords, err := out.Coord(dim)
		if err != nil {
			return nil, err
		}
		if len(coords) < 2 {
			return nil, ErrShortAxis
		}
		spacing := math.Abs(coords[1] - coords[0])

		kernel := gaussianKernel(sigma, spacing)
		if len(kernel) == 1 {
			continue
		}

		it, err := out.Marginals(dim)
		if err != nil {
			return nil, err
		}

		row := make([]float64, len(it.X()))
		for n := 0; n < repeat; n++ {
			it.Reset()
			for it.Next() {
				it.CopyMarginal(row)
				smoothed, err := convolveReflect(row, kernel)
				if err != nil {
					return nil, err
				}
				it.SetMarginal(smoothed)
			}
		}
	}

	return out, nil
}

// gaussianKernel samples a unit-area Gaussian of width sigma on a grid
// with the given spacing, truncated at four sigma.
func gaussianKernel(sigma, spacing float64) []float64 {
	radius := int(math.Ceil(4 * sigma / spacing))
	kernel := make([]float64, 2*radius+1)

	sum := 0.0
	for i := range kernel {
		u := float64(i-radius) * spacing / sigma
		kernel[i] = math.Exp(-u * u / 2)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel
}

// convolveReflect convolves row with a symmetric kernel under reflected
// boundary extension. Short rows are convolved directly; long ones go
// through the FFT.
func convolveReflect(row, kernel []float64) ([]float64, error) {
	radius := len(kernel) / 2
	ext := reflectPad(row, radius)

	if len(row)*len(kernel) <= directConvLimit {
		out := make([]float64, len(row))
		for i := range out {
			acc := 0.0
			for t, kv := range kernel {
				acc += kv * ext[i+t]
			}
			out[i] = acc
		}

		return out, nil
	}

	return fftConvolve(ext, kernel, len(row), radius)
}

// fftConvolve convolves the padded row with the kernel in the frequency
// domain and cuts the valid center region back out.
func fftConvolve(ext, kernel []float64, n, radius int) ([]float64, error) {
	m := len(ext) + len(kernel) - 1
	fftSize := nextPowerOf2(m)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("deriv: failed to create FFT plan: %w", err)
	}

	extPadded := make([]complex128, fftSize)
	for i, v := range ext {
		extPadded[i] = complex(v, 0)
	}
	extFreq := make([]complex128, fftSize)
	if err := plan.Forward(extFreq, extPadded); err != nil {
		return nil, fmt.Errorf("deriv: forward FFT failed: %w", err)
	}

	kernPadded := make([]complex128, fftSize)
	for i, v := range kernel {
		kernPadded[i] = complex(v, 0)
	}
	kernFreq := make([]complex128, fftSize)
	if err := plan.Forward(kernFreq, kernPadded); err != nil {
		return nil, fmt.Errorf("deriv: forward FFT failed: %w", err)
	}

	resultFreq := make([]complex128, fftSize)
	for i := range resultFreq {
		resultFreq[i] = extFreq[i] * kernFreq[i]
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, resultFreq); err != nil {
		return nil, fmt.Errorf("deriv: inverse FFT failed: %w", err)
	}

	// The kernel is symmetric, so correlation and convolution agree; the
	// valid samples start 2*radius into the linear convolution.
	out := make([]float64, n)
	for i := range out {
		out[i] = real(resultTime[i+2*radius])
	}

	return out, nil
}

// reflectPad extends row by radius samples on each side, mirroring about
// the edge samples.
func reflectPad(row []float64, radius int) []float64 {
	n := len(row)
	ext := make([]float64, n+2*radius)
	for i := range ext {
		j := i - radius
		switch {
		case j < 0:
			j = -j - 1
		case j >= n:
			j = 2*n - 1 - j
		}
		if j < 0 {
			j = 0
		}
		if j >= n {
			j = n - 1
		}
		ext[i] = row[j]
	}

	return ext
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
