package bandfit

import (
	"github.com/cwbudde/algo-arpes/peakfit"
)

// FermiMomentumFromMDCs estimates the Fermi momentum from a sequence of
// momentum distribution curve centers at known binding energies.
//
// The centers are fit against energy with a straight line, non-finite
// entries dropped, and the line is evaluated at zero binding energy. The
// inputs typically come from a Band's Center spectrum, where NaN marks
// slices the sweep could not fit.
func FermiMomentumFromMDCs(centers, energies []float64, opts ...peakfit.FitOption) (float64, error) {
	if len(centers) != len(energies) {
		return 0, peakfit.ErrLengthMismatch
	}

	var k, e []float64
	for i, c := range centers {
		if isFinite(c) && isFinite(energies[i]) {
			k = append(k, c)
			e = append(e, energies[i])
		}
	}
	if len(k) < 2 {
		return 0, ErrNoFiniteCenters
	}

	line := peakfit.NewLinear("kf_")
	res, err := peakfit.GuessFit(line, k, e, nil, opts...)
	if err != nil {
		return 0, err
	}

	return res.Params.Value("kf_intercept"), nil
}
