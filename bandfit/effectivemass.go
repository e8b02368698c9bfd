package bandfit

import (
	"github.com/cwbudde/algo-arpes/peakfit"
	"github.com/cwbudde/algo-arpes/spectrum"
)

// HbarSqPerElectronMassAngstromSq is ħ²/(mₑ·Å²) expressed in eV, the
// conversion constant between a parabolic band's curvature in eV·Å² and
// the effective mass in units of the free electron mass:
//
//	m*/mₑ = ħ² / (mₑ·Å²·eV) / (2a) ≈ 7.61996 / (2a)
const HbarSqPerElectronMassAngstromSq = 7.61996

// FitEffectiveMass estimates the effective mass of a single parabolic
// band from a two-dimensional energy-momentum cut, in units of the free
// electron mass.
//
// Each constant-energy slice is fit with a Lorentzian over an affine
// background to locate the momentum distribution maximum; slices whose
// fits fail are dropped. The surviving (momentum, energy) pairs are fit
// with a parabola E(k) = a·k² + b·k + c and the mass follows from the
// curvature. Momentum is expected in 1/Å and energy in eV.
func FitEffectiveMass(data *spectrum.Spectrum, energyDim, momentumDim string, opts ...Option) (float64, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if data.NDim() != 2 {
		return 0, ErrNotTwoDim
	}

	it, err := data.Marginals(momentumDim)
	if err != nil {
		return 0, err
	}
	if len(it.FreeDims()) != 1 || it.FreeDims()[0] != energyDim {
		return 0, ErrNotTwoDim
	}
	k := it.X()

	energies, err := data.Coord(energyDim)
	if err != nil {
		return 0, err
	}

	peak := peakfit.NewLorentzian("a_")
	bg := peakfit.NewAffineBackground("bg_")

	var centers, sieved []float64
	done, total := 0, it.Count()
	for it.Next() {
		composite, err := peakfit.Add(peak, bg)
		if err != nil {
			return 0, err
		}

		res, err := peakfit.GuessFit(composite, it.Marginal(), k, nil, cfg.fitOpts...)
		done++
		cfg.report(done, total, "locating maxima")
		if err != nil {
			continue
		}

		center := res.Params.Value("a_center")
		if !isFinite(center) {
			continue
		}
		centers = append(centers, center)
		sieved = append(sieved, energies[it.Position()])
	}

	if len(centers) < 3 {
		return 0, ErrNoFiniteCenters
	}

	parabola := peakfit.NewQuadratic("fit_")
	res, err := peakfit.GuessFit(parabola, sieved, centers, nil, cfg.fitOpts...)
	if err != nil {
		return 0, err
	}

	return HbarSqPerElectronMassAngstromSq / (2 * res.Params.Value("fit_a")), nil
}
