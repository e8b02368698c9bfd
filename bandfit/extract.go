package bandfit

import (
	"math"
	"strings"

	"github.com/cwbudde/algo-arpes/spectrum"
)

// Band is one resolved band's fitted parameters arranged over the
// free-direction coordinate grid. Positions where the band could not be
// resolved hold NaN.
type Band struct {
	Label string

	Center       *spectrum.Spectrum
	CenterStderr *spectrum.Spectrum

	Amplitude       *spectrum.Spectrum
	AmplitudeStderr *spectrum.Spectrum

	Sigma       *spectrum.Spectrum
	SigmaStderr *spectrum.Spectrum
}

// ExtractBands reads each resolved band's center, amplitude, and sigma
// (with standard errors) out of a fitted grid into per-band spectra over
// the free axes. Cells without an assignment yield NaN at their position
// in every extracted spectrum.
func ExtractBands(g *Grid, a *AssignmentGrid) ([]Band, error) {
	if g.Len() != len(a.cells) {
		return nil, ErrGridShape
	}

	params := []string{"center", "amplitude", "sigma"}

	bands := make([]Band, a.Bands())
	for bi := range bands {
		bands[bi].Label = strings.TrimSuffix(a.prefixes[bi], "_")

		fields := make(map[string][]float64, 2*len(params))
		for _, p := range params {
			vals := make([]float64, g.Len())
			errs := make([]float64, g.Len())
			for pos := range vals {
				vals[pos] = math.NaN()
				errs[pos] = math.NaN()
			}

			for pos := 0; pos < g.Len(); pos++ {
				assignment := a.cells[pos]
				if assignment == nil {
					continue
				}
				res, ok := g.Cell(pos)
				if !ok {
					continue
				}
				name := assignment[bi] + p
				vals[pos] = res.Params.Value(name)
				errs[pos] = res.Params.Stderr(name)
			}

			fields[p] = vals
			fields[p+"_stderr"] = errs
		}

		var err error
		if bands[bi].Center, err = spectrum.New(a.dims, a.coords, fields["center"]); err != nil {
			return nil, err
		}
		if bands[bi].CenterStderr, err = spectrum.New(a.dims, a.coords, fields["center_stderr"]); err != nil {
			return nil, err
		}
		if bands[bi].Amplitude, err = spectrum.New(a.dims, a.coords, fields["amplitude"]); err != nil {
			return nil, err
		}
		if bands[bi].AmplitudeStderr, err = spectrum.New(a.dims, a.coords, fields["amplitude_stderr"]); err != nil {
			return nil, err
		}
		if bands[bi].Sigma, err = spectrum.New(a.dims, a.coords, fields["sigma"]); err != nil {
			return nil, err
		}
		if bands[bi].SigmaStderr, err = spectrum.New(a.dims, a.coords, fields["sigma_stderr"]); err != nil {
			return nil, err
		}
	}

	return bands, nil
}

// UnpackBands resolves band identities across a fitted grid with the
// default weights and extracts the per-band parameter spectra in one step.
func UnpackBands(g *Grid, opts ...UnpackOption) ([]Band, error) {
	weights := DefaultIdentityWeights
	for _, opt := range opts {
		if opt != nil {
			opt(&weights)
		}
	}

	assignments, err := ResolveIdentities(g, weights)
	if err != nil {
		return nil, err
	}

	return ExtractBands(g, assignments)
}

// UnpackOption tunes identity resolution during UnpackBands.
type UnpackOption func(*[3]float64)

// WithIdentityWeights overrides the (sigma, amplitude, center) weights
// used when matching components across slices.
func WithIdentityWeights(weights [3]float64) UnpackOption {
	return func(w *[3]float64) { *w = weights }
}
