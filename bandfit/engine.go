package bandfit

import (
	"runtime"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-arpes/peakfit"
	"github.com/cwbudde/algo-arpes/spectrum"
)

// Progress reports sweep progress: done out of total slices, with a short
// description of the pass. A nil Progress is a no-op.
type Progress func(done, total int, desc string)

type config struct {
	background bool
	workers    int
	progress   Progress
	fitOpts    []peakfit.FitOption
}

func defaultConfig() config {
	return config{
		background: true,
		workers:    runtime.GOMAXPROCS(0),
	}
}

// Option tunes a fitting sweep.
type Option func(*config)

// WithBackground controls whether a background band is added underneath
// the requested bands. Default on.
func WithBackground(enabled bool) Option {
	return func(cfg *config) { cfg.background = enabled }
}

// WithWorkers sets the worker count for parallel sweeps. Only the
// patterned sweep parallelizes; the sequential sweep is order-dependent
// and ignores this.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// WithProgress installs a progress callback driven during the sweep.
func WithProgress(p Progress) Option {
	return func(cfg *config) { cfg.progress = p }
}

// WithFitOptions forwards options to every per-slice fit.
func WithFitOptions(opts ...peakfit.FitOption) Option {
	return func(cfg *config) { cfg.fitOpts = append(cfg.fitOpts, opts...) }
}

func (cfg *config) report(done, total int, desc string) {
	if cfg.progress != nil {
		cfg.progress(done, total, desc)
	}
}

// Landscape bundles the outputs of a fitting sweep in aligned shapes: the
// input data, the per-slice fit grid, the residual, and the residual
// normalized by the data. Absent slices leave zero rows in the residual;
// the normalized residual divides elementwise without guarding against
// zero, so it may carry Inf or NaN.
type Landscape struct {
	Data         *spectrum.Spectrum
	Results      *Grid
	Residual     *spectrum.Spectrum
	NormResidual *spectrum.Spectrum
}

// FitBands fits the requested bands at every marginal of the spectrum
// along fitDim, sequentially.
//
// Initial per-band parameters come from the first marginal by residual
// reduction: bands are guessed and fit one at a time against a running
// residual, each fitted curve subtracted before the next band is guessed.
// The sweep then fits the combined composite (all bands, plus a constant
// background band unless disabled) at every slice, seeding each fit with
// the parameters of the already-fit slice whose frozen coordinate tuple is
// nearest by squared Euclidean distance. Ties keep the first minimum found,
// in completion order, so repeated runs make identical seed choices.
//
// Slices where the fit fails are left absent and the sweep continues.
func FitBands(data *spectrum.Spectrum, fitDim string, bands []BandSpec, opts ...Option) (*Landscape, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(bands) == 0 {
		return nil, ErrNoBands
	}
	for _, b := range bands {
		if err := b.validate(); err != nil {
			return nil, err
		}
	}

	it, err := data.Marginals(fitDim)
	if err != nil {
		return nil, err
	}
	x := it.X()

	models := make([]peakfit.Model, 0, len(bands)+1)
	for _, b := range bands {
		m, err := b.model()
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}

	// Residual reduction on the reference marginal: fit one band at a
	// time against what the previous bands left behind.
	if !it.Next() {
		return nil, spectrum.ErrNoDims
	}
	first := it.Marginal()
	residual := append([]float64(nil), first...)
	base := floats.Min(residual)
	for i := range residual {
		residual[i] -= base
	}

	initial := make(peakfit.Params)
	for i, b := range bands {
		res, err := peakfit.GuessFit(models[i], residual, x, b.prefixedHints(), cfg.fitOpts...)
		if err != nil {
			return nil, err
		}
		initial = initial.Merge(res.Params)
		best := res.BestFit(x)
		for j := range residual {
			residual[j] -= best[j]
		}
	}

	if cfg.background {
		bg := peakfit.NewConstant("bg_")
		models = append(models, bg)
		initial = initial.Merge(peakfit.Params{
			"bg_c": peakfit.NewParam("bg_c", base),
		})
	}

	composite, err := peakfit.Add(models...)
	if err != nil {
		return nil, err
	}

	grid := newGrid(it)
	total := it.Count()

	// Completion-ordered cache of already-fit slices. A slice, not a map:
	// the nearest-prior search must break ties deterministically by
	// completion order.
	type prior struct {
		coord  []float64
		params peakfit.Params
	}
	var priors []prior

	it.Reset()
	done := 0
	for it.Next() {
		frozen := it.Coordinate().Values()

		seed := initial
		bestDist := inf()
		for _, p := range priors {
			d := sqDist(p.coord, frozen)
			if d < bestDist {
				bestDist = d
				seed = p.params
			}
		}

		marginal := it.Marginal()
		res, err := peakfit.Fit(composite, marginal, x, seed, cfg.fitOpts...)
		if err == nil {
			grid.set(it.Position(), res)
			priors = append(priors, prior{coord: frozen, params: res.Params})
		}

		done++
		cfg.report(done, total, "fitting")
	}

	return assembleLandscape(data, fitDim, grid)
}

// assembleLandscape builds the aligned output bundle from a filled grid.
func assembleLandscape(data *spectrum.Spectrum, fitDim string, grid *Grid) (*Landscape, error) {
	residual, err := spectrum.Zeros(data.Dims(), dataCoords(data))
	if err != nil {
		return nil, err
	}

	it, err := residual.Marginals(fitDim)
	if err != nil {
		return nil, err
	}

	row := make([]float64, len(it.X()))
	for it.Next() {
		res, ok := grid.Cell(it.Position())
		if !ok {
			continue
		}
		for i, v := range res.Residual {
			if isFinite(v) {
				row[i] = v
			} else {
				row[i] = 0
			}
		}
		it.SetMarginal(row)
	}

	norm, err := residual.Div(data)
	if err != nil {
		return nil, err
	}

	return &Landscape{
		Data:         data,
		Results:      grid,
		Residual:     residual,
		NormResidual: norm,
	}, nil
}

func dataCoords(s *spectrum.Spectrum) [][]float64 {
	dims := s.Dims()
	out := make([][]float64, len(dims))
	for i, d := range dims {
		c, _ := s.Coord(d)
		out[i] = c
	}

	return out
}

func sqDist(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		delta := a[i] - b[i]
		d += delta * delta
	}

	return d
}
