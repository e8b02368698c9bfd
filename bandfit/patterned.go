package bandfit

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-arpes/peakfit"
	"github.com/cwbudde/algo-arpes/spectrum"
)

// strayWindowFactor widens the amplitude-estimation window relative to the
// center constraint window.
const strayWindowFactor = 1.2

// FitPatternedBands fits bands whose expected centers are laid out as
// control points over a patterning coordinate.
//
// At each marginal, every band's expected center is linearly interpolated
// from the control-point pair bracketing the slice's patterning-coordinate
// value; a slice outside all bracketing intervals gets no instance of that
// band. Interpolated centers are constrained to center ± stray, the width
// is seeded with stray, and the amplitude with the 20th-to-80th percentile
// intensity spread within 1.2×stray of the center. An affine background
// band is added underneath unless disabled.
//
// Slices are fit independently, so the sweep runs on a worker pool; see
// WithWorkers. A slice with no bands at all stays absent.
func FitPatternedBands(data *spectrum.Spectrum, fitDim string, bands []PatternedBand, stray float64, opts ...Option) (*Landscape, error) {
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

	freeDims := it.FreeDims()
	for _, b := range bands {
		if _, ok := patternDim(b, freeDims); !ok {
			return nil, ErrPatternDim
		}
	}

	grid := newGrid(it)

	type task struct {
		pos      int
		coord    spectrum.Coordinate
		marginal []float64
	}

	tasks := make([]task, 0, it.Count())
	for it.Next() {
		tasks = append(tasks, task{
			pos:      it.Position(),
			coord:    it.Coordinate(),
			marginal: it.Marginal(),
		})
	}

	workers := cfg.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers < 1 {
		workers = 1
	}

	in := make(chan int)
	completed := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ti := range in {
				t := tasks[ti]
				if res, ok := fitPatternedSlice(t.coord, t.marginal, x, bands, freeDims, stray, cfg); ok {
					grid.set(t.pos, res)
				}
				completed <- ti
			}
		}()
	}

	go func() {
		for ti := range tasks {
			in <- ti
		}
		close(in)
		wg.Wait()
		close(completed)
	}()

	done := 0
	for range completed {
		done++
		cfg.report(done, len(tasks), "fitting")
	}

	return assembleLandscape(data, fitDim, grid)
}

// patternDim picks the first of the band's candidate dimensions that is a
// free axis of the sweep.
func patternDim(b PatternedBand, freeDims []string) (string, bool) {
	for _, d := range b.Dims {
		for _, f := range freeDims {
			if d == f {
				return d, true
			}
		}
	}

	return "", false
}

// fitPatternedSlice assembles and fits the composite for one marginal.
// ok=false marks a slice with no band instances; fit failures also leave
// the cell absent.
func fitPatternedSlice(coord spectrum.Coordinate, marginal, x []float64, bands []PatternedBand, freeDims []string, stray float64, cfg config) (*peakfit.FitResult, bool) {
	var models []peakfit.Model
	hints := make(map[string]peakfit.Hint)

	for _, b := range bands {
		dim, _ := patternDim(b, freeDims)
		at, ok := coord.Value(dim)
		if !ok {
			continue
		}

		bandStray := stray
		if b.Stray > 0 {
			bandStray = b.Stray
		}

		for i, center := range b.interpolateCenters(at) {
			prefix := fmt.Sprintf("%s%d_", b.Name, i)
			m, err := b.Shape.model(prefix)
			if err != nil {
				continue
			}
			models = append(models, m)

			for k, v := range b.Hints {
				hints[prefix+k] = v
			}
			if bandStray > 0 {
				hints[prefix+"center"] = peakfit.HintWindow(center, bandStray)
				hints[prefix+"sigma"] = peakfit.HintValue(bandStray)
				if amp, ok := amplitudeEstimate(marginal, x, center, bandStray); ok {
					hints[prefix+"amplitude"] = peakfit.HintValue(amp)
				}
			} else {
				hints[prefix+"center"] = peakfit.HintValue(center)
			}
		}
	}

	if len(models) == 0 {
		return nil, false
	}

	if cfg.background {
		models = append(models, peakfit.NewAffineBackground("bg_"))
	}

	composite, err := peakfit.Add(models...)
	if err != nil {
		return nil, false
	}

	res, err := peakfit.GuessFit(composite, marginal, x, hints, cfg.fitOpts...)
	if err != nil {
		return nil, false
	}

	return res, true
}

// amplitudeEstimate spreads the 20th and 80th intensity percentiles within
// strayWindowFactor*stray of the expected center.
func amplitudeEstimate(marginal, x []float64, center, stray float64) (float64, bool) {
	window := strayWindowFactor * stray

	var near []float64
	for i, xi := range x {
		if math.Abs(xi-center) <= window && isFinite(marginal[i]) {
			near = append(near, marginal[i])
		}
	}
	if len(near) == 0 {
		return 0, false
	}

	sort.Float64s(near)
	low := stat.Quantile(0.2, stat.Empirical, near, nil)
	high := stat.Quantile(0.8, stat.Empirical, near, nil)

	return high - low, true
}
