package peakfit

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// FitResult is the immutable outcome of one least-squares fit.
//
// Params is a fresh snapshot; the initial parameter set passed to Fit is
// never mutated. Residual is data - model on the original grid, with NaN
// wherever a sample was dropped as non-finite.
type FitResult struct {
	Model     Model
	Params    Params
	Residual  []float64
	ChiSquare float64
	RedChi    float64
	NData     int // finite samples used
	NFree     int // varied parameters
	Converged bool
}

// BestFit evaluates the fitted model on x.
func (r *FitResult) BestFit(x []float64) []float64 {
	return Eval(r.Model, x, r.Params)
}

// fitConfig tunes the Levenberg-Marquardt run.
type fitConfig struct {
	weights      []float64
	iterations   int
	objectiveTol float64
	tau          float64
	eps1         float64
	eps2         float64
}

func defaultFitConfig() fitConfig {
	return fitConfig{
		iterations:   200,
		objectiveTol: 1e-16,
		tau:          1e-6,
		eps1:         1e-8,
		eps2:         1e-8,
	}
}

// FitOption mutates the fit configuration.
type FitOption func(*fitConfig)

// WithWeights applies per-sample residual weights.
func WithWeights(w []float64) FitOption {
	return func(cfg *fitConfig) { cfg.weights = w }
}

// WithMaxIterations bounds the solver iteration count.
func WithMaxIterations(n int) FitOption {
	return func(cfg *fitConfig) {
		if n > 0 {
			cfg.iterations = n
		}
	}
}

// GuessFit guesses initial parameters from the data, overlays the caller's
// hints, and fits. Hints are keyed by full prefix-qualified names.
func GuessFit(m Model, data, x []float64, hints map[string]Hint, opts ...FitOption) (*FitResult, error) {
	init := applyHints(m.Guess(data, x), hints)

	return Fit(m, data, x, init, opts...)
}

// Fit minimizes data - m(x; params) by Levenberg-Marquardt, starting from
// init. Non-finite samples are dropped first. The returned result carries
// the solver's best estimate even when convergence was not reached; only
// input contract violations produce an error.
func Fit(m Model, data, x []float64, init Params, opts ...FitOption) (*FitResult, error) {
	cfg := defaultFitConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(data) != len(x) {
		return nil, ErrLengthMismatch
	}
	if cfg.weights != nil && len(cfg.weights) != len(data) {
		return nil, ErrWeightLength
	}

	names := m.Names()
	for _, name := range names {
		if _, ok := init[name]; !ok {
			return nil, ErrIncompleteParams
		}
	}

	// missing=drop: keep only rows finite in x, data, and weight.
	keepX, keepY, keepW, keepIdx := dropNonFinite(x, data, cfg.weights)

	var freeNames []string
	for _, name := range names {
		if init[name].free() {
			freeNames = append(freeNames, name)
		}
	}

	if len(keepX) < len(freeNames) || len(keepX) == 0 {
		return nil, ErrTooFewSamples
	}

	fitted := init.Clone()

	if len(freeNames) > 0 {
		internal0 := make([]float64, len(freeNames))
		for i, name := range freeNames {
			internal0[i] = toInternal(init[name])
		}

		eval := make([]float64, len(keepX))
		resid := func(dst, internal []float64) {
			p := fitted.Clone()
			for i, name := range freeNames {
				param := p[name]
				param.Value = toExternal(init[name], internal[i])
				p[name] = param
			}
			m.EvalTo(eval, keepX, p)
			vecmath.ScaleBlock(dst, keepY, -1)
			vecmath.AddBlockInPlace(dst, eval)
			if keepW != nil {
				vecmath.MulBlockInPlace(dst, keepW)
			}
		}

		numJac := lm.NumJac{Func: resid}
		prob := lm.LMProblem{
			Dim:        len(freeNames),
			Size:       len(keepX),
			Func:       resid,
			Jac:        numJac.Jac,
			InitParams: internal0,
			Tau:        cfg.tau,
			Eps1:       cfg.eps1,
			Eps2:       cfg.eps2,
		}

		solution := internal0
		converged := false
		if res, lmErr := lm.LM(prob, &lm.Settings{
			Iterations:   cfg.iterations,
			ObjectiveTol: cfg.objectiveTol,
		}); lmErr == nil {
			solution = res.X
			converged = true
		}

		for i, name := range freeNames {
			param := fitted[name]
			param.Value = toExternal(init[name], solution[i])
			param.Stderr = math.NaN()
			fitted[name] = param
		}

		result := buildResult(m, fitted, data, keepX, keepY, keepW, keepIdx, len(freeNames))
		result.Converged = converged
		estimateStderr(m, result, freeNames, keepX, keepY, keepW)

		return result, nil
	}

	// Nothing varies: evaluate and report.
	result := buildResult(m, fitted, data, keepX, keepY, keepW, keepIdx, 0)
	result.Converged = true

	return result, nil
}

// dropNonFinite filters rows whose x, data, or weight is NaN or Inf,
// recording the surviving original indices.
func dropNonFinite(x, data, w []float64) (kx, ky, kw []float64, idx []int) {
	kx = make([]float64, 0, len(x))
	ky = make([]float64, 0, len(x))
	idx = make([]int, 0, len(x))
	if w != nil {
		kw = make([]float64, 0, len(x))
	}

	for i := range x {
		if !isFinite(x[i]) || !isFinite(data[i]) {
			continue
		}
		if w != nil && !isFinite(w[i]) {
			continue
		}
		kx = append(kx, x[i])
		ky = append(ky, data[i])
		if w != nil {
			kw = append(kw, w[i])
		}
		idx = append(idx, i)
	}

	return kx, ky, kw, idx
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// buildResult evaluates the fitted model and assembles the full-grid
// residual plus chi-square statistics.
func buildResult(m Model, fitted Params, data, keepX, keepY, keepW []float64, keepIdx []int, nFree int) *FitResult {
	best := Eval(m, keepX, fitted)

	residual := make([]float64, len(data))
	for i := range residual {
		residual[i] = math.NaN()
	}

	chi := 0.0
	for i := range keepX {
		r := keepY[i] - best[i]
		residual[keepIdx[i]] = r
		if keepW != nil {
			r *= keepW[i]
		}
		chi += r * r
	}

	redchi := math.NaN()
	if dof := len(keepX) - nFree; dof > 0 {
		redchi = chi / float64(dof)
	}

	return &FitResult{
		Model:     m,
		Params:    fitted,
		Residual:  residual,
		ChiSquare: chi,
		RedChi:    redchi,
		NData:     len(keepX),
		NFree:     nFree,
	}
}

// estimateStderr fills per-parameter standard errors from the covariance
// estimate sqrt(redchi * (J^T J)^-1) at the solution, with the Jacobian
// taken over the external parameter values. Singular information matrices
// leave the stderr at NaN.
func estimateStderr(m Model, result *FitResult, freeNames []string, keepX, keepY, keepW []float64) {
	nFree := len(freeNames)
	if nFree == 0 || math.IsNaN(result.RedChi) {
		return
	}

	eval := make([]float64, len(keepX))
	residExt := func(dst, ext []float64) {
		p := result.Params.Clone()
		for i, name := range freeNames {
			param := p[name]
			param.Value = ext[i]
			p[name] = param
		}
		m.EvalTo(eval, keepX, p)
		vecmath.ScaleBlock(dst, keepY, -1)
		vecmath.AddBlockInPlace(dst, eval)
		if keepW != nil {
			vecmath.MulBlockInPlace(dst, keepW)
		}
	}

	ext := make([]float64, nFree)
	for i, name := range freeNames {
		ext[i] = result.Params[name].Value
	}

	jac := mat.NewDense(len(keepX), nFree, nil)
	fd.Jacobian(jac, residExt, ext, nil)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return
	}

	for i, name := range freeNames {
		v := result.RedChi * cov.At(i, i)
		if v < 0 {
			continue
		}
		param := result.Params[name]
		param.Stderr = math.Sqrt(v)
		result.Params[name] = param
	}
}
