package peakfit

import "errors"

// Errors returned by model construction and fitting.
var (
	ErrDuplicateParam   = errors.New("peakfit: duplicate parameter name in composite")
	ErrNoModels         = errors.New("peakfit: at least one model required")
	ErrLengthMismatch   = errors.New("peakfit: data and x must have equal length")
	ErrIncompleteParams = errors.New("peakfit: initial parameters missing a model parameter")
	ErrTooFewSamples    = errors.New("peakfit: not enough finite samples to fit")
	ErrWeightLength     = errors.New("peakfit: weights must match data length")
)

// Model is a named, parameterized 1D line shape.
//
// Parameters are namespaced by the model's prefix: Names returns the
// prefix-qualified parameter names, and Eval/Guess address parameters under
// those names. Models compose under addition; see Add.
type Model interface {
	// Prefix returns the parameter namespace, usually ending in "_".
	Prefix() string

	// Names returns the prefix-qualified parameter names.
	Names() []string

	// EvalTo evaluates the model on x into dst (len(dst) == len(x)).
	EvalTo(dst, x []float64, p Params)

	// Guess derives a best-effort initial parameter set from data.
	Guess(data, x []float64) Params
}

// Eval evaluates a model on x, allocating the result.
func Eval(m Model, x []float64, p Params) []float64 {
	dst := make([]float64, len(x))
	m.EvalTo(dst, x, p)

	return dst
}
