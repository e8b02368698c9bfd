// Package peakfit provides 1D spectral line-shape models and bounded
// nonlinear least-squares fitting.
//
// A Model is a named, parameterized curve: it evaluates itself on a
// coordinate grid, produces an initial parameter guess from data, and
// namespaces its parameters with a prefix so that models can be summed into
// composites without collisions. The supplied shapes are the ones that occur
// in photoemission line-shape work: Lorentzian and Gaussian peaks plus
// linear, quadratic, affine, and constant backgrounds.
//
// Fitting minimizes the (optionally weighted) residual with the
// Levenberg-Marquardt solver. Bounded parameters are handled by MINUIT-style
// sine transforms, and parameter standard errors come from the residual
// covariance at the solution. Non-finite samples are dropped before the fit.
//
// # Usage
//
// Fit a Lorentzian plus an affine background:
//
//	peak := peakfit.NewLorentzian("a_")
//	bg := peakfit.NewAffineBackground("bg_")
//	model, _ := peakfit.Add(peak, bg)
//
//	res, err := peakfit.GuessFit(model, data, x, nil)
//	if err != nil {
//	    // input contract violation; per-sample trouble never errors
//	}
//	center := res.Params.Value("a_center")
//
// A fit that fails to converge still returns the solver's best estimate;
// inspect FitResult.ChiSquare or the residual to judge quality.
package peakfit
