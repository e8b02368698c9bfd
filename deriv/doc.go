// Package deriv sharpens band dispersions by differentiation.
//
// Raw photoemission intensity often shows bands as broad ridges. The
// classic enhancement tricks all build on derivatives along the spectrum
// axes: plain first and second derivatives, the maximum-curvature method
// of Zhang et al. (Rev. Sci. Instrum. 82, 043712 (2011)), and the
// minimum-gradient method. All of them amplify noise, so a Gaussian
// pre-smoothing pass usually comes first.
//
// # Usage
//
//	smoothed, err := deriv.SmoothGaussian(cut, map[string]float64{"eV": 0.02}, 3)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sharp, err := deriv.Curvature2D(smoothed, "phi", "eV", 0.1, 1)
//
// Derivatives are taken with respect to the axis coordinates, so the
// results carry physical units and tolerate nonuniform axis spacing.
package deriv
