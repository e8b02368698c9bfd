// Package spectrum provides a labeled N-dimensional intensity array and
// iteration over its one-dimensional marginals.
//
// A Spectrum couples a dense row-major data block with named, ordered axes
// and a numeric coordinate vector per axis. It is the single numeric
// representation that all analysis code in this module operates on; loaders
// convert instrument data into a Spectrum once at the boundary.
//
// # Usage
//
// Build a spectrum and walk its marginals along the fit axis:
//
//	s, _ := spectrum.New(
//	    []string{"eV", "phi"},
//	    [][]float64{evCoords, phiCoords},
//	    intensities,
//	)
//	it, _ := s.Marginals("eV")
//	for it.Next() {
//	    coord := it.Coordinate() // frozen free-axis values
//	    y := it.Marginal()       // intensity along eV at coord
//	    _ = coord
//	    _ = y
//	}
//
// Iteration order is row-major over the free-axis coordinate lists and is
// identical on every pass; Reset rewinds the iterator.
package spectrum
