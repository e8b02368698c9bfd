// Package bandfit fits superpositions of line-shape models across every
// marginal of a spectrum and tracks band identities over the sweep.
//
// Two sweep modes are provided. FitBands peels initial per-band estimates
// off a reference marginal by iterative residual reduction, then fits the
// combined composite at every slice, seeding each fit from the
// nearest already-fit neighbor. FitPatternedBands instead interpolates each
// band's expected center from caller-supplied control points and fits every
// slice independently, which makes that sweep embarrassingly parallel.
//
// After a sweep, ResolveIdentities restores consistent band labels across
// the grid (fits near nodal points can swap which peak lands under which
// prefix), and ExtractBands turns the labeled grid into per-band center,
// amplitude, and width arrays with standard errors.
//
// # Usage
//
//	bands := []bandfit.BandSpec{
//	    {Name: "a_", Shape: bandfit.ShapeLorentzian},
//	    {Name: "b_", Shape: bandfit.ShapeLorentzian},
//	}
//	scape, err := bandfit.FitBands(data, "phi", bands)
//	if err != nil {
//	    // invalid input; per-slice failures show up as absent cells instead
//	}
//	resolved, _ := bandfit.UnpackBands(scape.Results)
//	for _, band := range resolved {
//	    _ = band.Center // center positions over the free-direction grid
//	}
//
// Slices that cannot be fit leave gaps: absent grid cells, zero residual
// rows, and NaN entries in extracted bands. The output shape never changes.
package bandfit
