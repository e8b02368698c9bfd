package bandfit

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/cwbudde/algo-arpes/peakfit"
)

// DefaultIdentityWeights scales the (sigma, amplitude, center) component
// vectors so the three dimensions have comparable magnitude. The values
// carry no deeper meaning than that.
var DefaultIdentityWeights = [3]float64{2, 0, 10}

// Assignment is, for one slice, the fitted prefix corresponding to each
// abstract band index. It is always a permutation of the slice's own
// trackable prefixes.
type Assignment []string

// AssignmentGrid holds one Assignment per grid cell, aligned with the
// result grid it was derived from. Unresolvable cells hold nil.
type AssignmentGrid struct {
	dims     []string
	coords   [][]float64
	shape    []int
	cells    []Assignment
	prefixes []string
}

// Dims returns the free-axis names.
func (a *AssignmentGrid) Dims() []string { return slices.Clone(a.dims) }

// Shape returns the grid shape.
func (a *AssignmentGrid) Shape() []int { return slices.Clone(a.shape) }

// Bands returns the number of tracked band indices.
func (a *AssignmentGrid) Bands() int { return len(a.prefixes) }

// At returns the assignment for the cell at flat position pos, nil when
// the cell is unresolved.
func (a *AssignmentGrid) At(pos int) Assignment {
	return slices.Clone(a.cells[pos])
}

// ResolveIdentities restores consistent band labels across a fitted grid.
//
// Fits across a parameter sweep do not guarantee that the same physical
// band lands under the same prefix, especially near nodal points where
// bands cross. Each fitted component is represented as the vector
//
//	(sigma, amplitude, center) * weights / (1 + stderr)
//
// so that uncertain components contribute less. The first fitted slice is
// labeled in fit order and seeds the reference pool. Every later slice is
// matched against the already-resolved reference whose frozen coordinate
// tuple scores lowest by raw dot product (a historical proximity measure
// retained for compatibility; note it is not translation invariant), and
// the pairwise Euclidean distance matrix between the slice's components
// and the reference's labeled components is searched over all
// permutations for the labeling with the minimum total distance. The
// first permutation achieving the minimum wins.
//
// The permutation search is O(k!) in the simultaneous band count k, which
// is acceptable only because k stays small; more than a handful of
// simultaneous bands is rejected outright.
//
// Components without the center/amplitude/sigma parameter triple
// (background bands) are not tracked. Cells that are absent, or whose
// component set differs from the template, resolve to nil.
func ResolveIdentities(g *Grid, weights [3]float64) (*AssignmentGrid, error) {
	template, err := templatePrefixes(g)
	if err != nil {
		return nil, err
	}
	k := len(template)
	if k > maxResolvableBands {
		return nil, ErrTooManyBands
	}

	out := &AssignmentGrid{
		dims:     g.Dims(),
		coords:   g.Coords(),
		shape:    g.Shape(),
		cells:    make([]Assignment, g.Len()),
		prefixes: template,
	}

	perms := combin.Permutations(k, k)

	type reference struct {
		coord    []float64
		prefixes Assignment
		fit      *peakfit.FitResult
	}
	var refs []reference

	cur := make([][]float64, k)
	refVec := make([][]float64, k)
	dist := make([][]float64, k)
	for i := range dist {
		dist[i] = make([]float64, k)
	}

	for pos := 0; pos < g.Len(); pos++ {
		res, ok := g.Cell(pos)
		if !ok || !sameSet(trackablePrefixes(res), template) {
			continue
		}

		frozen := g.CoordinateValues(pos)

		// Raw dot product over coordinate tuples, strict <: the first
		// reference achieving the minimum wins.
		var closest *reference
		best := inf()
		for i := range refs {
			if d := floats.Dot(refs[i].coord, frozen); d < best {
				best = d
				closest = &refs[i]
			}
		}

		if closest == nil {
			assignment := Assignment(slices.Clone(template))
			out.cells[pos] = assignment
			refs = append(refs, reference{coord: frozen, prefixes: assignment, fit: res})
			continue
		}

		for i := 0; i < k; i++ {
			cur[i] = componentVector(res.Params, template[i], weights)
			refVec[i] = componentVector(closest.fit.Params, closest.prefixes[i], weights)
		}
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				dist[i][j] = floats.Distance(cur[i], refVec[j], 2)
			}
		}

		bestPerm := perms[0]
		bestTrace := inf()
		for _, p := range perms {
			trace := 0.0
			for i, pi := range p {
				trace += dist[i][pi]
			}
			if trace < bestTrace {
				bestTrace = trace
				bestPerm = p
			}
		}

		assignment := make(Assignment, k)
		for i, pi := range bestPerm {
			assignment[i] = closest.prefixes[pi]
		}
		out.cells[pos] = assignment
		refs = append(refs, reference{coord: frozen, prefixes: assignment, fit: res})
	}

	if len(refs) == 0 {
		return nil, ErrEmptyGrid
	}

	return out, nil
}

// componentVector represents one fitted component for identity matching.
// Non-finite standard errors contribute no down-weighting.
func componentVector(p peakfit.Params, prefix string, weights [3]float64) []float64 {
	names := [3]string{"sigma", "amplitude", "center"}
	out := make([]float64, 3)
	for i, n := range names {
		se := p.Stderr(prefix + n)
		if !isFinite(se) {
			se = 0
		}
		out[i] = p.Value(prefix+n) * weights[i] / (1 + se)
	}

	return out
}

// templatePrefixes returns the trackable prefixes of the first present
// cell, in fit order.
func templatePrefixes(g *Grid) ([]string, error) {
	for pos := 0; pos < g.Len(); pos++ {
		if res, ok := g.Cell(pos); ok {
			prefixes := trackablePrefixes(res)
			if len(prefixes) == 0 {
				return nil, ErrNoBands
			}
			return prefixes, nil
		}
	}

	return nil, ErrEmptyGrid
}

// trackablePrefixes lists the component prefixes carrying the peak
// parameter triple, in fit order.
func trackablePrefixes(res *peakfit.FitResult) []string {
	var components []peakfit.Model
	if c, ok := res.Model.(*peakfit.Composite); ok {
		components = c.Components()
	} else {
		components = []peakfit.Model{res.Model}
	}

	var out []string
	for _, m := range components {
		if hasPeakParams(m) {
			out = append(out, m.Prefix())
		}
	}

	return out
}

// hasPeakParams reports whether a model exposes center, amplitude, and
// sigma under its prefix.
func hasPeakParams(m peakfit.Model) bool {
	need := map[string]bool{
		m.Prefix() + "center":    false,
		m.Prefix() + "amplitude": false,
		m.Prefix() + "sigma":     false,
	}
	for _, n := range m.Names() {
		if _, ok := need[n]; ok {
			need[n] = true
		}
	}
	for _, found := range need {
		if !found {
			return false
		}
	}

	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}

	return true
}
