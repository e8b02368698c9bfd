package bandfit

import (
	"slices"

	"github.com/cwbudde/algo-arpes/peakfit"
	"github.com/cwbudde/algo-arpes/spectrum"
)

// Grid is a fixed-shape container of per-slice fit results over the
// free-direction coordinate grid. Cells are explicitly present or absent;
// a slice that could not be fit stays absent and downstream consumers
// propagate the gap as NaN.
type Grid struct {
	dims   []string
	coords [][]float64
	shape  []int
	cells  []*peakfit.FitResult
}

// newGrid builds an empty grid matching a marginal iterator's free axes.
// A sweep with zero free axes gets a synthetic one-point "point" axis so
// that the grid, and everything extracted from it, keeps at least one
// dimension.
func newGrid(it *spectrum.MarginalIterator) *Grid {
	dims := it.FreeDims()
	coords := it.FreeCoords()
	if len(dims) == 0 {
		dims = []string{"point"}
		coords = [][]float64{{0}}
	}

	shape := make([]int, len(coords))
	size := 1
	for i, c := range coords {
		shape[i] = len(c)
		size *= len(c)
	}

	return &Grid{
		dims:   dims,
		coords: coords,
		shape:  shape,
		cells:  make([]*peakfit.FitResult, size),
	}
}

// Dims returns the free-axis names.
func (g *Grid) Dims() []string { return slices.Clone(g.dims) }

// Coords returns copies of the free-axis coordinate vectors.
func (g *Grid) Coords() [][]float64 {
	out := make([][]float64, len(g.coords))
	for i, c := range g.coords {
		out[i] = slices.Clone(c)
	}

	return out
}

// Shape returns the grid shape.
func (g *Grid) Shape() []int { return slices.Clone(g.shape) }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Cell returns the fit at flat row-major position pos, with ok=false for
// absent cells.
func (g *Grid) Cell(pos int) (*peakfit.FitResult, bool) {
	r := g.cells[pos]

	return r, r != nil
}

func (g *Grid) set(pos int, r *peakfit.FitResult) {
	g.cells[pos] = r
}

// CoordinateValues returns the frozen free-axis coordinate values of the
// cell at flat position pos, in axis order.
func (g *Grid) CoordinateValues(pos int) []float64 {
	out := make([]float64, len(g.shape))
	for i := len(g.shape) - 1; i >= 0; i-- {
		n := g.shape[i]
		out[i] = g.coords[i][pos%n]
		pos /= n
	}

	return out
}

// Present returns the number of non-absent cells.
func (g *Grid) Present() int {
	n := 0
	for _, c := range g.cells {
		if c != nil {
			n++
		}
	}

	return n
}
