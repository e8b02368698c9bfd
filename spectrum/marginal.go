package spectrum

import (
	"slices"
	"strconv"
	"strings"
)

// Coordinate freezes the free-axis values identifying one marginal slice.
// It is an immutable value; Key returns a stable map key.
type Coordinate struct {
	dims []string
	vals []float64
}

// Dims returns the free-axis names in iteration order.
func (c Coordinate) Dims() []string { return slices.Clone(c.dims) }

// Values returns the frozen coordinate values in iteration order.
func (c Coordinate) Values() []float64 { return slices.Clone(c.vals) }

// Value returns the coordinate value for one named axis.
func (c Coordinate) Value(dim string) (float64, bool) {
	for i, d := range c.dims {
		if d == dim {
			return c.vals[i], true
		}
	}

	return 0, false
}

// Key returns a deterministic string key for map lookup.
func (c Coordinate) Key() string {
	var b strings.Builder
	for i, v := range c.vals {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}

	return b.String()
}

// MarginalIterator walks every 1D slice of a spectrum along the fit axis,
// one slice per combination of free-axis coordinates, in row-major order.
// The sequence is finite, restartable, and identical on every pass.
type MarginalIterator struct {
	src      *Spectrum
	fitAxis  int
	freeAxes []int
	idx      []int
	started  bool
	done     bool
}

// Marginals returns an iterator over 1D slices along fitDim. Every other
// axis is a free axis. A spectrum whose only axis is the fit axis yields
// exactly one marginal at an empty coordinate.
func (s *Spectrum) Marginals(fitDim string) (*MarginalIterator, error) {
	ax, ok := s.AxisIndex(fitDim)
	if !ok {
		return nil, ErrUnknownDim
	}

	free := make([]int, 0, len(s.dims)-1)
	for i := range s.dims {
		if i != ax {
			free = append(free, i)
		}
	}

	return &MarginalIterator{
		src:      s,
		fitAxis:  ax,
		freeAxes: free,
		idx:      make([]int, len(free)),
	}, nil
}

// Count returns the total number of marginals: the product of the free-axis
// lengths, or one when there are no free axes.
func (it *MarginalIterator) Count() int {
	n := 1
	for _, ax := range it.freeAxes {
		n *= it.src.shape[ax]
	}

	return n
}

// X returns a copy of the fit-axis coordinate vector.
func (it *MarginalIterator) X() []float64 {
	return slices.Clone(it.src.coords[it.fitAxis])
}

// FitDim returns the fit-axis name.
func (it *MarginalIterator) FitDim() string { return it.src.dims[it.fitAxis] }

// FreeDims returns the free-axis names in iteration order.
func (it *MarginalIterator) FreeDims() []string {
	out := make([]string, len(it.freeAxes))
	for i, ax := range it.freeAxes {
		out[i] = it.src.dims[ax]
	}

	return out
}

// FreeCoords returns copies of the free-axis coordinate vectors in
// iteration order.
func (it *MarginalIterator) FreeCoords() [][]float64 {
	out := make([][]float64, len(it.freeAxes))
	for i, ax := range it.freeAxes {
		out[i] = slices.Clone(it.src.coords[ax])
	}

	return out
}

// Reset rewinds the iterator to the start of the sequence.
func (it *MarginalIterator) Reset() {
	for i := range it.idx {
		it.idx[i] = 0
	}
	it.started = false
	it.done = false
}

// Next advances to the next marginal. It returns false once the sequence is
// exhausted.
func (it *MarginalIterator) Next() bool {
	if it.done {
		return false
	}

	if !it.started {
		it.started = true
		return true
	}

	// Row-major odometer over the free axes.
	for i := len(it.idx) - 1; i >= 0; i-- {
		it.idx[i]++
		if it.idx[i] < it.src.shape[it.freeAxes[i]] {
			return true
		}
		it.idx[i] = 0
	}

	it.done = true

	return false
}

// Position returns the flat row-major position of the current marginal in
// the free-direction grid. Valid after Next has returned true.
func (it *MarginalIterator) Position() int {
	pos := 0
	for i, ax := range it.freeAxes {
		pos = pos*it.src.shape[ax] + it.idx[i]
	}

	return pos
}

// Coordinate returns the frozen free-axis values of the current marginal.
func (it *MarginalIterator) Coordinate() Coordinate {
	dims := make([]string, len(it.freeAxes))
	vals := make([]float64, len(it.freeAxes))
	for i, ax := range it.freeAxes {
		dims[i] = it.src.dims[ax]
		vals[i] = it.src.coords[ax][it.idx[i]]
	}

	return Coordinate{dims: dims, vals: vals}
}

// Marginal returns a fresh copy of the current 1D slice along the fit axis.
func (it *MarginalIterator) Marginal() []float64 {
	n := it.src.shape[it.fitAxis]
	out := make([]float64, n)
	it.CopyMarginal(out)

	return out
}

// CopyMarginal copies the current slice into dst, which must have the fit
// axis length.
func (it *MarginalIterator) CopyMarginal(dst []float64) {
	base := 0
	for i, ax := range it.freeAxes {
		base += it.idx[i] * it.src.stride[ax]
	}

	st := it.src.stride[it.fitAxis]
	for i := range dst {
		dst[i] = it.src.data[base+i*st]
	}
}

// SetMarginal writes src back into the spectrum at the current slice
// position. Used to assemble residual grids slice by slice.
func (it *MarginalIterator) SetMarginal(src []float64) {
	base := 0
	for i, ax := range it.freeAxes {
		base += it.idx[i] * it.src.stride[ax]
	}

	st := it.src.stride[it.fitAxis]
	for i, v := range src {
		it.src.data[base+i*st] = v
	}
}
