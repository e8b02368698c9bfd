package spectrum

import (
	"errors"
	"math"
	"slices"
)

// Errors returned by spectrum constructors and accessors.
var (
	ErrNoDims       = errors.New("spectrum: at least one dimension required")
	ErrDimMismatch  = errors.New("spectrum: dims and coordinate vectors must correspond one to one")
	ErrEmptyAxis    = errors.New("spectrum: coordinate vector must not be empty")
	ErrDuplicateDim = errors.New("spectrum: duplicate dimension name")
	ErrSizeMismatch = errors.New("spectrum: data length must equal the product of axis lengths")
	ErrUnknownDim   = errors.New("spectrum: no such dimension")
	ErrShapeDiffers = errors.New("spectrum: operand shapes differ")
)

// Spectrum is a dense N-dimensional intensity array with named axes.
//
// Data is stored row-major in the axis order given at construction. The
// zero value is not usable; construct with New or Zeros.
type Spectrum struct {
	dims   []string
	coords [][]float64
	data   []float64
	shape  []int
	stride []int
}

// New constructs a Spectrum from dimension names, per-dimension coordinate
// vectors, and a row-major data block. The inputs are copied.
func New(dims []string, coords [][]float64, data []float64) (*Spectrum, error) {
	if len(dims) == 0 {
		return nil, ErrNoDims
	}

	if len(coords) != len(dims) {
		return nil, ErrDimMismatch
	}

	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if _, dup := seen[d]; dup {
			return nil, ErrDuplicateDim
		}
		seen[d] = struct{}{}
	}

	size := 1
	shape := make([]int, len(dims))
	for i, c := range coords {
		if len(c) == 0 {
			return nil, ErrEmptyAxis
		}
		shape[i] = len(c)
		size *= len(c)
	}

	if len(data) != size {
		return nil, ErrSizeMismatch
	}

	s := &Spectrum{
		dims:   slices.Clone(dims),
		coords: make([][]float64, len(coords)),
		data:   slices.Clone(data),
		shape:  shape,
		stride: strides(shape),
	}
	for i, c := range coords {
		s.coords[i] = slices.Clone(c)
	}

	return s, nil
}

// Zeros constructs a zero-filled Spectrum with the given axes.
func Zeros(dims []string, coords [][]float64) (*Spectrum, error) {
	size := 1
	for _, c := range coords {
		size *= len(c)
	}

	return New(dims, coords, make([]float64, size))
}

// strides computes row-major strides for a shape.
func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}

	return st
}

// NDim returns the number of axes.
func (s *Spectrum) NDim() int { return len(s.dims) }

// Len returns the total number of samples.
func (s *Spectrum) Len() int { return len(s.data) }

// Dims returns a copy of the axis names in storage order.
func (s *Spectrum) Dims() []string { return slices.Clone(s.dims) }

// Shape returns a copy of the axis lengths in storage order.
func (s *Spectrum) Shape() []int { return slices.Clone(s.shape) }

// AxisIndex returns the storage position of the named axis.
func (s *Spectrum) AxisIndex(dim string) (int, bool) {
	for i, d := range s.dims {
		if d == dim {
			return i, true
		}
	}

	return 0, false
}

// Coord returns a copy of the coordinate vector for the named axis.
func (s *Spectrum) Coord(dim string) ([]float64, error) {
	i, ok := s.AxisIndex(dim)
	if !ok {
		return nil, ErrUnknownDim
	}

	return slices.Clone(s.coords[i]), nil
}

// Values returns the backing row-major data block. The slice is shared with
// the spectrum; callers that need isolation should Clone first.
func (s *Spectrum) Values() []float64 { return s.data }

// At returns the sample at the given multi-index (one index per axis, in
// storage order). Indices are not bounds-checked beyond slice semantics.
func (s *Spectrum) At(idx ...int) float64 {
	return s.data[s.flat(idx)]
}

// SetAt stores a sample at the given multi-index.
func (s *Spectrum) SetAt(v float64, idx ...int) {
	s.data[s.flat(idx)] = v
}

func (s *Spectrum) flat(idx []int) int {
	off := 0
	for i, j := range idx {
		off += j * s.stride[i]
	}

	return off
}

// Clone returns a deep copy.
func (s *Spectrum) Clone() *Spectrum {
	out, _ := New(s.dims, s.coords, s.data)
	return out
}

// SumAlong sums out the named axis, returning a spectrum over the remaining
// axes. Summing out the only axis is an error; use Values directly instead.
func (s *Spectrum) SumAlong(dim string) (*Spectrum, error) {
	ax, ok := s.AxisIndex(dim)
	if !ok {
		return nil, ErrUnknownDim
	}

	if len(s.dims) == 1 {
		return nil, ErrNoDims
	}

	outDims := make([]string, 0, len(s.dims)-1)
	outCoords := make([][]float64, 0, len(s.dims)-1)
	for i, d := range s.dims {
		if i == ax {
			continue
		}
		outDims = append(outDims, d)
		outCoords = append(outCoords, s.coords[i])
	}

	out, err := Zeros(outDims, outCoords)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(s.dims))
	outIdx := make([]int, len(outDims))
	for f := range s.data {
		s.unflatten(f, idx)
		k := 0
		for i, j := range idx {
			if i == ax {
				continue
			}
			outIdx[k] = j
			k++
		}
		out.data[out.flat(outIdx)] += s.data[f]
	}

	return out, nil
}

func (s *Spectrum) unflatten(flat int, idx []int) {
	for i, st := range s.stride {
		idx[i] = flat / st
		flat %= st
	}
}

// Div divides elementwise by other, which must share the same shape. No
// special-casing of zero denominators: the result may contain Inf or NaN,
// and callers are expected to handle both.
func (s *Spectrum) Div(other *Spectrum) (*Spectrum, error) {
	if !slices.Equal(s.shape, other.shape) {
		return nil, ErrShapeDiffers
	}

	out := s.Clone()
	for i := range out.data {
		out.data[i] /= other.data[i]
	}

	return out, nil
}

// Fill sets every sample to v. Useful to seed NaN-filled result grids.
func (s *Spectrum) Fill(v float64) {
	for i := range s.data {
		s.data[i] = v
	}
}

// IsFinite reports whether every sample is finite.
func (s *Spectrum) IsFinite() bool {
	for _, v := range s.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}
