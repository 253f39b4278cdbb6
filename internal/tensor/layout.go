package tensor

import "fmt"

// Layout describes how a tensor's logical indices map onto its backing
// storage: per-dimension sizes, per-dimension strides (in elements) and a
// start offset (in elements) into the buffer.
//
// Layouts are immutable value types and always well-formed by construction:
// len(dims) == len(strides) holds for every Layout produced by this package.
type Layout struct {
	dims    Shape
	strides []int
	offset  int
}

// NewLayout creates a contiguous row-major layout for the given dimensions.
func NewLayout(dims Shape) Layout {
	return Layout{
		dims:    dims.Clone(),
		strides: dims.ComputeStrides(),
		offset:  0,
	}
}

// NewLayoutStrided creates a layout with explicit strides and start offset.
// Used by view operations (transpose, slicing) that remap existing storage.
func NewLayoutStrided(dims Shape, strides []int, offset int) Layout {
	if len(dims) != len(strides) {
		panic(fmt.Sprintf("layout: %d dims but %d strides", len(dims), len(strides)))
	}
	return Layout{
		dims:    dims.Clone(),
		strides: append([]int(nil), strides...),
		offset:  offset,
	}
}

// Dims returns the dimension sizes.
func (l Layout) Dims() Shape {
	return l.dims
}

// Strides returns the per-dimension strides in elements.
func (l Layout) Strides() []int {
	return l.strides
}

// Offset returns the start offset into the backing buffer, in elements.
func (l Layout) Offset() int {
	return l.offset
}

// Rank returns the number of dimensions.
func (l Layout) Rank() int {
	return len(l.dims)
}

// ElemCount returns the total number of logical elements.
func (l Layout) ElemCount() int {
	return l.dims.NumElements()
}

// LastStride returns the stride of the final (innermost) dimension.
// A scalar layout reports 1.
func (l Layout) LastStride() int {
	if len(l.strides) == 0 {
		return 1
	}
	return l.strides[len(l.strides)-1]
}

// IsContiguous reports whether the strides match a dense row-major packing
// of the dims, with no gaps. Transposed and sliced views are generally not
// contiguous and must be traversed with the generalized strided path.
func (l Layout) IsContiguous() bool {
	expected := l.dims.ComputeStrides()
	for i := range l.strides {
		if l.strides[i] != expected[i] {
			return false
		}
	}
	return true
}

// Transpose returns a layout with dimensions d0 and d1 swapped.
// Storage is untouched; only dims and strides are permuted.
func (l Layout) Transpose(d0, d1 int) (Layout, error) {
	rank := l.Rank()
	if d0 < 0 || d0 >= rank || d1 < 0 || d1 >= rank {
		return Layout{}, fmt.Errorf("transpose dims (%d, %d) for rank %d: %w", d0, d1, rank, ErrInvalidAxis)
	}

	dims := l.dims.Clone()
	strides := append([]int(nil), l.strides...)
	dims[d0], dims[d1] = dims[d1], dims[d0]
	strides[d0], strides[d1] = strides[d1], strides[d0]

	return Layout{dims: dims, strides: strides, offset: l.offset}, nil
}

// String returns a human-readable representation of the layout.
func (l Layout) String() string {
	return fmt.Sprintf("Layout{dims: %v, strides: %v, offset: %d}", l.dims, l.strides, l.offset)
}
