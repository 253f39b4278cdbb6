package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// addable constrains the accumulator types used by the sum traversal.
type addable interface {
	~float32 | ~float64 | ~int64
}

// ordered constrains the comparison types used by the arg-reduce traversal.
type ordered interface {
	~float32 | ~float64 | ~int64
}

// SumAxis sums tensor elements along the given axis. The result has the
// input's shape with that axis removed and the input's dtype; 16-bit float
// inputs accumulate in float32 internally. The caller (the reduction
// engine) has already validated axis, device and dtype.
func (b *Backend) SumAxis(t *tensor.Tensor, axis int) (*tensor.Tensor, error) {
	out, err := tensor.New(reducedDims(t.Dims(), axis), t.DType(), b)
	if err != nil {
		return nil, fmt.Errorf("sum: %w", err)
	}

	layout := t.Layout()
	switch t.DType() {
	case tensor.Float32, tensor.Float16, tensor.BFloat16:
		load, _ := floatLoader(t.Storage())
		store, _ := floatStorer(out.Storage())
		sumAxis[float32](layout, axis, load, store, b.parallel)
	case tensor.Float64:
		in := t.Storage().Float64s()
		dst := out.Storage().Float64s()
		sumAxis[float64](layout, axis,
			func(i int) float64 { return in[i] },
			func(g int, v float64) { dst[g] = v },
			b.parallel)
	case tensor.Int64:
		in := t.Storage().Int64s()
		dst := out.Storage().Int64s()
		sumAxis[int64](layout, axis,
			func(i int) int64 { return in[i] },
			func(g int, v int64) { dst[g] = v },
			b.parallel)
	default:
		out.Release()
		return nil, fmt.Errorf("sum over %s: %w", t.DType(), tensor.ErrUnsupportedDType)
	}

	return out, nil
}

// ArgReduce returns, for each position outside the reduced axis, the index
// along that axis attaining the extremum (maximum when largest is true).
// Comparison is strict; the first index attaining the extremum wins. The
// result dtype is Uint32.
func (b *Backend) ArgReduce(t *tensor.Tensor, largest bool, axis int) (*tensor.Tensor, error) {
	out, err := tensor.New(reducedDims(t.Dims(), axis), tensor.Uint32, b)
	if err != nil {
		return nil, fmt.Errorf("arg-reduce: %w", err)
	}

	layout := t.Layout()
	dst := out.Storage().Uint32s()
	store := func(g int, idx uint32) { dst[g] = idx }

	switch t.DType() {
	case tensor.Float32, tensor.Float16, tensor.BFloat16:
		load, _ := floatLoader(t.Storage())
		argReduce[float32](layout, axis, largest, load, store, b.parallel)
	case tensor.Float64:
		in := t.Storage().Float64s()
		argReduce[float64](layout, axis, largest,
			func(i int) float64 { return in[i] }, store, b.parallel)
	case tensor.Int64:
		in := t.Storage().Int64s()
		argReduce[int64](layout, axis, largest,
			func(i int) int64 { return in[i] }, store, b.parallel)
	default:
		out.Release()
		return nil, fmt.Errorf("arg-reduce over %s: %w", t.DType(), tensor.ErrUnsupportedDType)
	}

	return out, nil
}

// reducedDims returns dims with the given axis removed. Reducing the only
// axis of a vector yields a scalar shape.
func reducedDims(dims tensor.Shape, axis int) tensor.Shape {
	out := make(tensor.Shape, 0, len(dims)-1)
	for i, d := range dims {
		if i != axis {
			out = append(out, d)
		}
	}
	return out
}

// groupBase computes the element offset of reduction group g: the offset
// of the first element of the run obtained by fixing every non-axis
// coordinate. Groups enumerate the non-axis coordinates in row-major order,
// which matches the packed row-major layout of the result.
func groupBase(l tensor.Layout, axis, g int) int {
	dims := l.Dims()
	strides := l.Strides()
	base := l.Offset()
	rem := g
	for d := l.Rank() - 1; d >= 0; d-- {
		if d == axis {
			continue
		}
		base += (rem % dims[d]) * strides[d]
		rem /= dims[d]
	}
	return base
}

// sumAxis is the dtype-generic sum traversal. The contiguous last-axis
// case walks packed rows; every other case (transposed views, leading
// axes) takes the generalized strided path, stepping by the reduced
// axis's stride.
func sumAxis[A addable](l tensor.Layout, axis int, load func(elem int) A, store func(group int, v A), cfg parallel.Config) {
	dims := l.Dims()
	dimSize := dims[axis]
	dimStride := l.Strides()[axis]
	groups := l.ElemCount() / dimSize

	if l.IsContiguous() && axis == l.Rank()-1 {
		parallel.For(groups, func(g int) {
			base := l.Offset() + g*dimSize
			var acc A
			for k := 0; k < dimSize; k++ {
				acc += load(base + k)
			}
			store(g, acc)
		}, cfg)
		return
	}

	parallel.For(groups, func(g int) {
		base := groupBase(l, axis, g)
		var acc A
		for k := 0; k < dimSize; k++ {
			acc += load(base + k*dimStride)
		}
		store(g, acc)
	}, cfg)
}

// argReduce is the dtype-generic arg-extremum traversal. Strict
// comparisons scanning in increasing index order give the first-occurrence
// tie-break.
func argReduce[A ordered](l tensor.Layout, axis int, largest bool, load func(elem int) A, store func(group int, idx uint32), cfg parallel.Config) {
	dims := l.Dims()
	dimSize := dims[axis]
	dimStride := l.Strides()[axis]
	groups := l.ElemCount() / dimSize

	parallel.For(groups, func(g int) {
		base := groupBase(l, axis, g)
		best := load(base)
		bestIdx := 0
		for k := 1; k < dimSize; k++ {
			v := load(base + k*dimStride)
			if (largest && v > best) || (!largest && v < best) {
				best = v
				bestIdx = k
			}
		}
		store(g, uint32(bestIdx))
	}, cfg)
}
