package cpu

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// SoftmaxLastAxis computes softmax along the innermost dimension. This is
// the generic-engine path serving backends without a fused kernel: it
// handles arbitrary strided layouts, at the cost of one host pass per row.
//
// Supported dtypes match the fused dispatcher's gate (f32, f16, bf16);
// computation happens in float32 with the max-shift trick, results encode
// back to the input dtype.
func (b *Backend) SoftmaxLastAxis(t *tensor.Tensor) (*tensor.Tensor, error) {
	if err := t.CheckDevice(); err != nil {
		return nil, fmt.Errorf("softmax: %w", err)
	}
	if t.Rank() == 0 {
		return nil, fmt.Errorf("softmax of scalar: %w", tensor.ErrInvalidAxis)
	}

	load, ok := floatLoader(t.Storage())
	if !ok {
		return nil, fmt.Errorf("softmax over %s: %w", t.DType(), tensor.ErrUnsupportedDType)
	}

	out, err := tensor.New(t.Dims(), t.DType(), b)
	if err != nil {
		return nil, fmt.Errorf("softmax: %w", err)
	}
	store, _ := floatStorer(out.Storage())
	outLoad, _ := floatLoader(out.Storage())

	l := t.Layout()
	lastDim := l.Dims()[l.Rank()-1]
	lastStride := l.LastStride()
	rows := l.ElemCount() / lastDim

	parallel.For(rows, func(r int) {
		base := groupBase(l, l.Rank()-1, r)

		maxVal := load(base)
		for k := 1; k < lastDim; k++ {
			maxVal = math32.Max(maxVal, load(base+k*lastStride))
		}

		var sum float32
		outBase := r * lastDim
		for k := 0; k < lastDim; k++ {
			e := math32.Exp(load(base+k*lastStride) - maxVal)
			store(outBase+k, e)
			sum += e
		}

		inv := 1 / sum
		for k := 0; k < lastDim; k++ {
			store(outBase+k, outLoad(outBase+k)*inv)
		}
	}, b.parallel)

	return out, nil
}
