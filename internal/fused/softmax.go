// Package fused implements the fused-kernel dispatcher: the narrow path
// that bypasses the generic reduction engine and invokes one precompiled
// device kernel directly, under stricter layout preconditions.
package fused

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// SoftmaxDevice is the capability a backend implements to serve fused
// last-axis softmax. The kernel name is resolved by the dispatcher from
// the compatibility table; the backend submits the invocation to its
// command queue without blocking for completion.
type SoftmaxDevice interface {
	SubmitLastSoftmax(t *tensor.Tensor, kernel string) (*tensor.Tensor, error)
}

// softmaxKernels is the fixed (backend, dtype) compatibility table. The
// backend half of the match is the SoftmaxDevice assertion; the dtype half
// is this map. Resolved on every invocation, never cached.
var softmaxKernels = map[tensor.DataType]string{
	tensor.Float32:  "softmax_f32",
	tensor.Float16:  "softmax_f16",
	tensor.BFloat16: "softmax_bf16",
}

// ByteOffset converts a layout's element start offset into the byte offset
// passed to a device kernel. This is the single logical-to-byte conversion
// at the dispatch boundary.
func ByteOffset(l tensor.Layout, dtype tensor.DataType) int {
	return l.Offset() * dtype.Size()
}

// SoftmaxLastAxis applies softmax along the innermost dimension using the
// device's fused kernel. The result has the input's shape and dtype, on
// the input's device; completion is observed only after a subsequent
// Device.Synchronize.
//
// Backends without fused kernels fail with ErrUnsupportedDevice rather
// than silently succeeding; the generic engine path serves those backends.
// Preconditions are checked, not assumed: the layout must be fully
// contiguous with a last-dimension stride of 1 element, and for 16-bit
// dtypes each row must start and end on a 4-byte boundary (the packed
// kernels address the buffer one 32-bit word at a time).
func SoftmaxLastAxis(t *tensor.Tensor) (*tensor.Tensor, error) {
	if err := t.CheckDevice(); err != nil {
		return nil, fmt.Errorf("fused softmax: %w", err)
	}

	dev, ok := t.Device().(SoftmaxDevice)
	if !ok {
		return nil, fmt.Errorf("fused softmax on %s: %w", t.Device().Name(), tensor.ErrUnsupportedDevice)
	}

	kernel, ok := softmaxKernels[t.DType()]
	if !ok {
		return nil, fmt.Errorf("fused softmax over %s: %w", t.DType(), tensor.ErrUnsupportedDType)
	}

	l := t.Layout()
	if l.Rank() == 0 {
		return nil, fmt.Errorf("fused softmax of scalar: %w", tensor.ErrInvalidAxis)
	}
	if !l.IsContiguous() || l.LastStride() != 1 {
		return nil, fmt.Errorf("fused softmax requires a contiguous last-stride-1 layout, got %s: %w",
			l, tensor.ErrLayoutUnsupported)
	}
	if t.DType().IsHalf() {
		lastDim := l.Dims()[l.Rank()-1]
		if lastDim*t.DType().Size()%4 != 0 || ByteOffset(l, t.DType())%4 != 0 {
			return nil, fmt.Errorf("fused %s softmax requires 4-byte aligned rows (last dim %d): %w",
				t.DType(), lastDim, tensor.ErrLayoutUnsupported)
		}
	}

	return dev.SubmitLastSoftmax(t, kernel)
}
