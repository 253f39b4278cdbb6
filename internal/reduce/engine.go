// Package reduce implements the reduction engine: validation, dtype
// routing and device dispatch for axis reductions.
//
// The engine depends only on the tensor.Device interface and on the
// AxisReducer capability below, discovered by type assertion, so backends
// are added without touching dispatch logic.
package reduce

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Op selects the reduction kind.
type Op int

// Supported reduction kinds.
const (
	Sum Op = iota
	ArgMin
	ArgMax
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case Sum:
		return "sum"
	case ArgMin:
		return "arg_min"
	case ArgMax:
		return "arg_max"
	default:
		return "unknown"
	}
}

// AxisReducer is the capability a device implements to serve reductions.
// Implementations may assume axis, dtype and device/storage agreement have
// been validated by the engine.
type AxisReducer interface {
	SumAxis(t *tensor.Tensor, axis int) (*tensor.Tensor, error)
	ArgReduce(t *tensor.Tensor, largest bool, axis int) (*tensor.Tensor, error)
}

// sumDTypes is the fixed promotion table for Sum: result dtype per input
// dtype. Sum preserves the input dtype; 16-bit floats may accumulate wider
// internally without changing the observable result type.
var sumDTypes = map[tensor.DataType]tensor.DataType{
	tensor.Float32:  tensor.Float32,
	tensor.Float64:  tensor.Float64,
	tensor.Float16:  tensor.Float16,
	tensor.BFloat16: tensor.BFloat16,
	tensor.Int64:    tensor.Int64,
}

// argDTypes enumerates inputs accepted by the arg-reductions; the result
// dtype is always Uint32.
var argDTypes = map[tensor.DataType]bool{
	tensor.Float32:  true,
	tensor.Float64:  true,
	tensor.Float16:  true,
	tensor.BFloat16: true,
	tensor.Int64:    true,
}

// ResultDType returns the dtype the reduction produces for the given input
// dtype, per the fixed promotion table. Reports false for unsupported
// combinations.
func ResultDType(op Op, in tensor.DataType) (tensor.DataType, bool) {
	switch op {
	case Sum:
		out, ok := sumDTypes[in]
		return out, ok
	case ArgMin, ArgMax:
		if argDTypes[in] {
			return tensor.Uint32, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Reduce collapses the given axis of t: Sum accumulates, ArgMin/ArgMax
// yield the index of the extremum per remaining position. The result is a
// new tensor on t's device; t is never mutated, on failure included.
//
// Contiguity is not required: the device kernels traverse arbitrary
// strided layouts, so transposed views reduce correctly without copying.
func Reduce(t *tensor.Tensor, op Op, axis int) (*tensor.Tensor, error) {
	if axis < 0 || axis >= t.Rank() {
		return nil, fmt.Errorf("%s along axis %d of rank-%d tensor: %w",
			op, axis, t.Rank(), tensor.ErrInvalidAxis)
	}
	if err := t.CheckDevice(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := ResultDType(op, t.DType()); !ok {
		return nil, fmt.Errorf("%s over %s: %w", op, t.DType(), tensor.ErrUnsupportedDType)
	}

	dev, ok := t.Device().(AxisReducer)
	if !ok {
		return nil, fmt.Errorf("%s on %s: %w", op, t.Device().Name(), tensor.ErrUnsupportedDevice)
	}

	switch op {
	case Sum:
		return dev.SumAxis(t, axis)
	case ArgMin:
		return dev.ArgReduce(t, false, axis)
	case ArgMax:
		return dev.ArgReduce(t, true, axis)
	default:
		return nil, fmt.Errorf("reduction %d: %w", op, tensor.ErrUnsupportedDType)
	}
}
