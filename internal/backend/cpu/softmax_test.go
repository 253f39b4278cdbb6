package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/ember-ml/ember/internal/tensor"
)

func TestSoftmaxLastAxisRows(t *testing.T) {
	b := New()
	tt := newF32(t, b, tensor.Shape{2, 4}, []float32{1, 2, 3, 4, 1, 1, 1, 1})
	defer tt.Release()

	out, err := b.SoftmaxLastAxis(tt)
	require.NoError(t, err)
	defer out.Release()

	vals := out.Storage().Float32s()
	require.Len(t, vals, 8)

	var row0 float32
	for _, v := range vals[:4] {
		row0 += v
	}
	assert.InDelta(t, 1.0, row0, 1e-6)
	for i := 1; i < 4; i++ {
		assert.Greater(t, vals[i], vals[i-1])
	}

	// Uniform inputs normalize to 1/n.
	for _, v := range vals[4:] {
		assert.InDelta(t, 0.25, v, 1e-6)
	}
}

func TestSoftmaxLastAxisLargeInputsStable(t *testing.T) {
	// Without the max shift, exp(1000) overflows to +Inf and the row
	// collapses to NaN.
	b := New()
	tt := newF32(t, b, tensor.Shape{1, 3}, []float32{1000, 1001, 1002})
	defer tt.Release()

	out, err := b.SoftmaxLastAxis(tt)
	require.NoError(t, err)
	defer out.Release()

	var sum float32
	for _, v := range out.Storage().Float32s() {
		assert.False(t, v != v, "softmax produced NaN")
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestSoftmaxLastAxisStridedView(t *testing.T) {
	// Softmax over the last axis of a transposed view equals softmax over
	// the packed copy of that view.
	b := New()
	tt := newF32(t, b, tensor.Shape{2, 3}, []float32{0.5, -1, 2, 3, 0, -2})
	defer tt.Release()

	view, err := tt.Transpose(0, 1)
	require.NoError(t, err)
	defer view.Release()

	packed, err := view.Contiguous()
	require.NoError(t, err)
	defer packed.Release()

	fromView, err := b.SoftmaxLastAxis(view)
	require.NoError(t, err)
	defer fromView.Release()

	fromPacked, err := b.SoftmaxLastAxis(packed)
	require.NoError(t, err)
	defer fromPacked.Release()

	assert.Equal(t, fromPacked.Storage().Float32s(), fromView.Storage().Float32s())
}

func TestSoftmaxLastAxisHalf(t *testing.T) {
	b := New()
	tt := newHalf(t, b, tensor.Shape{1, 4}, tensor.Float16, []float32{0, 1, 2, 3})
	defer tt.Release()

	out, err := b.SoftmaxLastAxis(tt)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, tensor.Float16, out.DType())
	var sum float32
	for _, bits := range out.Storage().Uint16s() {
		sum += float16.Frombits(bits).Float32()
	}
	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestSoftmaxLastAxisScalar(t *testing.T) {
	b := New()
	tt, err := tensor.New(tensor.Shape{}, tensor.Float32, b)
	require.NoError(t, err)
	defer tt.Release()

	_, err = b.SoftmaxLastAxis(tt)
	assert.ErrorIs(t, err, tensor.ErrInvalidAxis)
}

func TestSoftmaxLastAxisUnsupportedDType(t *testing.T) {
	b := New()
	tt, err := tensor.New(tensor.Shape{4}, tensor.Int64, b)
	require.NoError(t, err)
	defer tt.Release()

	_, err = b.SoftmaxLastAxis(tt)
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)
}
