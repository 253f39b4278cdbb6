package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

// bareDevice implements tensor.Device but no reduction capability.
type bareDevice struct{}

func (d *bareDevice) Kind() tensor.DeviceKind { return tensor.Metal }
func (d *bareDevice) Name() string            { return "bare-metal" }
func (d *bareDevice) NewStorage(dtype tensor.DataType, numElements int) (*tensor.Storage, error) {
	return tensor.NewHostStorage(tensor.Metal, dtype, numElements), nil
}
func (d *bareDevice) Synchronize() error { return nil }

func newF32(t *testing.T, dims tensor.Shape, vals []float32) *tensor.Tensor {
	t.Helper()
	tt, err := tensor.New(dims, tensor.Float32, cpu.New())
	require.NoError(t, err)
	copy(tt.Storage().Float32s(), vals)
	return tt
}

func TestReduceSum(t *testing.T) {
	tt := newF32(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	defer tt.Release()

	out, err := Reduce(tt, Sum, 1)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, tensor.Shape{2}, out.Dims())
	assert.Equal(t, []float32{6, 15}, out.Storage().Float32s())
}

func TestReduceArgOps(t *testing.T) {
	tt := newF32(t, tensor.Shape{2, 3}, []float32{3, 1, 2, 0, 5, 5})
	defer tt.Release()

	argmin, err := Reduce(tt, ArgMin, 1)
	require.NoError(t, err)
	defer argmin.Release()
	assert.Equal(t, tensor.Uint32, argmin.DType())
	assert.Equal(t, []uint32{1, 0}, argmin.Storage().Uint32s())

	argmax, err := Reduce(tt, ArgMax, 1)
	require.NoError(t, err)
	defer argmax.Release()
	assert.Equal(t, []uint32{0, 1}, argmax.Storage().Uint32s())
}

func TestReduceInvalidAxisLeavesInputUntouched(t *testing.T) {
	vals := []float32{1, 2, 3, 4, 5, 6}
	tt := newF32(t, tensor.Shape{2, 3}, vals)
	defer tt.Release()

	before := append([]byte(nil), tt.Storage().Bytes()...)

	_, err := Reduce(tt, Sum, 2)
	assert.ErrorIs(t, err, tensor.ErrInvalidAxis)

	_, err = Reduce(tt, Sum, -1)
	assert.ErrorIs(t, err, tensor.ErrInvalidAxis)

	assert.Equal(t, before, tt.Storage().Bytes())
}

func TestReduceUnsupportedDType(t *testing.T) {
	tt, err := tensor.New(tensor.Shape{4}, tensor.Uint32, cpu.New())
	require.NoError(t, err)
	defer tt.Release()

	_, err = Reduce(tt, Sum, 0)
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)

	_, err = Reduce(tt, ArgMax, 0)
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)
}

func TestReduceDeviceStorageMismatch(t *testing.T) {
	// Storage tagged CPU but the tensor claims a different device.
	storage := tensor.NewHostStorage(tensor.CPU, tensor.Float32, 4)
	tt := tensor.FromParts(tensor.NewLayout(tensor.Shape{4}), storage, &bareDevice{})
	defer tt.Release()

	_, err := Reduce(tt, Sum, 0)
	assert.ErrorIs(t, err, tensor.ErrDeviceMismatch)
}

func TestReduceDeviceWithoutCapability(t *testing.T) {
	dev := &bareDevice{}
	tt, err := tensor.New(tensor.Shape{4}, tensor.Float32, dev)
	require.NoError(t, err)
	defer tt.Release()

	_, err = Reduce(tt, Sum, 0)
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDevice)
}

func TestResultDType(t *testing.T) {
	for _, in := range []tensor.DataType{tensor.Float32, tensor.Float64, tensor.Float16, tensor.BFloat16, tensor.Int64} {
		out, ok := ResultDType(Sum, in)
		assert.True(t, ok)
		assert.Equal(t, in, out, "sum preserves dtype")

		out, ok = ResultDType(ArgMin, in)
		assert.True(t, ok)
		assert.Equal(t, tensor.Uint32, out)
	}

	_, ok := ResultDType(Sum, tensor.Uint32)
	assert.False(t, ok)
	_, ok = ResultDType(ArgMax, tensor.Uint32)
	assert.False(t, ok)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "sum", Sum.String())
	assert.Equal(t, "arg_min", ArgMin.String())
	assert.Equal(t, "arg_max", ArgMax.String())
}
