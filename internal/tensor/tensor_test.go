package tensor

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostDevice is a minimal Device for exercising tensor plumbing without a
// real backend.
type hostDevice struct {
	kind DeviceKind
}

func (d *hostDevice) Kind() DeviceKind { return d.kind }
func (d *hostDevice) Name() string     { return "test-" + d.kind.String() }
func (d *hostDevice) NewStorage(dtype DataType, numElements int) (*Storage, error) {
	return NewHostStorage(d.kind, dtype, numElements), nil
}
func (d *hostDevice) Synchronize() error { return nil }

func fillF32(s *Storage, vals []float32) {
	copy(s.Float32s(), vals)
}

func TestNewTensor(t *testing.T) {
	dev := &hostDevice{kind: CPU}

	tt, err := New(Shape{2, 3}, Float32, dev)
	require.NoError(t, err)
	defer tt.Release()

	assert.Equal(t, Shape{2, 3}, tt.Dims())
	assert.Equal(t, Float32, tt.DType())
	assert.Equal(t, 6, tt.ElemCount())
	assert.Equal(t, 24, tt.Storage().ByteSize())
	assert.NoError(t, tt.CheckDevice())
}

func TestNewTensorInvalidShape(t *testing.T) {
	dev := &hostDevice{kind: CPU}

	_, err := New(Shape{2, 0}, Float32, dev)
	assert.Error(t, err)
}

func TestCheckDeviceMismatch(t *testing.T) {
	storage := NewHostStorage(CPU, Float32, 4)
	tt := FromParts(NewLayout(Shape{4}), storage, &hostDevice{kind: WebGPU})
	defer tt.Release()

	assert.ErrorIs(t, tt.CheckDevice(), ErrDeviceMismatch)
}

func TestTransposeSharesStorage(t *testing.T) {
	dev := &hostDevice{kind: CPU}
	tt, err := New(Shape{2, 3}, Float32, dev)
	require.NoError(t, err)
	defer tt.Release()
	fillF32(tt.Storage(), []float32{1, 2, 3, 4, 5, 6})

	tr, err := tt.Transpose(0, 1)
	require.NoError(t, err)
	defer tr.Release()

	assert.Same(t, tt.Storage(), tr.Storage())
	assert.Equal(t, Shape{3, 2}, tr.Dims())

	// Writes through one view are visible through the other.
	tt.Storage().Float32s()[0] = 42
	assert.Equal(t, float32(42), tr.Storage().Float32s()[0])
}

func TestContiguousGather(t *testing.T) {
	dev := &hostDevice{kind: CPU}
	tt, err := New(Shape{2, 3}, Float32, dev)
	require.NoError(t, err)
	defer tt.Release()
	fillF32(tt.Storage(), []float32{1, 2, 3, 4, 5, 6})

	tr, err := tt.Transpose(0, 1)
	require.NoError(t, err)
	defer tr.Release()

	packed, err := tr.Contiguous()
	require.NoError(t, err)
	defer packed.Release()

	assert.True(t, packed.Layout().IsContiguous())
	assert.NotSame(t, tt.Storage(), packed.Storage())
	// Column-major walk of the original (2, 3) data.
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, packed.Storage().Float32s())
}

func TestContiguousAlreadyPackedIsView(t *testing.T) {
	dev := &hostDevice{kind: CPU}
	tt, err := New(Shape{2, 3}, Float32, dev)
	require.NoError(t, err)
	defer tt.Release()

	view, err := tt.Contiguous()
	require.NoError(t, err)
	defer view.Release()

	assert.Same(t, tt.Storage(), view.Storage())
}

func TestStorageTypedViews(t *testing.T) {
	s := NewHostStorage(CPU, Float16, 3)
	assert.Len(t, s.Uint16s(), 3)
	assert.Equal(t, 6, s.ByteSize())

	s64 := NewHostStorage(CPU, Int64, 2)
	s64.Int64s()[1] = -7
	assert.Equal(t, uint64(math.MaxUint64-6), binary.LittleEndian.Uint64(s64.Bytes()[8:]))

	u := NewHostStorage(CPU, Uint32, 4)
	u.Uint32s()[3] = math.MaxUint32
	assert.Equal(t, uint32(math.MaxUint32), u.Uint32s()[3])
}

func TestStorageRefcount(t *testing.T) {
	dev := &hostDevice{kind: CPU}
	tt, err := New(Shape{4}, Float32, dev)
	require.NoError(t, err)

	view, err := tt.Transpose(0, 0)
	require.NoError(t, err)

	// Two references; releasing one keeps the storage usable.
	tt.Release()
	assert.NotPanics(t, func() { _ = view.Storage().Float32s() })
	view.Release()
}

func TestDTypeProperties(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, 2, Float16.Size())
	assert.Equal(t, 2, BFloat16.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, 4, Uint32.Size())

	assert.True(t, Float16.IsHalf())
	assert.True(t, BFloat16.IsHalf())
	assert.False(t, Float32.IsHalf())

	assert.True(t, BFloat16.IsFloat())
	assert.False(t, Int64.IsFloat())

	assert.Equal(t, "f16", Float16.String())
	assert.Equal(t, "bf16", BFloat16.String())
	assert.Equal(t, "u32", Uint32.String())
}
