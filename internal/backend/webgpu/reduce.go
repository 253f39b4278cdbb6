package webgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/ember-ml/ember/internal/tensor"
)

// SumAxis sums tensor elements along the given axis on the GPU. Only
// float32 has a device kernel; 16-bit dtypes reduce on the CPU backend.
// The kernel handles arbitrary strides, so transposed views reduce without
// a materializing copy. Submission is asynchronous.
func (b *Backend) SumAxis(t *tensor.Tensor, axis int) (*tensor.Tensor, error) {
	if t.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: sum over %s: %w", t.DType(), tensor.ErrUnsupportedDType)
	}
	return b.runStridedReduce(t, axis, "sum_axis_f32", sumAxisShader, t.DType(), nil)
}

// ArgReduce finds, for each position outside the reduced axis, the index of
// the extremum along it. The result dtype is Uint32. Only float32 inputs
// have a device kernel.
func (b *Backend) ArgReduce(t *tensor.Tensor, largest bool, axis int) (*tensor.Tensor, error) {
	if t.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: arg-reduce over %s: %w", t.DType(), tensor.ErrUnsupportedDType)
	}
	extra := []uint32{0}
	if largest {
		extra[0] = 1
	}
	return b.runStridedReduce(t, axis, "arg_reduce_f32", argReduceShader, tensor.Uint32, extra)
}

// runStridedReduce dispatches one of the strided reduction kernels. The
// meta buffer carries dims then strides; the uniform params carry the
// shape-independent scalars plus any kernel-specific extras.
func (b *Backend) runStridedReduce(t *tensor.Tensor, axis int, name, code string, outDType tensor.DataType, extra []uint32) (*tensor.Tensor, error) {
	l := t.Layout()
	rank := l.Rank()
	if axis < 0 || axis >= rank {
		return nil, fmt.Errorf("webgpu: axis %d out of range for rank %d: %w", axis, rank, tensor.ErrInvalidAxis)
	}

	dims := l.Dims()
	strides := l.Strides()
	numGroups := l.ElemCount() / dims[axis]

	outDims := make(tensor.Shape, 0, rank-1)
	for d, n := range dims {
		if d != axis {
			outDims = append(outDims, n)
		}
	}

	outStorage, err := b.NewStorage(outDType, numGroups)
	if err != nil {
		return nil, err
	}

	inBuf, err := storageBuffer(t.Storage())
	if err != nil {
		outStorage.Release()
		return nil, err
	}
	outBuf, err := storageBuffer(outStorage)
	if err != nil {
		outStorage.Release()
		return nil, err
	}

	meta := make([]byte, 0, 8*rank)
	for _, n := range dims {
		meta = binary.LittleEndian.AppendUint32(meta, uint32(n))
	}
	for _, s := range strides {
		meta = binary.LittleEndian.AppendUint32(meta, uint32(s))
	}
	metaBuf := b.createBuffer(meta, wgpu.BufferUsageStorage)
	defer metaBuf.Release()

	scalars := []uint32{
		uint32(rank),
		uint32(axis),
		uint32(numGroups),
		uint32(dims[axis]),
		uint32(strides[axis]),
		uint32(l.Offset()),
	}
	scalars = append(scalars, extra...)
	params := make([]byte, 0, 4*len(scalars))
	for _, v := range scalars {
		params = binary.LittleEndian.AppendUint32(params, v)
	}
	paramsBuf := b.createUniformBuffer(params)
	defer paramsBuf.Release()

	workgroups := uint32((numGroups + workgroupSize - 1) / workgroupSize)
	b.dispatch(name, code, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, inBuf, 0, alignUp4(uint64(t.Storage().ByteSize()))),
		wgpu.BufferBindingEntry(1, outBuf, 0, alignUp4(uint64(outStorage.ByteSize()))),
		wgpu.BufferBindingEntry(2, metaBuf, 0, uint64(len(meta))),
		wgpu.BufferBindingEntry(3, paramsBuf, 0, uint64((len(params)+15)&^15)),
	}, workgroups)

	b.log.Trace().
		Str("kernel", name).
		Int("groups", numGroups).
		Int("axis", axis).
		Msg("reduction submitted")

	return tensor.FromParts(tensor.NewLayout(outDims), outStorage, b), nil
}
