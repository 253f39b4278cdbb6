package webgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/ember-ml/ember/internal/tensor"
)

// softmaxShaders maps fused kernel names to their WGSL source.
var softmaxShaders = map[string]string{
	"softmax_f32":  softmaxF32Shader,
	"softmax_f16":  softmaxF16Shader,
	"softmax_bf16": softmaxBF16Shader,
}

// SubmitLastSoftmax runs the named fused softmax kernel over the last axis
// of t and returns a contiguous result tensor of the same dims and dtype.
// The caller has already verified layout and alignment preconditions; this
// method enqueues the kernel and returns without waiting. One invocation
// handles one row: the kernel computes the row max, exponentiates shifted
// values, and normalizes in place in the output buffer.
func (b *Backend) SubmitLastSoftmax(t *tensor.Tensor, kernel string) (*tensor.Tensor, error) {
	code, ok := softmaxShaders[kernel]
	if !ok {
		return nil, fmt.Errorf("webgpu: no kernel %q: %w", kernel, tensor.ErrUnsupportedDType)
	}

	l := t.Layout()
	dims := l.Dims()
	lastDim := dims[len(dims)-1]
	if lastDim == 0 {
		// Nothing to normalize; preserve the empty shape.
		outStorage, err := b.NewStorage(t.DType(), 0)
		if err != nil {
			return nil, err
		}
		return tensor.FromParts(tensor.NewLayout(dims.Clone()), outStorage, b), nil
	}
	numRows := l.ElemCount() / lastDim

	outStorage, err := b.NewStorage(t.DType(), l.ElemCount())
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

	params := make([]byte, 0, 12)
	params = binary.LittleEndian.AppendUint32(params, uint32(numRows))
	params = binary.LittleEndian.AppendUint32(params, uint32(lastDim))
	params = binary.LittleEndian.AppendUint32(params, uint32(l.Offset()))
	paramsBuf := b.createUniformBuffer(params)
	defer paramsBuf.Release()

	workgroups := uint32((numRows + workgroupSize - 1) / workgroupSize)
	b.dispatch(kernel, code, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, inBuf, 0, alignUp4(uint64(t.Storage().ByteSize()))),
		wgpu.BufferBindingEntry(1, outBuf, 0, alignUp4(uint64(outStorage.ByteSize()))),
		wgpu.BufferBindingEntry(2, paramsBuf, 0, 16),
	}, workgroups)

	b.log.Trace().
		Str("kernel", kernel).
		Int("rows", numRows).
		Int("row_len", lastDim).
		Msg("fused softmax submitted")

	return tensor.FromParts(tensor.NewLayout(dims.Clone()), outStorage, b), nil
}
