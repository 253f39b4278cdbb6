// Package webgpu implements the GPU backend on top of go-webgpu
// (github.com/go-webgpu/webgpu). It owns the device, its command queue and
// the precompiled fused kernels; reductions and fused softmax submit work
// asynchronously and callers observe completion through Synchronize.
package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/rs/zerolog"

	"github.com/ember-ml/ember/internal/tensor"
)

// storageUsage is the usage set for tensor storage buffers: readable and
// writable by kernels, copyable for upload and readback.
const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Backend implements tensor.Device on a WebGPU adapter, plus the reduction
// and fused-softmax capabilities the engine discovers by type assertion.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache, keyed by kernel name.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// Work enqueued on the wgpu queue runs asynchronously in submission
	// order; submitMu serializes submissions from multiple goroutines.
	submitMu sync.Mutex

	// Sentinel source for the Synchronize barrier copy.
	syncBuf *wgpu.Buffer

	// bufSizes tracks the allocated size of live storage buffers so that
	// released buffers can return to the pool.
	bufSizes map[*wgpu.Buffer]uint64
	sizesMu  sync.Mutex

	pool *BufferPool

	adapterInfo *wgpu.AdapterInfoGo
	log         zerolog.Logger
}

// Compile-time capability checks.
var _ tensor.Device = (*Backend)(nil)
var _ tensor.BufferOwner = (*Backend)(nil)

// New creates a WebGPU backend on the highest-performance available
// adapter. Returns an error if no adapter or device can be acquired.
func New() (*Backend, error) {
	return NewWithLogger(zerolog.Nop())
}

// NewWithLogger is New with device-discovery diagnostics routed to log.
func NewWithLogger(log zerolog.Logger) (backend *Backend, err error) {
	// Recover from panic if the wgpu native library is not present.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo, _ := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	b := &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		bufSizes:    make(map[*wgpu.Buffer]uint64),
		pool:        NewBufferPool(device),
		adapterInfo: adapterInfo,
		log:         log,
	}
	b.syncBuf = device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:  4,
	})

	log.Debug().
		Str("device", adapterInfo.Device).
		Str("vendor", adapterInfo.Vendor).
		Str("architecture", adapterInfo.Architecture).
		Msg("webgpu backend initialized")

	return b, nil
}

// Kind returns the backend family.
func (b *Backend) Kind() tensor.DeviceKind {
	return tensor.WebGPU
}

// Name returns a diagnostic label including the adapter identity.
func (b *Backend) Name() string {
	if b.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Vendor, b.adapterInfo.Device)
	}
	return "WebGPU"
}

// AdapterInfo returns information about the GPU adapter.
func (b *Backend) AdapterInfo() *wgpu.AdapterInfoGo {
	return b.adapterInfo
}

// NewStorage allocates an uninitialized device buffer for numElements
// elements. Buffer sizes are rounded up to 4 bytes to satisfy WebGPU copy
// alignment.
func (b *Backend) NewStorage(dtype tensor.DataType, numElements int) (*tensor.Storage, error) {
	size := alignUp4(uint64(numElements * dtype.Size()))

	buffer := b.pool.Acquire(size, storageUsage)
	if buffer == nil {
		return nil, fmt.Errorf("webgpu: allocate %d bytes: %w", size, tensor.ErrDeviceError)
	}
	b.trackBuffer(buffer, size)

	db := tensor.NewDeviceBuffer(unsafe.Pointer(buffer), size, b)
	return tensor.NewDeviceStorage(tensor.WebGPU, dtype, numElements, db), nil
}

// FromHost uploads host bytes into a new contiguous device tensor.
func (b *Backend) FromHost(data []byte, dims tensor.Shape, dtype tensor.DataType) (*tensor.Tensor, error) {
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("webgpu: %w", err)
	}
	if want := dims.NumElements() * dtype.Size(); len(data) != want {
		return nil, fmt.Errorf("webgpu: %v %s tensor needs %d bytes, got %d", dims, dtype, want, len(data))
	}

	buffer := b.createBuffer(data, storageUsage)
	b.trackBuffer(buffer, alignUp4(uint64(len(data))))

	db := tensor.NewDeviceBuffer(unsafe.Pointer(buffer), alignUp4(uint64(len(data))), b)
	storage := tensor.NewDeviceStorage(tensor.WebGPU, dtype, dims.NumElements(), db)
	return tensor.FromParts(tensor.NewLayout(dims), storage, b), nil
}

// ReadTensor copies a device tensor's storage back to host memory,
// flushing the queue first. The returned slice is trimmed to the logical
// byte size.
func (b *Backend) ReadTensor(t *tensor.Tensor) ([]byte, error) {
	buf := t.Storage().Buffer()
	if buf == nil {
		return nil, fmt.Errorf("webgpu: tensor storage is not device-resident: %w", tensor.ErrDeviceMismatch)
	}
	data, err := buf.Read()
	if err != nil {
		return nil, err
	}
	return data[:t.Storage().ByteSize()], nil
}

// Synchronize blocks until all previously submitted work on this device's
// queue has completed. It appends a sentinel copy to the queue and maps
// the destination for reading: the map completes only after everything
// submitted before it has retired.
func (b *Backend) Synchronize() error {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  4,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(b.syncBuf, 0, staging, 0, 4)
	b.submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, 4); err != nil {
		return fmt.Errorf("webgpu: synchronize: %v: %w", err, tensor.ErrDeviceError)
	}
	staging.Unmap()
	return nil
}

// submit sends a command buffer to the queue. Submission returns
// immediately; same-queue work executes in submission order.
func (b *Backend) submit(cmd *wgpu.CommandBuffer) {
	b.submitMu.Lock()
	defer b.submitMu.Unlock()
	b.queue.Submit(cmd)
}

// trackBuffer records the allocation size of a live storage buffer.
func (b *Backend) trackBuffer(buffer *wgpu.Buffer, size uint64) {
	b.sizesMu.Lock()
	b.bufSizes[buffer] = size
	b.sizesMu.Unlock()
}

// ReadDeviceBuffer implements tensor.BufferOwner: copies a device buffer
// to host memory through a staging buffer.
func (b *Backend) ReadDeviceBuffer(ptr unsafe.Pointer, size uint64) ([]byte, error) {
	return b.readBuffer((*wgpu.Buffer)(ptr), size)
}

// ReleaseDeviceBuffer implements tensor.BufferOwner: returns the buffer to
// the pool for reuse, or releases it outright if it was never tracked.
func (b *Backend) ReleaseDeviceBuffer(ptr unsafe.Pointer) {
	buffer := (*wgpu.Buffer)(ptr)
	if buffer == nil {
		return
	}

	b.sizesMu.Lock()
	size, tracked := b.bufSizes[buffer]
	delete(b.bufSizes, buffer)
	b.sizesMu.Unlock()

	if tracked {
		b.pool.Return(buffer, size, storageUsage)
		return
	}
	buffer.Release()
}

// Release frees all WebGPU resources. The backend must not be used after.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pool != nil {
		b.pool.Clear()
		b.pool = nil
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.syncBuf != nil {
		b.syncBuf.Release()
		b.syncBuf = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// ListAdapters returns information about available GPU adapters.
func ListAdapters() (adapters []*wgpu.AdapterInfoGo, err error) {
	defer func() {
		if r := recover(); r != nil {
			adapters = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, adapterErr := instance.RequestAdapter(nil)
	if adapterErr != nil {
		return nil, fmt.Errorf("webgpu: no adapters available: %w", adapterErr)
	}
	defer adapter.Release()

	info, _ := adapter.GetInfo()
	return []*wgpu.AdapterInfoGo{info}, nil
}

// alignUp4 rounds a byte size up to the next multiple of 4.
func alignUp4(n uint64) uint64 {
	return (n + 3) &^ 3
}
