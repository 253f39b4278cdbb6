package tensor

import (
	"runtime"
	"sync"
	"unsafe"
)

// BufferOwner is implemented by backends that own accelerator buffers.
// The pointer type behind unsafe.Pointer is backend-specific (for the
// WebGPU backend it is *wgpu.Buffer).
type BufferOwner interface {
	// ReadDeviceBuffer copies size bytes from the device buffer to host
	// memory, flushing any pending work on the owning queue first.
	ReadDeviceBuffer(ptr unsafe.Pointer, size uint64) ([]byte, error)

	// ReleaseDeviceBuffer frees the device buffer.
	ReleaseDeviceBuffer(ptr unsafe.Pointer)
}

// DeviceBuffer holds a reference to accelerator-resident memory. Reads go
// through the owning backend, which implies a queue flush; writes happen
// only through enqueued kernels.
type DeviceBuffer struct {
	ptr   unsafe.Pointer
	size  uint64
	owner BufferOwner
	mu    sync.Mutex
}

// NewDeviceBuffer wraps a backend buffer handle. The buffer is released
// when garbage collected if the caller never does so explicitly.
func NewDeviceBuffer(ptr unsafe.Pointer, size uint64, owner BufferOwner) *DeviceBuffer {
	b := &DeviceBuffer{ptr: ptr, size: size, owner: owner}
	runtime.SetFinalizer(b, func(db *DeviceBuffer) {
		db.Release()
	})
	return b
}

// Ptr returns the backend buffer handle.
func (b *DeviceBuffer) Ptr() unsafe.Pointer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ptr
}

// Size returns the buffer size in bytes.
func (b *DeviceBuffer) Size() uint64 {
	return b.size
}

// Read copies the buffer contents to host memory. Safe to call from
// multiple goroutines.
func (b *DeviceBuffer) Read() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr == nil {
		return nil, ErrDeviceError
	}
	return b.owner.ReadDeviceBuffer(b.ptr, b.size)
}

// Release frees the device buffer. Idempotent.
func (b *DeviceBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ptr != nil && b.owner != nil {
		b.owner.ReleaseDeviceBuffer(b.ptr)
		b.ptr = nil
	}
}
