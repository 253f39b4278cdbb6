package tensor

// DeviceKind identifies the backend family a storage buffer lives on.
type DeviceKind int

// Supported backends.
const (
	CPU DeviceKind = iota
	CUDA
	Metal
	WebGPU
)

// String returns a human-readable backend name.
func (k DeviceKind) String() string {
	switch k {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// Device is the capability surface every backend exposes to the engine.
//
// Engine code depends only on this interface plus optional capability
// interfaces (reduction, fused kernels) discovered by type assertion, never
// on concrete backend types. The device handle is an explicit field of every
// Tensor; there is no process-wide device singleton.
type Device interface {
	// Kind identifies the backend family. A tensor's storage must carry
	// the same kind; the engine checks this at dispatch time.
	Kind() DeviceKind

	// Name returns a diagnostic label for the backend instance.
	Name() string

	// NewStorage allocates an uninitialized buffer for numElements
	// elements of the given dtype on this device.
	NewStorage(dtype DataType, numElements int) (*Storage, error)

	// Synchronize blocks until all previously enqueued work on this
	// device has completed. Backends that execute synchronously return
	// immediately.
	Synchronize() error
}
