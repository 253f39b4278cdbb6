package tensor

import "fmt"

// Tensor is the user-facing handle: a Layout describing the logical view,
// a reference to the Storage holding the physical elements, and the Device
// the storage is bound to.
//
// Multiple tensors may share one Storage (views after Transpose); the
// storage is reference-counted and freed when the last view releases it.
type Tensor struct {
	layout  Layout
	storage *Storage
	device  Device
}

// New allocates an uninitialized contiguous tensor on the given device.
func New(dims Shape, dtype DataType, dev Device) (*Tensor, error) {
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("new tensor: %w", err)
	}
	storage, err := dev.NewStorage(dtype, dims.NumElements())
	if err != nil {
		return nil, fmt.Errorf("new tensor: %w", err)
	}
	return &Tensor{layout: NewLayout(dims), storage: storage, device: dev}, nil
}

// FromParts assembles a tensor from an existing layout, storage and device.
// Used by backends to wrap operation results; takes over the caller's
// storage reference.
func FromParts(layout Layout, storage *Storage, dev Device) *Tensor {
	return &Tensor{layout: layout, storage: storage, device: dev}
}

// Layout returns the tensor's view descriptor.
func (t *Tensor) Layout() Layout {
	return t.layout
}

// Storage returns the backing storage shared by all views of this tensor.
func (t *Tensor) Storage() *Storage {
	return t.storage
}

// Device returns the device the tensor is bound to.
func (t *Tensor) Device() Device {
	return t.device
}

// DType returns the element type of the backing storage.
func (t *Tensor) DType() DataType {
	return t.storage.DType()
}

// Dims returns the dimension sizes.
func (t *Tensor) Dims() Shape {
	return t.layout.Dims()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return t.layout.Rank()
}

// ElemCount returns the total number of logical elements.
func (t *Tensor) ElemCount() int {
	return t.layout.ElemCount()
}

// CheckDevice verifies that the tensor's device and its storage backend
// agree. Dispatch paths call this before doing any work; the invariant is
// checked, never assumed.
func (t *Tensor) CheckDevice() error {
	if t.device.Kind() != t.storage.Kind() {
		return fmt.Errorf("tensor on %s but storage on %s: %w",
			t.device.Kind(), t.storage.Kind(), ErrDeviceMismatch)
	}
	return nil
}

// Transpose returns a view with dimensions d0 and d1 swapped. The view
// shares this tensor's storage; no elements are copied. The resulting
// layout is generally non-contiguous.
func (t *Tensor) Transpose(d0, d1 int) (*Tensor, error) {
	layout, err := t.layout.Transpose(d0, d1)
	if err != nil {
		return nil, err
	}
	t.storage.Retain()
	return &Tensor{layout: layout, storage: t.storage, device: t.device}, nil
}

// Contiguous materializes the tensor into a dense row-major copy on the
// same device. A tensor that is already contiguous with zero offset is
// returned as a new view sharing storage.
//
// Gathering a strided accelerator tensor would need a dedicated kernel;
// only host-addressable storage supports the copying path today.
func (t *Tensor) Contiguous() (*Tensor, error) {
	if t.layout.IsContiguous() && t.layout.Offset() == 0 {
		t.storage.Retain()
		return &Tensor{layout: t.layout, storage: t.storage, device: t.device}, nil
	}

	if !t.storage.OnHost() {
		return nil, fmt.Errorf("contiguous copy of strided %s tensor: %w",
			t.storage.Kind(), ErrUnsupportedDevice)
	}

	out, err := New(t.Dims(), t.DType(), t.device)
	if err != nil {
		return nil, err
	}

	elemSize := t.DType().Size()
	src := t.storage.Bytes()
	dst := out.storage.Bytes()

	dims := t.layout.Dims()
	strides := t.layout.Strides()
	n := t.ElemCount()

	// Walk logical indices in row-major order, gathering through the
	// strided layout one element at a time.
	for i := 0; i < n; i++ {
		srcElem := t.layout.Offset()
		rem := i
		for d := len(dims) - 1; d >= 0; d-- {
			srcElem += (rem % dims[d]) * strides[d]
			rem /= dims[d]
		}
		copy(dst[i*elemSize:(i+1)*elemSize], src[srcElem*elemSize:(srcElem+1)*elemSize])
	}

	return out, nil
}

// Release drops this view's reference to the backing storage.
func (t *Tensor) Release() {
	t.storage.Release()
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.DType(), t.Dims(), t.device.Name())
}
