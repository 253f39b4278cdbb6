package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Storage is the physical buffer backing one or more tensors, tagged by
// backend kind and element dtype. CPU-resident storage holds host bytes
// directly; accelerator storage holds a DeviceBuffer wrapping the backend's
// buffer handle.
//
// Storage is reference-counted: views created by Transpose share one Storage
// and each hold a reference. The last Release frees the buffer.
type Storage struct {
	kind     DeviceKind
	dtype    DataType
	numElems int

	host []byte
	gpu  *DeviceBuffer

	refs atomic.Int32
}

// NewHostStorage allocates zeroed host memory for numElements elements.
// kind tags which backend the buffer logically belongs to (a CPU-kind tag
// for the CPU backend; tests may tag host memory differently).
func NewHostStorage(kind DeviceKind, dtype DataType, numElements int) *Storage {
	s := &Storage{
		kind:     kind,
		dtype:    dtype,
		numElems: numElements,
		host:     make([]byte, numElements*dtype.Size()),
	}
	s.refs.Store(1)
	return s
}

// NewDeviceStorage wraps an accelerator buffer handle as storage.
func NewDeviceStorage(kind DeviceKind, dtype DataType, numElements int, buf *DeviceBuffer) *Storage {
	s := &Storage{
		kind:     kind,
		dtype:    dtype,
		numElems: numElements,
		gpu:      buf,
	}
	s.refs.Store(1)
	return s
}

// Kind returns the backend family tag.
func (s *Storage) Kind() DeviceKind {
	return s.kind
}

// DType returns the declared element type. The tag always matches the
// element width actually stored; accessors enforce it.
func (s *Storage) DType() DataType {
	return s.dtype
}

// NumElements returns the buffer capacity in elements.
func (s *Storage) NumElements() int {
	return s.numElems
}

// ByteSize returns the buffer capacity in bytes.
func (s *Storage) ByteSize() int {
	return s.numElems * s.dtype.Size()
}

// OnHost reports whether the buffer is directly addressable host memory.
func (s *Storage) OnHost() bool {
	return s.host != nil
}

// Buffer returns the accelerator buffer, or nil for host storage.
func (s *Storage) Buffer() *DeviceBuffer {
	return s.gpu
}

// Retain increments the reference count. Each view holds one reference.
func (s *Storage) Retain() {
	s.refs.Add(1)
}

// Release decrements the reference count and frees the buffer when it
// reaches zero.
func (s *Storage) Release() {
	if s.refs.Add(-1) == 0 {
		s.host = nil
		if s.gpu != nil {
			s.gpu.Release()
			s.gpu = nil
		}
	}
}

// Bytes returns the raw host bytes. Panics for accelerator storage; use
// DeviceBuffer.Read after a device synchronization instead.
func (s *Storage) Bytes() []byte {
	if s.host == nil {
		panic(fmt.Sprintf("storage on %s is not host-addressable", s.kind))
	}
	return s.host
}

// Float32s interprets the host buffer as []float32.
// Panics if the storage dtype is not Float32.
func (s *Storage) Float32s() []float32 {
	if s.dtype != Float32 {
		panic(fmt.Sprintf("storage dtype is %s, not f32", s.dtype))
	}
	data := s.Bytes()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), s.numElems)
}

// Float64s interprets the host buffer as []float64.
// Panics if the storage dtype is not Float64.
func (s *Storage) Float64s() []float64 {
	if s.dtype != Float64 {
		panic(fmt.Sprintf("storage dtype is %s, not f64", s.dtype))
	}
	data := s.Bytes()
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), s.numElems)
}

// Uint16s interprets the host buffer as raw 16-bit element bits.
// Valid for the Float16 and BFloat16 dtypes.
func (s *Storage) Uint16s() []uint16 {
	if s.dtype != Float16 && s.dtype != BFloat16 {
		panic(fmt.Sprintf("storage dtype is %s, not a 16-bit float", s.dtype))
	}
	data := s.Bytes()
	return unsafe.Slice((*uint16)(unsafe.Pointer(&data[0])), s.numElems)
}

// Int64s interprets the host buffer as []int64.
// Panics if the storage dtype is not Int64.
func (s *Storage) Int64s() []int64 {
	if s.dtype != Int64 {
		panic(fmt.Sprintf("storage dtype is %s, not i64", s.dtype))
	}
	data := s.Bytes()
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), s.numElems)
}

// Uint32s interprets the host buffer as []uint32, the index dtype produced
// by arg-reductions.
func (s *Storage) Uint32s() []uint32 {
	if s.dtype != Uint32 {
		panic(fmt.Sprintf("storage dtype is %s, not u32", s.dtype))
	}
	data := s.Bytes()
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), s.numElems)
}
