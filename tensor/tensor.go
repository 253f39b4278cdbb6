// Copyright 2025 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32  DataType = tensor.Float32
	Float64  DataType = tensor.Float64
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
	Int64    DataType = tensor.Int64
	Uint32   DataType = tensor.Uint32
)

// DeviceKind identifies a backend family.
type DeviceKind = tensor.DeviceKind

// Backend families.
const (
	CPU    DeviceKind = tensor.CPU
	CUDA   DeviceKind = tensor.CUDA
	Metal  DeviceKind = tensor.Metal
	WebGPU DeviceKind = tensor.WebGPU
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Layout describes how tensor elements map onto linear storage.
type Layout = tensor.Layout

// Storage is a refcounted block of tensor memory on one device.
type Storage = tensor.Storage

// Tensor couples a layout with storage on a device.
type Tensor = tensor.Tensor

// Device is the minimal surface every backend implements.
type Device = tensor.Device

// Sentinel errors returned by tensor and engine operations. Match with
// errors.Is.
var (
	ErrInvalidAxis       = tensor.ErrInvalidAxis
	ErrUnsupportedDType  = tensor.ErrUnsupportedDType
	ErrLayoutUnsupported = tensor.ErrLayoutUnsupported
	ErrDeviceMismatch    = tensor.ErrDeviceMismatch
	ErrUnsupportedDevice = tensor.ErrUnsupportedDevice
	ErrDeviceError       = tensor.ErrDeviceError
)

// New allocates an uninitialized contiguous tensor on dev.
func New(dims Shape, dtype DataType, dev Device) (*Tensor, error) {
	return tensor.New(dims, dtype, dev)
}

// FromParts assembles a tensor from an existing layout and storage.
// The storage's refcount is not changed; the caller transfers ownership.
func FromParts(layout Layout, storage *Storage, dev Device) *Tensor {
	return tensor.FromParts(layout, storage, dev)
}

// NewLayout returns the contiguous row-major layout for dims.
func NewLayout(dims Shape) Layout {
	return tensor.NewLayout(dims)
}

// NewLayoutStrided returns a layout with explicit strides and start offset.
func NewLayoutStrided(dims Shape, strides []int, offset int) Layout {
	return tensor.NewLayoutStrided(dims, strides, offset)
}
