package tensor

import "errors"

// Typed failures surfaced by the reduction engine and the fused-kernel
// dispatcher. Entry points wrap these with context via fmt.Errorf and %w;
// callers match with errors.Is. None are retried or recovered internally.
var (
	// ErrInvalidAxis reports an axis outside [0, rank).
	ErrInvalidAxis = errors.New("axis out of range")

	// ErrUnsupportedDType reports an operation not defined for the
	// tensor's element type.
	ErrUnsupportedDType = errors.New("unsupported dtype")

	// ErrLayoutUnsupported reports a layout that violates an operation's
	// contiguity or stride precondition.
	ErrLayoutUnsupported = errors.New("unsupported layout")

	// ErrDeviceMismatch reports a tensor whose device and storage backend
	// disagree.
	ErrDeviceMismatch = errors.New("tensor device does not match storage backend")

	// ErrUnsupportedDevice reports an operation with no implementation on
	// the tensor's backend.
	ErrUnsupportedDevice = errors.New("operation not supported on this device")

	// ErrDeviceError reports a backend execution or allocation fault.
	ErrDeviceError = errors.New("device error")
)
