// Package cpu implements the host backend: dtype-generic reduction kernels
// over contiguous and strided layouts, executed with goroutine chunking.
package cpu

import (
	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend implements tensor.Device for host execution.
type Backend struct {
	parallel parallel.Config
}

// New creates a new CPU backend with default parallelism.
func New() *Backend {
	return &Backend{parallel: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with explicit parallel configuration.
// Useful for tests that want deterministic sequential execution.
func NewWithConfig(cfg parallel.Config) *Backend {
	return &Backend{parallel: cfg}
}

// Kind returns the backend family.
func (b *Backend) Kind() tensor.DeviceKind {
	return tensor.CPU
}

// Name returns the backend label.
func (b *Backend) Name() string {
	return "CPU"
}

// NewStorage allocates zeroed host memory.
func (b *Backend) NewStorage(dtype tensor.DataType, numElements int) (*tensor.Storage, error) {
	return tensor.NewHostStorage(tensor.CPU, dtype, numElements), nil
}

// Synchronize is a no-op: host kernels complete before their call returns.
func (b *Backend) Synchronize() error {
	return nil
}
