// Copyright 2025 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu exposes the GPU backend built on WebGPU compute shaders.
// Kernels are submitted asynchronously; call a backend's Synchronize to
// wait for submitted work, or read a result tensor back, which waits
// implicitly.
package webgpu

import (
	"github.com/rs/zerolog"

	internalwebgpu "github.com/ember-ml/ember/internal/backend/webgpu"
	"github.com/ember-ml/ember/tensor"
)

// Backend is the WebGPU compute backend.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Device.
var _ tensor.Device = (*Backend)(nil)

// New creates a backend on the highest-performance available adapter.
// Returns an error when no GPU adapter or device can be acquired.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// NewWithLogger is New with device diagnostics routed to log.
func NewWithLogger(log zerolog.Logger) (*Backend, error) {
	return internalwebgpu.NewWithLogger(log)
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
