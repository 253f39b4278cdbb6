// Copyright 2025 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu exposes the CPU backend: pure Go kernels over host memory,
// with optional goroutine parallelism for large reductions.
package cpu

import (
	internalcpu "github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/tensor"
)

// Backend is the CPU compute backend.
type Backend = internalcpu.Backend

// Config controls worker parallelism for CPU kernels.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Device.
var _ tensor.Device = (*Backend)(nil)

// New creates a CPU backend with default parallelism.
//
// Example:
//
//	backend := cpu.New()
//	x, _ := tensor.New(tensor.Shape{2, 3}, tensor.Float32, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit worker settings.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
