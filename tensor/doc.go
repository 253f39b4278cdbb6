// Copyright 2025 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the Ember compute engine's
// core types: shapes, strided memory layouts, device-tagged storage and
// the Tensor handle.
//
// A Tensor couples an immutable Layout (dims, strides, start offset) with
// refcounted Storage living on a Device. View operations such as Transpose
// share storage without copying; Contiguous materializes a packed copy
// when a kernel needs one.
//
// Example:
//
//	backend := cpu.New()
//	x, _ := tensor.New(tensor.Shape{2, 3}, tensor.Float32, backend)
//	xt, _ := x.Transpose(0, 1) // (3, 2) view over the same storage
package tensor
