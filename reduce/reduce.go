// Copyright 2025 Ember ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package reduce exposes the layout-aware reduction engine and the fused
// last-axis softmax dispatcher. The engine validates axis, device and
// dtype, then dispatches to whichever backend capability the tensor's
// device implements.
package reduce

import (
	"github.com/ember-ml/ember/internal/fused"
	internalreduce "github.com/ember-ml/ember/internal/reduce"
	"github.com/ember-ml/ember/tensor"
)

// Op identifies a reduction operation.
type Op = internalreduce.Op

// Reduction operations.
const (
	Sum    Op = internalreduce.Sum
	ArgMin Op = internalreduce.ArgMin
	ArgMax Op = internalreduce.ArgMax
)

// Reduce applies op along axis. Sum preserves the input dtype; ArgMin and
// ArgMax produce Uint32 indices with first-occurrence tie-breaks. Strided
// views reduce without a materializing copy. On error the input tensor is
// untouched.
func Reduce(t *tensor.Tensor, op Op, axis int) (*tensor.Tensor, error) {
	return internalreduce.Reduce(t, op, axis)
}

// ResultDType reports the output dtype Reduce would produce for the given
// input dtype, and whether op supports that dtype at all.
func ResultDType(op Op, in tensor.DataType) (tensor.DataType, bool) {
	return internalreduce.ResultDType(op, in)
}

// SoftmaxLastAxis dispatches the fused softmax kernel over the last axis.
// The tensor must live on a device with fused kernels (ErrUnsupportedDevice
// otherwise), be contiguous with unit last stride (ErrLayoutUnsupported),
// and have a float dtype with a registered kernel (ErrUnsupportedDType).
func SoftmaxLastAxis(t *tensor.Tensor) (*tensor.Tensor, error) {
	return fused.SoftmaxLastAxis(t)
}
