package cpu

import (
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"

	"github.com/ember-ml/ember/internal/tensor"
)

// Element access for the float family is parameterized by a pair of
// closures resolved once per dispatch from a closed dtype set. The 16-bit
// formats decode to float32 on load and encode on store, so one float32
// code path serves all three precisions and 16-bit sums accumulate in
// float32 without changing the observable result dtype.

// floatLoader returns a closure reading element i of host storage as
// float32. Reports false for non-float or wider-than-32-bit dtypes.
func floatLoader(s *tensor.Storage) (func(i int) float32, bool) {
	switch s.DType() {
	case tensor.Float32:
		data := s.Float32s()
		return func(i int) float32 { return data[i] }, true
	case tensor.Float16:
		bits := s.Uint16s()
		return func(i int) float32 { return float16.Frombits(bits[i]).Float32() }, true
	case tensor.BFloat16:
		bits := s.Uint16s()
		return func(i int) float32 { return bfloat16.BFloat16(bits[i]).Float32() }, true
	default:
		return nil, false
	}
}

// floatStorer returns a closure writing float32 values into host storage,
// encoding to the storage's declared element format.
func floatStorer(s *tensor.Storage) (func(i int, v float32), bool) {
	switch s.DType() {
	case tensor.Float32:
		data := s.Float32s()
		return func(i int, v float32) { data[i] = v }, true
	case tensor.Float16:
		bits := s.Uint16s()
		return func(i int, v float32) { bits[i] = float16.Fromfloat32(v).Bits() }, true
	case tensor.BFloat16:
		bits := s.Uint16s()
		return func(i int, v float32) { bits[i] = uint16(bfloat16.FromFloat32(v)) }, true
	default:
		return nil, false
	}
}
