// Package tensor provides the core tensor types for the Ember compute engine:
// shapes, memory layouts, backend-tagged storage and the Tensor handle itself.
package tensor

// DataType represents runtime type information for tensor elements.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Float16
	BFloat16
	Int64
	Uint32
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Uint32:
		return 4
	case Float64, Int64:
		return 8
	case Float16, BFloat16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Float16:
		return "f16"
	case BFloat16:
		return "bf16"
	case Int64:
		return "i64"
	case Uint32:
		return "u32"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the data type is a floating-point format.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float32, Float64, Float16, BFloat16:
		return true
	default:
		return false
	}
}

// IsHalf reports whether the data type is a 16-bit floating-point format.
func (dt DataType) IsHalf() bool {
	return dt == Float16 || dt == BFloat16
}
