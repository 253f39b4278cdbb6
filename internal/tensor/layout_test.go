package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		name string
		dims Shape
		want []int
	}{
		{"scalar", Shape{}, []int{}},
		{"vector", Shape{5}, []int{1}},
		{"matrix", Shape{2, 3}, []int{3, 1}},
		{"cube", Shape{1, 1024, 1024}, []int{1048576, 1024, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.dims.ComputeStrides()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("strides mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewLayoutContiguous(t *testing.T) {
	l := NewLayout(Shape{2, 3, 4})

	assert.True(t, l.IsContiguous())
	assert.Equal(t, 1, l.LastStride())
	assert.Equal(t, 0, l.Offset())
	assert.Equal(t, 24, l.ElemCount())
	assert.Equal(t, 3, l.Rank())
}

func TestLayoutTranspose(t *testing.T) {
	l := NewLayout(Shape{1, 1024, 1024})

	tr, err := l.Transpose(0, 2)
	require.NoError(t, err)

	assert.Equal(t, Shape{1024, 1024, 1}, tr.Dims())
	assert.Equal(t, []int{1, 1024, 1048576}, tr.Strides())
	assert.False(t, tr.IsContiguous())
	assert.Equal(t, 1048576, tr.LastStride())

	// The original layout is unchanged.
	assert.True(t, l.IsContiguous())
	assert.Equal(t, Shape{1, 1024, 1024}, l.Dims())
}

func TestLayoutTransposeInvalidAxis(t *testing.T) {
	l := NewLayout(Shape{2, 3})

	_, err := l.Transpose(0, 2)
	assert.ErrorIs(t, err, ErrInvalidAxis)

	_, err = l.Transpose(-1, 1)
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestLayoutTransposeSquareRoundTrip(t *testing.T) {
	l := NewLayout(Shape{4, 4})

	tr, err := l.Transpose(0, 1)
	require.NoError(t, err)
	back, err := tr.Transpose(0, 1)
	require.NoError(t, err)

	assert.True(t, back.IsContiguous())
	assert.Equal(t, l.Dims(), back.Dims())
}

func TestScalarLayout(t *testing.T) {
	l := NewLayout(Shape{})

	assert.Equal(t, 0, l.Rank())
	assert.Equal(t, 1, l.ElemCount())
	assert.Equal(t, 1, l.LastStride())
	assert.True(t, l.IsContiguous())
}

func TestNewLayoutStrided(t *testing.T) {
	l := NewLayoutStrided(Shape{2, 3}, []int{1, 2}, 5)

	assert.Equal(t, 5, l.Offset())
	assert.Equal(t, []int{1, 2}, l.Strides())
	assert.False(t, l.IsContiguous())
	assert.Equal(t, 2, l.LastStride())
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{2, 3}.Validate())
	assert.NoError(t, Shape{}.Validate())
	assert.Error(t, Shape{0, 4}.Validate())
	assert.Error(t, Shape{2, -1}.Validate())
}
