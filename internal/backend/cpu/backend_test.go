package cpu

import (
	"testing"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-4
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

func rawFromFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func rawFromComplex64(t *testing.T, data []complex64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Complex64, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	copy(raw.AsComplex64(), data)
	return raw
}

func TestAdd(t *testing.T) {
	backend := newTestBackend()

	a := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawFromFloat32(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	result := backend.Add(a, b)

	expected := []float32{11, 22, 33, 44}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("Add = %v, want %v", result.AsFloat32(), expected)
	}
}

func TestAddBroadcast(t *testing.T) {
	backend := newTestBackend()

	// [2, 2, 3] + [1, 2, 1]: the bias pattern used by layer forward passes.
	a := rawFromFloat32(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
		10, 11, 12,
	}, tensor.Shape{2, 2, 3})
	b := rawFromFloat32(t, []float32{100, 200}, tensor.Shape{1, 2, 1})

	result := backend.Add(a, b)

	expected := []float32{
		101, 102, 103,
		204, 205, 206,
		107, 108, 109,
		210, 211, 212,
	}
	if !result.Shape().Equal(tensor.Shape{2, 2, 3}) {
		t.Fatalf("shape = %v, want [2 2 3]", result.Shape())
	}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("broadcast Add = %v, want %v", result.AsFloat32(), expected)
	}
}

func TestSubMul(t *testing.T) {
	backend := newTestBackend()

	a := rawFromFloat32(t, []float32{5, 7, 9}, tensor.Shape{3})
	b := rawFromFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})

	sub := backend.Sub(a, b)
	if !float32SliceEqual(sub.AsFloat32(), []float32{4, 5, 6}) {
		t.Errorf("Sub = %v, want [4 5 6]", sub.AsFloat32())
	}

	mul := backend.Mul(a, b)
	if !float32SliceEqual(mul.AsFloat32(), []float32{5, 14, 27}) {
		t.Errorf("Mul = %v, want [5 14 27]", mul.AsFloat32())
	}
}

func TestAddComplex(t *testing.T) {
	backend := newTestBackend()

	a := rawFromComplex64(t, []complex64{complex(1, 2), complex(3, -1)}, tensor.Shape{2})
	b := rawFromComplex64(t, []complex64{complex(0, 1), complex(-3, 1)}, tensor.Shape{2})

	result := backend.Add(a, b).AsComplex64()

	if result[0] != complex64(complex(1, 3)) || result[1] != 0 {
		t.Errorf("complex Add = %v, want [(1+3i) 0]", result)
	}
}

func TestMulScalar(t *testing.T) {
	backend := newTestBackend()

	x := rawFromFloat32(t, []float32{1, -2, 3}, tensor.Shape{3})
	result := backend.MulScalar(x, 0.5)
	if !float32SliceEqual(result.AsFloat32(), []float32{0.5, -1, 1.5}) {
		t.Errorf("MulScalar = %v, want [0.5 -1 1.5]", result.AsFloat32())
	}

	c := rawFromComplex64(t, []complex64{complex(2, 4)}, tensor.Shape{1})
	cr := backend.MulScalar(c, 0.5).AsComplex64()
	if cr[0] != complex64(complex(1, 2)) {
		t.Errorf("complex MulScalar = %v, want (1+2i)", cr[0])
	}
}

func TestDTypeMismatchPanics(t *testing.T) {
	backend := newTestBackend()

	a := rawFromFloat32(t, []float32{1}, tensor.Shape{1})
	b := rawFromComplex64(t, []complex64{1}, tensor.Shape{1})

	defer func() {
		if recover() == nil {
			t.Error("Add with mismatched dtypes should panic")
		}
	}()
	backend.Add(a, b)
}

func TestReshape(t *testing.T) {
	backend := newTestBackend()

	x := rawFromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6})
	result := backend.Reshape(x, tensor.Shape{2, 3})

	if !result.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("shape = %v, want [2 3]", result.Shape())
	}
	if !float32SliceEqual(result.AsFloat32(), x.AsFloat32()) {
		t.Error("reshape should preserve data order")
	}
}

func TestReshapeIncompatiblePanics(t *testing.T) {
	backend := newTestBackend()

	x := rawFromFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	defer func() {
		if recover() == nil {
			t.Error("Reshape to a different element count should panic")
		}
	}()
	backend.Reshape(x, tensor.Shape{3})
}

func TestTranspose2D(t *testing.T) {
	backend := newTestBackend()

	x := rawFromFloat32(t, []float32{
		1, 2, 3,
		4, 5, 6,
	}, tensor.Shape{2, 3})
	result := backend.Transpose(x)

	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", result.Shape())
	}
	expected := []float32{1, 4, 2, 5, 3, 6}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("Transpose = %v, want %v", result.AsFloat32(), expected)
	}
}

func TestTransposePermutation(t *testing.T) {
	backend := newTestBackend()

	x := rawFromFloat32(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	}, tensor.Shape{2, 1, 4})
	result := backend.Transpose(x, 2, 0, 1)

	if !result.Shape().Equal(tensor.Shape{4, 2, 1}) {
		t.Fatalf("shape = %v, want [4 2 1]", result.Shape())
	}
	expected := []float32{1, 5, 2, 6, 3, 7, 4, 8}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("Transpose(2,0,1) = %v, want %v", result.AsFloat32(), expected)
	}
}

func TestPointwiseLinear(t *testing.T) {
	backend := newTestBackend()

	// 1 batch, 2 input channels, 3 grid points.
	x := rawFromFloat32(t, []float32{
		1, 2, 3, // channel 0
		4, 5, 6, // channel 1
	}, tensor.Shape{1, 2, 3})

	// 2 output channels: [out, in]
	w := rawFromFloat32(t, []float32{
		1, 0, // out 0 copies channel 0
		2, 3, // out 1 = 2*ch0 + 3*ch1
	}, tensor.Shape{2, 2})

	result := backend.PointwiseLinear(x, w)

	if !result.Shape().Equal(tensor.Shape{1, 2, 3}) {
		t.Fatalf("shape = %v, want [1 2 3]", result.Shape())
	}
	expected := []float32{
		1, 2, 3,
		14, 19, 24,
	}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("PointwiseLinear = %v, want %v", result.AsFloat32(), expected)
	}
}

func TestPointwiseLinearChannelMismatchPanics(t *testing.T) {
	backend := newTestBackend()

	x := rawFromFloat32(t, make([]float32, 6), tensor.Shape{1, 2, 3})
	w := rawFromFloat32(t, make([]float32, 6), tensor.Shape{2, 3})

	defer func() {
		if recover() == nil {
			t.Error("PointwiseLinear with mismatched channels should panic")
		}
	}()
	backend.PointwiseLinear(x, w)
}
