// Package cpu implements the CPU backend for the NeuralOp framework.
//
// All spectral primitives (real FFT, inverse real FFT, mode-truncated
// contraction) live here, built on gonum's dsp/fourier transforms.
package cpu

import (
	"fmt"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// FFT plans are cached per transform length and reused across calls.
// The cache is invisible to callers: every op returns freshly allocated
// results, so outputs never alias internal scratch.
type CPUBackend struct {
	device tensor.Device
	plans  *planCache
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		plans:  newPlanCache(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y complex64) complex64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y complex64) complex64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y complex64) complex64 { return x * y })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("mulscalar: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = v * scalar
		}
	case tensor.Complex64:
		src, dst := x.AsComplex64(), result.AsComplex64()
		s := complex(scalar, 0)
		for i, v := range src {
			dst[i] = v * s
		}
	default:
		panic(fmt.Sprintf("mulscalar: unsupported dtype %s", x.DType()))
	}

	return result
}

// binaryOp applies an elementwise binary operation with broadcasting.
func (cpu *CPUBackend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	c64 func(x, y complex64) complex64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		av, bv, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		if !needsBroadcast {
			for i := range out {
				out[i] = f32(av[i], bv[i])
			}
			return result
		}
		ai := newBroadcastIter(outShape, a.Shape())
		bi := newBroadcastIter(outShape, b.Shape())
		for i := range out {
			out[i] = f32(av[ai.index(i)], bv[bi.index(i)])
		}
	case tensor.Complex64:
		av, bv, out := a.AsComplex64(), b.AsComplex64(), result.AsComplex64()
		if !needsBroadcast {
			for i := range out {
				out[i] = c64(av[i], bv[i])
			}
			return result
		}
		ai := newBroadcastIter(outShape, a.Shape())
		bi := newBroadcastIter(outShape, b.Shape())
		for i := range out {
			out[i] = c64(av[ai.index(i)], bv[bi.index(i)])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// broadcastIter maps flat indices in the broadcast output shape back to
// flat indices in a (possibly lower-rank, size-1-padded) operand shape.
type broadcastIter struct {
	outShape   tensor.Shape
	outStrides []int
	inStrides  []int // stride 0 where the operand dimension is 1 or missing
}

func newBroadcastIter(outShape, inShape tensor.Shape) *broadcastIter {
	outStrides := outShape.ComputeStrides()
	inStrides := make([]int, len(outShape))

	realStrides := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)
	for i := range outShape {
		j := i - offset
		if j < 0 || inShape[j] == 1 {
			inStrides[i] = 0
		} else {
			inStrides[i] = realStrides[j]
		}
	}

	return &broadcastIter{outShape: outShape, outStrides: outStrides, inStrides: inStrides}
}

func (it *broadcastIter) index(flat int) int {
	idx := 0
	for i := range it.outShape {
		coord := (flat / it.outStrides[i]) % it.outShape[i]
		idx += coord * it.inStrides[i]
	}
	return idx
}

// Reshape returns a tensor with the same data but different shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}

	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}

	copy(result.Data(), t.Data())
	return result
}

// Transpose transposes the tensor by permuting its dimensions.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	// Element-by-element permuted copy, walking the output in row-major order.
	elemSize := t.DType().Size()
	srcStrides := t.Strides()
	dstData := result.Data()
	srcData := t.Data()

	n := result.NumElements()
	outStrides := newShape.ComputeStrides()
	for flat := 0; flat < n; flat++ {
		srcIdx := 0
		for i := 0; i < ndim; i++ {
			coord := (flat / outStrides[i]) % newShape[i]
			srcIdx += coord * srcStrides[axes[i]]
		}
		copy(dstData[flat*elemSize:(flat+1)*elemSize], srcData[srcIdx*elemSize:(srcIdx+1)*elemSize])
	}

	return result
}
