package cpu

import (
	"fmt"
	"math"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("relu", x, func(v float32) float32 {
		if v < 0 {
			return 0
		}
		return v
	})
}

// Sigmoid applies 1/(1+exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("sigmoid", x, func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(float64(-v))))
	})
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.mapFloat32("tanh", x, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// GELU applies the Gaussian Error Linear Unit (tanh approximation)
// element-wise.
func (cpu *CPUBackend) GELU(x *tensor.RawTensor) *tensor.RawTensor {
	sqrt2pi := math.Sqrt(2.0 / math.Pi)
	return cpu.mapFloat32("gelu", x, func(v float32) float32 {
		x64 := float64(v)
		inner := sqrt2pi * (x64 + 0.044715*x64*x64*x64)
		return float32(0.5 * x64 * (1.0 + math.Tanh(inner)))
	})
}

// mapFloat32 applies f element-wise to a float32 tensor.
func (cpu *CPUBackend) mapFloat32(name string, x *tensor.RawTensor, f func(float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: expected float32 input, got %s", name, x.DType()))
	}

	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	for i, v := range src {
		dst[i] = f(v)
	}

	return result
}
