package nn

import (
	"math"
	"math/rand"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// Initializer produces a real-valued weight tensor. fanIn and fanOut are
// the channel counts the variance scaling is derived from.
type Initializer[B tensor.Backend] func(rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B]

// ComplexInitializer produces a complex-valued weight tensor.
type ComplexInitializer[B tensor.Backend] func(rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[complex64, B]

// GlorotUniform is Xavier/Glorot initialization for real weights.
//
// Values are drawn from U(-b, b) with b = sqrt(6/(fan_in + fan_out)),
// which maintains activation variance across layers.
//
// The random source is passed explicitly so constructions are
// reproducible without global seed state.
func GlorotUniform[B tensor.Backend](rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand for weight initialization (not security-critical)
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}

	return t
}

// GlorotComplex is the complex-valued Glorot initializer used for
// spectral filter weights: real and imaginary parts are drawn
// independently from the Glorot uniform distribution.
func GlorotComplex[B tensor.Backend](rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[complex64, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[complex64](shape, backend)
	data := t.Data()
	for i := range data {
		//nolint:gosec // math/rand for weight initialization (not security-critical)
		re := (rng.Float64()*2.0 - 1.0) * bound
		im := (rng.Float64()*2.0 - 1.0) * bound
		data[i] = complex(float32(re), float32(im))
	}

	return t
}

// Zeros creates a float32 tensor filled with zeros.
//
// This is the default bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// ZerosComplex creates a complex64 tensor filled with zeros.
func ZerosComplex[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[complex64, B] {
	return tensor.Zeros[complex64](shape, backend)
}

// defaultRand returns rng, or a deterministic fallback source when nil.
func defaultRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	//nolint:gosec // deterministic default for reproducible constructions
	return rand.New(rand.NewSource(1))
}
