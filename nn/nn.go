// Copyright 2025 NeuralOp ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/neuralop-ml/neuralop/internal/nn"
	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// StateDicter is implemented by modules that can export and import their
// parameters as a state dictionary.
type StateDicter = nn.StateDicter

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// SpectralConv is a Fourier-space convolution layer for arbitrary grid ranks.
type SpectralConv[B tensor.Backend] = nn.SpectralConv[B]

// SpectralConvConfig holds the optional settings for SpectralConv construction.
type SpectralConvConfig[B tensor.Backend] = nn.SpectralConvConfig[B]

// SpectralConvWeights carries explicit weights for SpectralConv construction.
type SpectralConvWeights[B tensor.Backend] = nn.SpectralConvWeights[B]

// NewSpectralConv creates a spectral convolution layer with randomly
// initialized weights.
//
// Example:
//
//	backend := cpu.New()
//	layer, err := nn.NewSpectralConv(2, 4, tensor.Shape{64, 64}, []int{12, 12},
//	    nn.SpectralConvConfig[*cpu.Backend]{}, backend)
func NewSpectralConv[B tensor.Backend](
	inChannels, outChannels int,
	gridShape tensor.Shape,
	modes []int,
	config SpectralConvConfig[B],
	backend B,
) (*SpectralConv[B], error) {
	return nn.NewSpectralConv(inChannels, outChannels, gridShape, modes, config, backend)
}

// NewSpectralConvFromWeights creates a spectral convolution layer from
// explicit weights.
func NewSpectralConvFromWeights[B tensor.Backend](
	w SpectralConvWeights[B],
	gridShape tensor.Shape,
	modes []int,
	backend B,
) (*SpectralConv[B], error) {
	return nn.NewSpectralConvFromWeights(w, gridShape, modes, backend)
}

// SpectralConv1D is the one-dimensional spectral convolution layer.
type SpectralConv1D[B tensor.Backend] = nn.SpectralConv1D[B]

// NewSpectralConv1D creates a 1D spectral convolution layer.
//
// Example:
//
//	backend := cpu.New()
//	layer, err := nn.NewSpectralConv1D(2, 2, 64, 16,
//	    nn.SpectralConvConfig[*cpu.Backend]{Activation: nn.NewSigmoid[*cpu.Backend]()}, backend)
func NewSpectralConv1D[B tensor.Backend](
	inChannels, outChannels, gridSize, modes int,
	config SpectralConvConfig[B],
	backend B,
) (*SpectralConv1D[B], error) {
	return nn.NewSpectralConv1D(inChannels, outChannels, gridSize, modes, config, backend)
}

// NewSpectralConv1DFromWeights creates a 1D spectral convolution layer from
// explicit weights.
func NewSpectralConv1DFromWeights[B tensor.Backend](
	w SpectralConvWeights[B],
	gridSize, modes int,
	backend B,
) (*SpectralConv1D[B], error) {
	return nn.NewSpectralConv1DFromWeights(w, gridSize, modes, backend)
}

// PointwiseLinear applies a shared linear map across all grid positions.
//
// Used as the lifting and projection layers of a Fourier neural operator.
type PointwiseLinear[B tensor.Backend] = nn.PointwiseLinear[B]

// NewPointwiseLinear creates a new pointwise linear layer.
//
// Example:
//
//	backend := cpu.New()
//	lifting := nn.NewPointwiseLinear(1, 16, true, nil, backend)
func NewPointwiseLinear[B tensor.Backend](inChannels, outChannels int, useBias bool, rng *rand.Rand, backend B) *PointwiseLinear[B] {
	return nn.NewPointwiseLinear(inChannels, outChannels, useBias, rng, backend)
}

// Containers

// Sequential chains modules so each output feeds the next input.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new Sequential container.
//
// Example:
//
//	model := nn.NewSequential[*cpu.Backend](
//	    lifting,
//	    spectral1,
//	    spectral2,
//	    projection,
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Activations

// Identity passes its input through unchanged.
type Identity[B tensor.Backend] = nn.Identity[B]

// NewIdentity creates a new identity activation layer.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return nn.NewIdentity[B]()
}

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid represents the sigmoid activation function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh represents the hyperbolic tangent activation function.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// GELU represents the Gaussian Error Linear Unit activation function.
type GELU[B tensor.Backend] = nn.GELU[B]

// NewGELU creates a new GELU activation layer.
func NewGELU[B tensor.Backend]() *GELU[B] {
	return nn.NewGELU[B]()
}

// Initialization

// Initializer fills a real-valued weight tensor.
type Initializer[B tensor.Backend] = nn.Initializer[B]

// ComplexInitializer fills a complex-valued weight tensor.
type ComplexInitializer[B tensor.Backend] = nn.ComplexInitializer[B]

// GlorotUniform fills a real weight tensor with Glorot (Xavier) uniform draws.
func GlorotUniform[B tensor.Backend](rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.GlorotUniform(rng, fanIn, fanOut, shape, backend)
}

// GlorotComplex fills a complex weight tensor with independent Glorot
// uniform draws for the real and imaginary parts.
func GlorotComplex[B tensor.Backend](rng *rand.Rand, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[complex64, B] {
	return nn.GlorotComplex(rng, fanIn, fanOut, shape, backend)
}
