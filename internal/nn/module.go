// Package nn implements the spectral neural-network modules of the
// NeuralOp framework.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - SpectralConv / SpectralConv1D: Fourier neural operator layers
//   - PointwiseLinear: per-grid-point channel mixing (lifting/projection)
//   - Activations: ReLU, Sigmoid, Tanh, GELU, Identity
//   - Sequential: Container for stacking layers
package nn

import (
	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Modules can be composed to build operator stacks:
//
//	model := nn.NewSequential[Backend](
//	    lifting,
//	    spectral1,
//	    spectral2,
//	    projection,
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Spectral layers expect [batch, channels, grid...] inputs and
	// return tensors of the same layout.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions). For spectral layers this is the
	// truncated-mode view only; zero padding is never exposed.
	Parameters() []*Parameter[B]
}

// StateDicter is implemented by modules whose parameters can be
// exported to and restored from a state dictionary.
type StateDicter interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
