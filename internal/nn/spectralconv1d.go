package nn

import (
	"fmt"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// SpectralConv1D is the fixed one-dimensional Fourier neural operator
// layer: a single grid axis, a single mode count.
//
// On one axis the spectrum has no negative-frequency bookkeeping: the
// real FFT's ⌊n/2⌋+1 bins are the whole story. This makes the variant
// the common fast case for operator learning on 1-D fields (Burgers,
// advection, and similar benchmark equations).
//
// Input shape:  [batch, in_channels, grid]
// Output shape: [batch, out_channels, grid]
//
// Example:
//
//	layer, err := nn.NewSpectralConv1D(2, 2, 64, 16,
//	    nn.SpectralConvConfig[*cpu.CPUBackend]{Activation: nn.NewSigmoid[*cpu.CPUBackend]()}, backend)
type SpectralConv1D[B tensor.Backend] struct {
	conv *SpectralConv[B]
}

// NewSpectralConv1D creates a 1-D spectral convolution layer over a grid
// of gridSize points, retaining the lowest modes frequencies.
//
// Construction fails with a configuration error when
// modes > ⌊gridSize/2⌋+1.
func NewSpectralConv1D[B tensor.Backend](
	inChannels, outChannels int,
	gridSize, modes int,
	config SpectralConvConfig[B],
	backend B,
) (*SpectralConv1D[B], error) {
	conv, err := NewSpectralConv(inChannels, outChannels,
		tensor.Shape{gridSize}, []int{modes}, config, backend)
	if err != nil {
		return nil, err
	}
	return &SpectralConv1D[B]{conv: conv}, nil
}

// NewSpectralConv1DFromWeights creates a 1-D layer from explicit tensors.
func NewSpectralConv1DFromWeights[B tensor.Backend](
	w SpectralConvWeights[B],
	gridSize, modes int,
	backend B,
) (*SpectralConv1D[B], error) {
	conv, err := NewSpectralConvFromWeights(w, tensor.Shape{gridSize}, []int{modes}, backend)
	if err != nil {
		return nil, err
	}
	return &SpectralConv1D[B]{conv: conv}, nil
}

// Forward evaluates the layer on a batch of 1-D fields.
//
// Input:  [batch, in_channels, grid]
// Output: [batch, out_channels, grid]
func (l *SpectralConv1D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.conv.Forward(input)
}

// Parameters returns the trainable parameters (truncated spectral view,
// linear weight, enabled biases).
func (l *SpectralConv1D[B]) Parameters() []*Parameter[B] {
	return l.conv.Parameters()
}

// SpectralWeight returns the truncated complex filter [in, out, modes].
func (l *SpectralConv1D[B]) SpectralWeight() *tensor.Tensor[complex64, B] {
	return l.conv.SpectralWeight()
}

// PaddedWeight materializes the full zero-padded spectrum
// [in, out, ⌊grid/2⌋+1].
func (l *SpectralConv1D[B]) PaddedWeight() *tensor.Tensor[complex64, B] {
	return l.conv.PaddedWeight()
}

// InChannels returns the number of input channels.
func (l *SpectralConv1D[B]) InChannels() int {
	return l.conv.InChannels()
}

// OutChannels returns the number of output channels.
func (l *SpectralConv1D[B]) OutChannels() int {
	return l.conv.OutChannels()
}

// GridSize returns the grid length.
func (l *SpectralConv1D[B]) GridSize() int {
	return l.conv.GridShape()[0]
}

// Modes returns the retained frequency count.
func (l *SpectralConv1D[B]) Modes() int {
	return l.conv.Modes()[0]
}

// String returns a string representation of the layer.
func (l *SpectralConv1D[B]) String() string {
	c := l.conv
	return fmt.Sprintf("SpectralConv1D(spectral=[%d×%d, modes=%d of %d], linear=[%d×%d], grid=%d, activation=%s)",
		c.inChannels, c.outChannels, c.modes[0], c.gridShape[0]/2+1,
		c.outChannels, c.inChannels, c.gridShape[0], c.activationName())
}

// StateDict returns a map of parameter names to raw tensors.
func (l *SpectralConv1D[B]) StateDict() map[string]*tensor.RawTensor {
	return l.conv.StateDict()
}

// LoadStateDict loads parameters from a state dictionary.
func (l *SpectralConv1D[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return l.conv.LoadStateDict(stateDict)
}
