package nn

import (
	"fmt"
	"math/rand"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// PointwiseLinear applies an affine channel map at every grid location.
//
// This is the lifting/projection layer of Fourier neural operator
// stacks: it changes the channel count of a field without touching its
// spatial structure.
//
// Input shape:  [batch, in_channels, grid...]
// Weight shape: [out_channels, in_channels]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, grid...]
type PointwiseLinear[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	weight      *Parameter[B]
	bias        *Parameter[B] // nil when disabled
	backend     B
}

// NewPointwiseLinear creates a pointwise channel-mixing layer with
// Glorot initialization. rng may be nil for the deterministic default
// source.
func NewPointwiseLinear[B tensor.Backend](
	inChannels, outChannels int,
	useBias bool,
	rng *rand.Rand,
	backend B,
) *PointwiseLinear[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("pointwise linear: invalid channels in=%d, out=%d", inChannels, outChannels))
	}

	weight := GlorotUniform(defaultRand(rng), inChannels, outChannels,
		tensor.Shape{outChannels, inChannels}, backend)

	l := &PointwiseLinear[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		weight:      NewParameter("weight", weight),
		backend:     backend,
	}
	if useBias {
		l.bias = NewParameter("bias", Zeros[B](tensor.Shape{outChannels}, backend))
	}
	return l
}

// Forward applies the channel map at every grid location.
//
// Input:  [batch, in_channels, grid...]
// Output: [batch, out_channels, grid...]
func (l *PointwiseLinear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 3 {
		panic(fmt.Sprintf("pointwise linear: expected [batch, channels, grid...] input, got shape %v", shape))
	}
	if shape[1] != l.inChannels {
		panic(fmt.Sprintf("pointwise linear: input channels %d != expected %d", shape[1], l.inChannels))
	}

	output := tensor.New[float32, B](
		l.backend.PointwiseLinear(input.Raw(), l.weight.Tensor().Raw()),
		l.backend,
	)

	if l.bias != nil {
		biasShape := make([]int, len(shape))
		biasShape[0] = 1
		biasShape[1] = l.outChannels
		for i := 2; i < len(shape); i++ {
			biasShape[i] = 1
		}
		output = output.Add(l.bias.Tensor().Reshape(biasShape...))
	}

	return output
}

// Parameters returns the trainable parameters of this layer.
func (l *PointwiseLinear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *PointwiseLinear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *PointwiseLinear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InChannels returns the number of input channels.
func (l *PointwiseLinear[B]) InChannels() int {
	return l.inChannels
}

// OutChannels returns the number of output channels.
func (l *PointwiseLinear[B]) OutChannels() int {
	return l.outChannels
}

// String returns a string representation of the layer.
func (l *PointwiseLinear[B]) String() string {
	return fmt.Sprintf("PointwiseLinear(in_channels=%d, out_channels=%d, bias=%v)",
		l.inChannels, l.outChannels, l.bias != nil)
}

// StateDict returns a map of parameter names to raw tensors.
func (l *PointwiseLinear[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	stateDict["weight"] = l.weight.Tensor().Raw()
	if l.bias != nil {
		stateDict["bias"] = l.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
func (l *PointwiseLinear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weightRaw, ok := stateDict["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}
	expected := tensor.Shape{l.outChannels, l.inChannels}
	if !weightRaw.Shape().Equal(expected) {
		return fmt.Errorf("weight shape mismatch: expected %v, got %v", expected, weightRaw.Shape())
	}
	copy(l.weight.Tensor().Data(), weightRaw.AsFloat32())

	if l.bias != nil {
		biasRaw, ok := stateDict["bias"]
		if !ok {
			return fmt.Errorf("missing bias in state dict")
		}
		if !biasRaw.Shape().Equal(tensor.Shape{l.outChannels}) {
			return fmt.Errorf("bias shape mismatch: expected %v, got %v",
				tensor.Shape{l.outChannels}, biasRaw.Shape())
		}
		copy(l.bias.Tensor().Data(), biasRaw.AsFloat32())
	}

	return nil
}
