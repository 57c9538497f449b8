package nn

import (
	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// ReLUBackend is an interface for backends that support ReLU activation.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is an interface for backends that support Sigmoid activation.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// TanhBackend is an interface for backends that support Tanh activation.
type TanhBackend interface {
	Tanh(*tensor.RawTensor) *tensor.RawTensor
}

// GELUBackend is an interface for backends that support GELU activation.
type GELUBackend interface {
	GELU(*tensor.RawTensor) *tensor.RawTensor
}

// Identity is the no-op activation.
//
// A spectral layer constructed without an explicit activation uses
// Identity; layer summaries report it as "no activation".
type Identity[B tensor.Backend] struct{}

// NewIdentity creates a new Identity activation module.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return &Identity[B]{}
}

// Forward returns the input unchanged.
func (id *Identity[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input
}

// Parameters returns an empty slice (Identity has no trainable parameters).
func (id *Identity[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns the activation name.
func (id *Identity[B]) String() string {
	return "identity"
}

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if reluBackend, ok := any(backend).(ReLUBackend); ok {
		return tensor.New[float32, B](reluBackend.ReLU(input.Raw()), backend)
	}

	panic("ReLU: backend must implement the ReLU operation")
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns the activation name.
func (r *ReLU[B]) String() string {
	return "relu"
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x)),
// squashing values to the range (0, 1).
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if sigmoidBackend, ok := any(backend).(SigmoidBackend); ok {
		return tensor.New[float32, B](sigmoidBackend.Sigmoid(input.Raw()), backend)
	}

	panic("Sigmoid: backend must implement the Sigmoid operation")
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns the activation name.
func (s *Sigmoid[B]) String() string {
	return "sigmoid"
}

// Tanh is a hyperbolic tangent activation module.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies Tanh activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if tanhBackend, ok := any(backend).(TanhBackend); ok {
		return tensor.New[float32, B](tanhBackend.Tanh(input.Raw()), backend)
	}

	panic("Tanh: backend must implement the Tanh operation")
}

// Parameters returns an empty slice (Tanh has no trainable parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns the activation name.
func (t *Tanh[B]) String() string {
	return "tanh"
}

// GELU is a Gaussian Error Linear Unit activation module
// (tanh approximation).
type GELU[B tensor.Backend] struct{}

// NewGELU creates a new GELU activation module.
func NewGELU[B tensor.Backend]() *GELU[B] {
	return &GELU[B]{}
}

// Forward applies GELU activation.
func (g *GELU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	if geluBackend, ok := any(backend).(GELUBackend); ok {
		return tensor.New[float32, B](geluBackend.GELU(input.Raw()), backend)
	}

	panic("GELU: backend must implement the GELU operation")
}

// Parameters returns an empty slice (GELU has no trainable parameters).
func (g *GELU[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns the activation name.
func (g *GELU[B]) String() string {
	return "gelu"
}
