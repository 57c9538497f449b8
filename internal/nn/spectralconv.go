package nn

import (
	"fmt"
	"math/rand"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// SpectralConv is an N-dimensional Fourier neural operator layer.
//
// The layer sums two paths and applies an activation:
//
//	output = σ( IFFT( W_f · FFT(input) ) + W_l·input + biases )
//
// Spectral path: the input field is moved to frequency space with a
// real-input FFT over all grid axes, the coefficients of the lowest
// modes[i] frequencies per axis are mixed across channels by the complex
// filter W_f, every higher frequency is zeroed, and the result is moved
// back to the grid domain. Mode truncation is intentional lossy
// compression of the signal's frequency content.
//
// Linear path: a per-grid-point channel matmul with W_l, a skip
// connection that performs no spectral filtering.
//
// Input shape:  [batch, in_channels, grid...]
// Output shape: [batch, out_channels, grid...]
//
// The filter is stored truncated as [in, out, modes...]; the logical
// full-spectrum tensor with its zero padding is available through
// PaddedWeight. Optimizers see exactly the truncated block (through its
// real view), so the padding region can never be updated.
//
// Example:
//
//	backend := cpu.New()
//	layer, err := nn.NewSpectralConv(2, 2, tensor.Shape{64}, []int{16},
//	    nn.SpectralConvConfig[*cpu.CPUBackend]{Activation: nn.NewGELU[*cpu.CPUBackend]()}, backend)
type SpectralConv[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	gridShape   tensor.Shape
	modes       []int

	spectralWeight *tensor.Tensor[complex64, B] // [in, out, modes...]
	spectralBias   *tensor.Tensor[complex64, B] // [out, modes...] or nil

	// Optimizer-facing views. Complex tensors are wrapped through
	// RealView so all parameters are float32.
	weightParam       *Parameter[B]
	spectralBiasParam *Parameter[B]
	linearWeight      *Parameter[B] // [out, in]
	linearBias        *Parameter[B] // [out] or nil

	activation Module[B]
	backend    B
}

// SpectralConvConfig holds optional construction settings for SpectralConv.
//
// The zero value gives both biases, identity activation, Glorot
// initializers, and a fixed deterministic random source.
type SpectralConvConfig[B tensor.Backend] struct {
	Activation     Module[B]               // Elementwise activation (nil = identity)
	NoSpectralBias bool                    // Disable the frequency-space bias
	NoLinearBias   bool                    // Disable the linear-path bias
	Rand           *rand.Rand              // Random source for initializers
	SpectralInit   ComplexInitializer[B]   // Filter initializer (default GlorotComplex)
	LinearInit     Initializer[B]          // Linear-path initializer (default GlorotUniform)
}

// NewSpectralConv creates an N-dimensional spectral convolution layer.
//
// gridShape fixes the spatial grid the layer operates on; modes gives the
// number of retained frequencies per grid axis and must satisfy
// modes[i] ≤ ⌊gridShape[i]/2⌋+1 (the Nyquist bound of a real-input FFT).
//
// Returns a configuration error when the mode counts and grid do not
// agree; no partial layer is ever returned.
func NewSpectralConv[B tensor.Backend](
	inChannels, outChannels int,
	gridShape tensor.Shape,
	modes []int,
	config SpectralConvConfig[B],
	backend B,
) (*SpectralConv[B], error) {
	if inChannels <= 0 || outChannels <= 0 {
		return nil, fmt.Errorf("spectral conv: invalid channels in=%d, out=%d", inChannels, outChannels)
	}
	if err := validateModes(gridShape, modes); err != nil {
		return nil, err
	}

	rng := defaultRand(config.Rand)
	spectralInit := config.SpectralInit
	if spectralInit == nil {
		spectralInit = GlorotComplex[B]
	}
	linearInit := config.LinearInit
	if linearInit == nil {
		linearInit = GlorotUniform[B]
	}

	weightShape := append(tensor.Shape{inChannels, outChannels}, modes...)
	spectralWeight := spectralInit(rng, inChannels, outChannels, weightShape, backend)

	linearWeight := linearInit(rng, inChannels, outChannels, tensor.Shape{outChannels, inChannels}, backend)

	var spectralBias *tensor.Tensor[complex64, B]
	if !config.NoSpectralBias {
		spectralBias = ZerosComplex[B](append(tensor.Shape{outChannels}, modes...), backend)
	}

	var linearBias *tensor.Tensor[float32, B]
	if !config.NoLinearBias {
		linearBias = Zeros[B](tensor.Shape{outChannels}, backend)
	}

	return newSpectralConv(inChannels, outChannels, gridShape, modes,
		spectralWeight, spectralBias, linearWeight, linearBias,
		config.Activation, backend), nil
}

// SpectralConvWeights carries pre-built tensors for
// NewSpectralConvFromWeights.
type SpectralConvWeights[B tensor.Backend] struct {
	// SpectralWeight is either the truncated filter [in, out, modes...]
	// or the full zero-padded spectrum [in, out, ⌊g/2⌋+1 per axis]; the
	// padded form is validated and sliced down to the truncated block.
	SpectralWeight *tensor.Tensor[complex64, B]
	LinearWeight   *tensor.Tensor[float32, B]   // [out, in]
	SpectralBias   *tensor.Tensor[complex64, B] // [out, modes...], nil disables
	LinearBias     *tensor.Tensor[float32, B]   // [out], nil disables
	Activation     Module[B]                    // nil = identity
}

// NewSpectralConvFromWeights creates a spectral convolution layer from
// explicit tensors, used for deserialization, testing, and weight
// sharing across instances.
func NewSpectralConvFromWeights[B tensor.Backend](
	w SpectralConvWeights[B],
	gridShape tensor.Shape,
	modes []int,
	backend B,
) (*SpectralConv[B], error) {
	if w.SpectralWeight == nil || w.LinearWeight == nil {
		return nil, fmt.Errorf("spectral conv: spectral and linear weights are required")
	}
	if err := validateModes(gridShape, modes); err != nil {
		return nil, err
	}

	ls := w.LinearWeight.Shape()
	if len(ls) != 2 {
		return nil, fmt.Errorf("spectral conv: linear weight is %dD, want 2D [out, in]", len(ls))
	}
	outChannels, inChannels := ls[0], ls[1]

	truncShape := append(tensor.Shape{inChannels, outChannels}, modes...)
	spectralWeight := w.SpectralWeight
	switch {
	case spectralWeight.Shape().Equal(truncShape):
		// Already the truncated block.
	case spectralWeight.Shape().Equal(append(tensor.Shape{inChannels, outChannels}, halfSpectrum(gridShape)...)):
		var err error
		spectralWeight, err = extractTruncated(spectralWeight, modes, backend)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("spectral conv: spectral weight shape %v, want %v or padded %v",
			spectralWeight.Shape(), truncShape,
			append(tensor.Shape{inChannels, outChannels}, halfSpectrum(gridShape)...))
	}

	if w.SpectralBias != nil {
		wantBias := append(tensor.Shape{outChannels}, modes...)
		if !w.SpectralBias.Shape().Equal(wantBias) {
			return nil, fmt.Errorf("spectral conv: spectral bias shape %v, want %v", w.SpectralBias.Shape(), wantBias)
		}
	}
	if w.LinearBias != nil && !w.LinearBias.Shape().Equal(tensor.Shape{outChannels}) {
		return nil, fmt.Errorf("spectral conv: linear bias shape %v, want %v", w.LinearBias.Shape(), tensor.Shape{outChannels})
	}

	return newSpectralConv(inChannels, outChannels, gridShape, modes,
		spectralWeight, w.SpectralBias, w.LinearWeight, w.LinearBias,
		w.Activation, backend), nil
}

// newSpectralConv wires validated tensors into a layer and builds the
// optimizer-facing parameter views.
func newSpectralConv[B tensor.Backend](
	inChannels, outChannels int,
	gridShape tensor.Shape,
	modes []int,
	spectralWeight, spectralBias *tensor.Tensor[complex64, B],
	linearWeight, linearBias *tensor.Tensor[float32, B],
	activation Module[B],
	backend B,
) *SpectralConv[B] {
	l := &SpectralConv[B]{
		inChannels:     inChannels,
		outChannels:    outChannels,
		gridShape:      gridShape.Clone(),
		modes:          append([]int(nil), modes...),
		spectralWeight: spectralWeight,
		spectralBias:   spectralBias,
		activation:     activation,
		backend:        backend,
	}

	l.weightParam = NewParameter("spectral.weight",
		tensor.New[float32, B](spectralWeight.Raw().RealView(), backend))
	l.linearWeight = NewParameter("linear.weight", linearWeight)
	if spectralBias != nil {
		l.spectralBiasParam = NewParameter("spectral.bias",
			tensor.New[float32, B](spectralBias.Raw().RealView(), backend))
	}
	if linearBias != nil {
		l.linearBias = NewParameter("linear.bias", linearBias)
	}

	return l
}

// validateModes checks the mode counts against the grid geometry.
func validateModes(gridShape tensor.Shape, modes []int) error {
	if len(gridShape) == 0 {
		return fmt.Errorf("spectral conv: empty grid shape")
	}
	if err := gridShape.Validate(); err != nil {
		return fmt.Errorf("spectral conv: %w", err)
	}
	if len(modes) != len(gridShape) {
		return fmt.Errorf("spectral conv: %d mode counts for %d grid axes", len(modes), len(gridShape))
	}
	for i, m := range modes {
		bound := gridShape[i]/2 + 1
		if m <= 0 {
			return fmt.Errorf("spectral conv: invalid mode count %d on axis %d", m, i)
		}
		if m > bound {
			return fmt.Errorf("spectral conv: %d modes exceed the Nyquist bound %d on axis %d (grid size %d)",
				m, bound, i, gridShape[i])
		}
	}
	return nil
}

// halfSpectrum returns the per-axis rFFT coefficient counts ⌊g/2⌋+1.
func halfSpectrum(gridShape tensor.Shape) tensor.Shape {
	half := make(tensor.Shape, len(gridShape))
	for i, g := range gridShape {
		half[i] = g/2 + 1
	}
	return half
}

// extractTruncated slices the leading modes block out of a padded
// spectral weight, verifying that everything outside it is zero.
func extractTruncated[B tensor.Backend](
	padded *tensor.Tensor[complex64, B],
	modes []int,
	backend B,
) (*tensor.Tensor[complex64, B], error) {
	ps := padded.Shape()
	inChannels, outChannels := ps[0], ps[1]
	freq := tensor.Shape(ps[2:])

	truncShape := append(tensor.Shape{inChannels, outChannels}, modes...)
	trunc := tensor.Zeros[complex64](truncShape, backend)

	src := padded.Data()
	dst := trunc.Data()

	fStrides := freq.ComputeStrides()
	mStrides := tensor.Shape(modes).ComputeStrides()
	nFreq := freq.NumElements()
	nMode := tensor.Shape(modes).NumElements()

	for c := 0; c < inChannels*outChannels; c++ {
		for flat := 0; flat < nFreq; flat++ {
			inside := true
			mOff := 0
			for a := range modes {
				k := (flat / fStrides[a]) % freq[a]
				if k >= modes[a] {
					inside = false
					break
				}
				mOff += k * mStrides[a]
			}
			v := src[c*nFreq+flat]
			if inside {
				dst[c*nMode+mOff] = v
			} else if v != 0 {
				return nil, fmt.Errorf("spectral conv: padded weight has non-zero entry outside the first %v modes", modes)
			}
		}
	}

	return trunc, nil
}

// Forward evaluates the layer on a batch of input fields.
//
// Input:  [batch, in_channels, grid...]
// Output: [batch, out_channels, grid...]
//
// The call is a pure function of the input and the layer's current
// weights; the returned tensor never aliases internal scratch.
func (l *SpectralConv[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	d := len(l.gridShape)
	if len(shape) != 2+d {
		panic(fmt.Sprintf("spectral conv: expected %dD input [batch, channels, grid...], got shape %v", 2+d, shape))
	}
	if shape[1] != l.inChannels {
		panic(fmt.Sprintf("spectral conv: input channels %d != expected %d", shape[1], l.inChannels))
	}
	for i := 0; i < d; i++ {
		if shape[2+i] != l.gridShape[i] {
			panic(fmt.Sprintf("spectral conv: grid axis %d has size %d, layer expects %d", i, shape[2+i], l.gridShape[i]))
		}
	}

	// Linear path: per-grid-point channel mixing, no spectral filtering.
	linear := tensor.New[float32, B](
		l.backend.PointwiseLinear(input.Raw(), l.linearWeight.Tensor().Raw()),
		l.backend,
	)
	if l.linearBias != nil {
		// Reshape [out] to [1, out, 1, ..., 1] for broadcasting.
		biasShape := make([]int, 2+d)
		biasShape[0] = 1
		biasShape[1] = l.outChannels
		for i := 0; i < d; i++ {
			biasShape[2+i] = 1
		}
		linear = linear.Add(l.linearBias.Tensor().Reshape(biasShape...))
	}

	// Spectral path: FFT → truncated channel mixing → inverse FFT.
	coeffs := l.backend.RFFT(input.Raw(), d)

	var biasRaw *tensor.RawTensor
	if l.spectralBias != nil {
		biasRaw = l.spectralBias.Raw()
	}
	filtered := l.backend.SpectralContract(coeffs, l.spectralWeight.Raw(), biasRaw, l.modes)

	spectral := tensor.New[float32, B](l.backend.IRFFT(filtered, l.gridShape), l.backend)

	output := spectral.Add(linear)
	if l.activation != nil {
		output = l.activation.Forward(output)
	}
	return output
}

// Parameters returns the trainable parameters of this layer.
//
// Only the truncated mode block of the spectral filter (through its real
// view) is exposed; the zero-padding region of the logical full spectrum
// is not part of any parameter and can never be updated.
func (l *SpectralConv[B]) Parameters() []*Parameter[B] {
	params := []*Parameter[B]{l.weightParam, l.linearWeight}
	if l.spectralBiasParam != nil {
		params = append(params, l.spectralBiasParam)
	}
	if l.linearBias != nil {
		params = append(params, l.linearBias)
	}
	return params
}

// SpectralWeight returns the truncated complex filter [in, out, modes...].
func (l *SpectralConv[B]) SpectralWeight() *tensor.Tensor[complex64, B] {
	return l.spectralWeight
}

// SpectralBias returns the complex frequency-space bias [out, modes...],
// or nil when the spectral path has no bias.
func (l *SpectralConv[B]) SpectralBias() *tensor.Tensor[complex64, B] {
	return l.spectralBias
}

// LinearWeight returns the linear-path weight parameter [out, in].
func (l *SpectralConv[B]) LinearWeight() *Parameter[B] {
	return l.linearWeight
}

// LinearBias returns the linear-path bias parameter [out], or nil.
func (l *SpectralConv[B]) LinearBias() *Parameter[B] {
	return l.linearBias
}

// PaddedWeight materializes the logical full-spectrum filter
// [in, out, ⌊g/2⌋+1 per axis]: the truncated block sits at the lowest
// indices and everything else is zero.
func (l *SpectralConv[B]) PaddedWeight() *tensor.Tensor[complex64, B] {
	half := halfSpectrum(l.gridShape)
	paddedShape := append(tensor.Shape{l.inChannels, l.outChannels}, half...)
	padded := tensor.Zeros[complex64](paddedShape, l.backend)

	src := l.spectralWeight.Data()
	dst := padded.Data()

	hStrides := half.ComputeStrides()
	mStrides := tensor.Shape(l.modes).ComputeStrides()
	nHalf := half.NumElements()
	nMode := tensor.Shape(l.modes).NumElements()

	for c := 0; c < l.inChannels*l.outChannels; c++ {
		for flat := 0; flat < nMode; flat++ {
			hOff := 0
			for a := range l.modes {
				k := (flat / mStrides[a]) % l.modes[a]
				hOff += k * hStrides[a]
			}
			dst[c*nHalf+hOff] = src[c*nMode+flat]
		}
	}

	return padded
}

// InChannels returns the number of input channels.
func (l *SpectralConv[B]) InChannels() int {
	return l.inChannels
}

// OutChannels returns the number of output channels.
func (l *SpectralConv[B]) OutChannels() int {
	return l.outChannels
}

// GridShape returns the spatial grid sizes the layer operates on.
func (l *SpectralConv[B]) GridShape() tensor.Shape {
	return l.gridShape.Clone()
}

// Modes returns the retained frequency counts per grid axis.
func (l *SpectralConv[B]) Modes() []int {
	return append([]int(nil), l.modes...)
}

// String returns a string representation of the layer.
func (l *SpectralConv[B]) String() string {
	return fmt.Sprintf("SpectralConv(spectral=[%d×%d, modes=%v of %v], linear=[%d×%d], grid=%v, activation=%s)",
		l.inChannels, l.outChannels, l.modes, halfSpectrum(l.gridShape),
		l.outChannels, l.inChannels, l.gridShape, l.activationName())
}

func (l *SpectralConv[B]) activationName() string {
	if l.activation == nil {
		return "no activation"
	}
	if _, ok := l.activation.(*Identity[B]); ok {
		return "no activation"
	}
	if s, ok := l.activation.(fmt.Stringer); ok {
		return s.String()
	}
	return "custom"
}

// StateDict returns a map of parameter names to raw tensors.
//
// The spectral entries are the truncated complex tensors, not their
// real views; the padded spectrum is never serialized.
func (l *SpectralConv[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	stateDict["spectral.weight"] = l.spectralWeight.Raw()
	stateDict["linear.weight"] = l.linearWeight.Tensor().Raw()
	if l.spectralBias != nil {
		stateDict["spectral.bias"] = l.spectralBias.Raw()
	}
	if l.linearBias != nil {
		stateDict["linear.bias"] = l.linearBias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
func (l *SpectralConv[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	load := func(name string, dst *tensor.RawTensor) error {
		src, ok := stateDict[name]
		if !ok {
			return fmt.Errorf("missing %s in state dict", name)
		}
		if !src.Shape().Equal(dst.Shape()) {
			return fmt.Errorf("%s shape mismatch: expected %v, got %v", name, dst.Shape(), src.Shape())
		}
		if src.DType() != dst.DType() {
			return fmt.Errorf("%s dtype mismatch: expected %v, got %v", name, dst.DType(), src.DType())
		}
		copy(dst.Data(), src.Data())
		return nil
	}

	if err := load("spectral.weight", l.spectralWeight.Raw()); err != nil {
		return err
	}
	if err := load("linear.weight", l.linearWeight.Tensor().Raw()); err != nil {
		return err
	}
	if l.spectralBias != nil {
		if err := load("spectral.bias", l.spectralBias.Raw()); err != nil {
			return err
		}
	}
	if l.linearBias != nil {
		if err := load("linear.bias", l.linearBias.Tensor().Raw()); err != nil {
			return err
		}
	}
	return nil
}
