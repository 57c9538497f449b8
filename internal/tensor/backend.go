package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// The op surface is deliberately small: elementwise arithmetic, shape
// manipulation, and the four spectral primitives the Fourier layers are
// built from. Activation functions are optional capabilities discovered
// via interface assertion (see the nn package).
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// MulScalar multiplies every element by a scalar.
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// RFFT computes the real-input discrete Fourier transform over the
	// trailing gridAxes axes of x (layout [batch, channels, grid...]).
	// The last grid axis is halved to ⌊n/2⌋+1 coefficients; the other grid
	// axes keep their full length. Result dtype is Complex64.
	RFFT(x *RawTensor, gridAxes int) *RawTensor

	// IRFFT inverts RFFT, recovering a real tensor over gridShape.
	// The round trip IRFFT(RFFT(x)) is the identity up to floating point.
	IRFFT(x *RawTensor, gridShape Shape) *RawTensor

	// SpectralContract contracts Fourier coefficients
	// [batch, in, freq...] against a truncated filter [in, out, modes...]
	// over the in-channel axis, producing [batch, out, freq...].
	// Coefficients whose folded per-axis index falls outside modes are
	// forced to zero. bias may be nil; otherwise it is a complex
	// [out, modes...] term added to the retained coefficients.
	SpectralContract(coeffs, weight, bias *RawTensor, modes []int) *RawTensor

	// PointwiseLinear applies a channel-mixing matrix [out, in] at every
	// grid location of x ([batch, in, grid...]), giving [batch, out, grid...].
	PointwiseLinear(x, weight *RawTensor) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
