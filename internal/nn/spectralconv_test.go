package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuralop-ml/neuralop/internal/backend/cpu"
	"github.com/neuralop-ml/neuralop/internal/tensor"
)

type Backend = *cpu.CPUBackend

func randomField(t *testing.T, backend Backend, shape tensor.Shape, seed int64) *tensor.Tensor[float32, Backend] {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
	field, err := tensor.FromSlice(data, shape, backend)
	require.NoError(t, err)
	return field
}

// fullPassthroughWeights builds weights for a layer whose spectral path is
// the identity on a single channel and whose linear path is zero.
func fullPassthroughWeights(t *testing.T, backend Backend, modes int) SpectralConvWeights[Backend] {
	t.Helper()
	spectral := tensor.Ones[complex64](tensor.Shape{1, 1, modes}, backend)
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)
	return SpectralConvWeights[Backend]{
		SpectralWeight: spectral,
		LinearWeight:   linear,
	}
}

func TestSpectralConvCreation(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 4, tensor.Shape{64}, []int{16},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	assert.Equal(t, 2, layer.InChannels())
	assert.Equal(t, 4, layer.OutChannels())
	assert.True(t, layer.GridShape().Equal(tensor.Shape{64}))
	assert.Equal(t, []int{16}, layer.Modes())

	assert.True(t, layer.SpectralWeight().Shape().Equal(tensor.Shape{2, 4, 16}))
	assert.True(t, layer.LinearWeight().Tensor().Shape().Equal(tensor.Shape{4, 2}))
	assert.True(t, layer.SpectralBias().Shape().Equal(tensor.Shape{4, 16}))
	assert.True(t, layer.LinearBias().Tensor().Shape().Equal(tensor.Shape{4}))

	params := layer.Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, "spectral.weight", params[0].Name())
	assert.Equal(t, "linear.weight", params[1].Name())
	assert.Equal(t, "spectral.bias", params[2].Name())
	assert.Equal(t, "linear.bias", params[3].Name())

	// The spectral weight parameter is the real view of the truncated
	// complex filter: [2, 4, 16, 2].
	assert.True(t, params[0].Tensor().Shape().Equal(tensor.Shape{2, 4, 16, 2}))
}

func TestSpectralConvCreationWithoutBiases(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(1, 1, tensor.Shape{32}, []int{8},
		SpectralConvConfig[Backend]{NoSpectralBias: true, NoLinearBias: true}, backend)
	require.NoError(t, err)

	assert.Nil(t, layer.SpectralBias())
	assert.Nil(t, layer.LinearBias())
	assert.Len(t, layer.Parameters(), 2)
}

func TestSpectralConvCreationErrors(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name      string
		in, out   int
		gridShape tensor.Shape
		modes     []int
	}{
		{"modes beyond Nyquist", 2, 2, tensor.Shape{64}, []int{40}},
		{"zero modes", 2, 2, tensor.Shape{64}, []int{0}},
		{"negative modes", 2, 2, tensor.Shape{64}, []int{-3}},
		{"rank mismatch", 2, 2, tensor.Shape{64}, []int{4, 4}},
		{"empty grid", 2, 2, tensor.Shape{}, []int{}},
		{"invalid grid size", 2, 2, tensor.Shape{0}, []int{1}},
		{"zero channels", 0, 2, tensor.Shape{64}, []int{4}},
		{"one axis too large in 2D", 2, 2, tensor.Shape{16, 16}, []int{4, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpectralConv(tt.in, tt.out, tt.gridShape, tt.modes,
				SpectralConvConfig[Backend]{}, backend)
			assert.Error(t, err)
		})
	}

	// The Nyquist bound itself is legal: ⌊64/2⌋+1 = 33.
	_, err := NewSpectralConv(2, 2, tensor.Shape{64}, []int{33},
		SpectralConvConfig[Backend]{}, backend)
	assert.NoError(t, err)
}

func TestSpectralConvForwardShape(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 4, tensor.Shape{64}, []int{16},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	input := randomField(t, backend, tensor.Shape{3, 2, 64}, 1)
	output := layer.Forward(input)

	assert.True(t, output.Shape().Equal(tensor.Shape{3, 4, 64}))
}

func TestSpectralConvForwardValidation(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 2, tensor.Shape{16}, []int{4},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	assert.Panics(t, func() {
		layer.Forward(randomField(t, backend, tensor.Shape{1, 3, 16}, 2))
	}, "wrong channel count")

	assert.Panics(t, func() {
		layer.Forward(randomField(t, backend, tensor.Shape{1, 2, 32}, 3))
	}, "wrong grid size")

	assert.Panics(t, func() {
		layer.Forward(randomField(t, backend, tensor.Shape{2, 16}, 4))
	}, "missing batch axis")
}

func TestSpectralConvIdentityFilter(t *testing.T) {
	backend := cpu.New()

	// Unit filter over every representable mode, zero linear path, no
	// biases: the layer is the identity operator.
	layer, err := NewSpectralConvFromWeights(
		fullPassthroughWeights(t, backend, 5),
		tensor.Shape{8}, []int{5}, backend)
	require.NoError(t, err)

	input := randomField(t, backend, tensor.Shape{2, 1, 8}, 5)
	output := layer.Forward(input)

	in, out := input.Data(), output.Data()
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-4, "grid point %d", i)
	}
}

func TestSpectralConvOutputIsBandlimited(t *testing.T) {
	backend := cpu.New()

	rng := rand.New(rand.NewSource(9))
	spectral := GlorotComplex(rng, 1, 1, tensor.Shape{1, 1, 4}, backend)
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)

	layer, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{SpectralWeight: spectral, LinearWeight: linear},
		tensor.Shape{16}, []int{4}, backend)
	require.NoError(t, err)

	input := randomField(t, backend, tensor.Shape{1, 1, 16}, 10)
	output := layer.Forward(input)

	// With the linear path zeroed the output can only contain the
	// retained modes: its spectrum vanishes from bin 4 on.
	coeffs := backend.RFFT(output.Raw(), 1).AsComplex64()
	require.Len(t, coeffs, 9)
	for k := 4; k < 9; k++ {
		assert.InDelta(t, 0, real(coeffs[k]), 1e-3, "real part of bin %d", k)
		assert.InDelta(t, 0, imag(coeffs[k]), 1e-3, "imaginary part of bin %d", k)
	}
}

func TestSpectralConvLinearPathOnly(t *testing.T) {
	backend := cpu.New()

	spectral := tensor.Zeros[complex64](tensor.Shape{2, 1, 3}, backend)
	linear, err := tensor.FromSlice([]float32{2, -1}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)
	bias, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1}, backend)
	require.NoError(t, err)

	layer, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{
			SpectralWeight: spectral,
			LinearWeight:   linear,
			LinearBias:     bias,
		},
		tensor.Shape{8}, []int{3}, backend)
	require.NoError(t, err)

	input, err := tensor.FromSlice([]float32{
		1, 2, 3, 4, 5, 6, 7, 8, // channel 0
		1, 1, 1, 1, 1, 1, 1, 1, // channel 1
	}, tensor.Shape{1, 2, 8}, backend)
	require.NoError(t, err)

	output := layer.Forward(input)

	// out = 2*ch0 - 1*ch1 + 0.5, spectral path contributes nothing.
	want := []float32{1.5, 3.5, 5.5, 7.5, 9.5, 11.5, 13.5, 15.5}
	for i, w := range want {
		assert.InDelta(t, w, output.Data()[i], 1e-4, "grid point %d", i)
	}
}

func TestSpectralConvSpectralBias(t *testing.T) {
	backend := cpu.New()

	// Zero filter, zero linear path: only the frequency-space bias
	// reaches the output. A real DC bias of n*c comes back as the
	// constant field c.
	n := 8
	spectral := tensor.Zeros[complex64](tensor.Shape{1, 1, 2}, backend)
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)
	bias := tensor.Zeros[complex64](tensor.Shape{1, 2}, backend)
	bias.Set(complex(float32(n)*0.5, 0), 0, 0)

	layer, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{
			SpectralWeight: spectral,
			LinearWeight:   linear,
			SpectralBias:   bias,
		},
		tensor.Shape{n}, []int{2}, backend)
	require.NoError(t, err)

	input := tensor.Zeros[float32](tensor.Shape{1, 1, n}, backend)
	output := layer.Forward(input)

	for i, v := range output.Data() {
		assert.InDelta(t, 0.5, v, 1e-4, "grid point %d", i)
	}
}

func TestSpectralConvFromPaddedWeight(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(12))

	trunc := GlorotComplex(rng, 1, 1, tensor.Shape{1, 1, 4}, backend)
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)

	// The same filter expressed as the full ⌊16/2⌋+1 = 9 bin spectrum
	// with explicit zero padding.
	padded := tensor.Zeros[complex64](tensor.Shape{1, 1, 9}, backend)
	copy(padded.Data()[:4], trunc.Data())

	fromTrunc, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{SpectralWeight: trunc, LinearWeight: linear},
		tensor.Shape{16}, []int{4}, backend)
	require.NoError(t, err)

	fromPadded, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{SpectralWeight: padded, LinearWeight: linear.Clone()},
		tensor.Shape{16}, []int{4}, backend)
	require.NoError(t, err)

	assert.True(t, fromPadded.SpectralWeight().Shape().Equal(tensor.Shape{1, 1, 4}))

	input := randomField(t, backend, tensor.Shape{1, 1, 16}, 13)
	a, b := fromTrunc.Forward(input).Data(), fromPadded.Forward(input).Data()
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-5)
	}
}

func TestSpectralConvRejectsDirtyPadding(t *testing.T) {
	backend := cpu.New()

	padded := tensor.Zeros[complex64](tensor.Shape{1, 1, 9}, backend)
	padded.Set(complex(0, 1e-3), 0, 0, 7) // beyond the 4 retained modes
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)

	_, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{SpectralWeight: padded, LinearWeight: linear},
		tensor.Shape{16}, []int{4}, backend)
	assert.Error(t, err)
}

func TestSpectralConvFromWeightsShapeErrors(t *testing.T) {
	backend := cpu.New()
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)

	t.Run("missing weights", func(t *testing.T) {
		_, err := NewSpectralConvFromWeights(
			SpectralConvWeights[Backend]{LinearWeight: linear},
			tensor.Shape{16}, []int{4}, backend)
		assert.Error(t, err)
	})

	t.Run("spectral weight neither truncated nor padded", func(t *testing.T) {
		weight := tensor.Zeros[complex64](tensor.Shape{1, 1, 6}, backend)
		_, err := NewSpectralConvFromWeights(
			SpectralConvWeights[Backend]{SpectralWeight: weight, LinearWeight: linear},
			tensor.Shape{16}, []int{4}, backend)
		assert.Error(t, err)
	})

	t.Run("bad spectral bias shape", func(t *testing.T) {
		weight := tensor.Zeros[complex64](tensor.Shape{1, 1, 4}, backend)
		bias := tensor.Zeros[complex64](tensor.Shape{1, 5}, backend)
		_, err := NewSpectralConvFromWeights(
			SpectralConvWeights[Backend]{SpectralWeight: weight, LinearWeight: linear, SpectralBias: bias},
			tensor.Shape{16}, []int{4}, backend)
		assert.Error(t, err)
	})
}

func TestSpectralConvPaddedWeight(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 3, tensor.Shape{16}, []int{4},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	padded := layer.PaddedWeight()
	require.True(t, padded.Shape().Equal(tensor.Shape{2, 3, 9}))

	trunc := layer.SpectralWeight()
	for i := 0; i < 2; i++ {
		for o := 0; o < 3; o++ {
			for k := 0; k < 9; k++ {
				if k < 4 {
					assert.Equal(t, trunc.At(i, o, k), padded.At(i, o, k))
				} else {
					assert.Equal(t, complex64(0), padded.At(i, o, k),
						"padding at (%d,%d,%d) must be zero", i, o, k)
				}
			}
		}
	}
}

func TestSpectralConvParametersShareWeightMemory(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(1, 1, tensor.Shape{16}, []int{4},
		SpectralConvConfig[Backend]{NoSpectralBias: true, NoLinearBias: true}, backend)
	require.NoError(t, err)

	// Writing through the optimizer-facing real view must change the
	// complex filter the forward pass reads.
	view := layer.Parameters()[0].Tensor().Data()
	view[0] = 42 // real part of filter element (0,0,0)
	view[1] = -7 // imaginary part

	assert.Equal(t, complex64(complex(42, -7)), layer.SpectralWeight().At(0, 0, 0))
}

func TestSpectralConvPaddingSurvivesParameterWrites(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 2, tensor.Shape{16}, []int{4},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	// Scribble over every trainable value the layer exposes.
	for _, p := range layer.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = 99
		}
	}

	// The padding region is not reachable through any parameter.
	padded := layer.PaddedWeight()
	for i := 0; i < 2; i++ {
		for o := 0; o < 2; o++ {
			for k := 4; k < 9; k++ {
				assert.Equal(t, complex64(0), padded.At(i, o, k))
			}
		}
	}
}

func TestSpectralConv2DForward(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 3, tensor.Shape{16, 16}, []int{4, 4},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	assert.True(t, layer.SpectralWeight().Shape().Equal(tensor.Shape{2, 3, 4, 4}))

	input := randomField(t, backend, tensor.Shape{2, 2, 16, 16}, 21)
	output := layer.Forward(input)
	assert.True(t, output.Shape().Equal(tensor.Shape{2, 3, 16, 16}))
}

func TestSpectralConv2DOutputIsBandlimited(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(22))

	spectral := GlorotComplex(rng, 1, 1, tensor.Shape{1, 1, 3, 3}, backend)
	linear := tensor.Zeros[float32](tensor.Shape{1, 1}, backend)

	layer, err := NewSpectralConvFromWeights(
		SpectralConvWeights[Backend]{SpectralWeight: spectral, LinearWeight: linear},
		tensor.Shape{8, 8}, []int{3, 3}, backend)
	require.NoError(t, err)

	input := randomField(t, backend, tensor.Shape{1, 1, 8, 8}, 23)
	output := layer.Forward(input)

	coeffs := backend.RFFT(output.Raw(), 2).AsComplex64()
	for k1 := 0; k1 < 8; k1++ {
		folded := k1
		if k1 > 8-k1 {
			folded = 8 - k1
		}
		for k2 := 0; k2 < 5; k2++ {
			if folded < 3 && k2 < 3 {
				continue
			}
			c := coeffs[k1*5+k2]
			assert.InDelta(t, 0, real(c), 1e-3, "bin (%d,%d)", k1, k2)
			assert.InDelta(t, 0, imag(c), 1e-3, "bin (%d,%d)", k1, k2)
		}
	}
}

func TestSpectralConvDeterministicConstruction(t *testing.T) {
	backend := cpu.New()

	a, err := NewSpectralConv(2, 2, tensor.Shape{32}, []int{8},
		SpectralConvConfig[Backend]{Rand: rand.New(rand.NewSource(5))}, backend)
	require.NoError(t, err)
	b, err := NewSpectralConv(2, 2, tensor.Shape{32}, []int{8},
		SpectralConvConfig[Backend]{Rand: rand.New(rand.NewSource(5))}, backend)
	require.NoError(t, err)

	input := randomField(t, backend, tensor.Shape{1, 2, 32}, 6)
	assert.Equal(t, a.Forward(input).Data(), b.Forward(input).Data())
}

func TestSpectralConvEndToEnd(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 2, tensor.Shape{64}, []int{16},
		SpectralConvConfig[Backend]{Activation: NewSigmoid[Backend]()}, backend)
	require.NoError(t, err)

	input := randomField(t, backend, tensor.Shape{200, 2, 64}, 7)
	output := layer.Forward(input)

	require.True(t, output.Shape().Equal(tensor.Shape{200, 2, 64}))
	for i, v := range output.Data() {
		if v <= 0 || v >= 1 {
			t.Fatalf("sigmoid output %d = %v, want in (0, 1)", i, v)
		}
	}
}

func TestSpectralConvStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()

	src, err := NewSpectralConv(2, 2, tensor.Shape{32}, []int{8},
		SpectralConvConfig[Backend]{Rand: rand.New(rand.NewSource(31))}, backend)
	require.NoError(t, err)
	dst, err := NewSpectralConv(2, 2, tensor.Shape{32}, []int{8},
		SpectralConvConfig[Backend]{Rand: rand.New(rand.NewSource(32))}, backend)
	require.NoError(t, err)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	input := randomField(t, backend, tensor.Shape{2, 2, 32}, 33)
	assert.Equal(t, src.Forward(input).Data(), dst.Forward(input).Data())
}

func TestSpectralConvLoadStateDictErrors(t *testing.T) {
	backend := cpu.New()

	layer, err := NewSpectralConv(2, 2, tensor.Shape{32}, []int{8},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)

	t.Run("missing entry", func(t *testing.T) {
		sd := layer.StateDict()
		delete(sd, "spectral.weight")
		assert.Error(t, layer.LoadStateDict(sd))
	})

	t.Run("shape mismatch", func(t *testing.T) {
		sd := layer.StateDict()
		wrong, _ := tensor.NewRaw(tensor.Shape{2, 2, 4}, tensor.Complex64, tensor.CPU)
		sd["spectral.weight"] = wrong
		assert.Error(t, layer.LoadStateDict(sd))
	})
}

func TestSpectralConvString(t *testing.T) {
	backend := cpu.New()

	plain, err := NewSpectralConv(2, 4, tensor.Shape{64}, []int{16},
		SpectralConvConfig[Backend]{}, backend)
	require.NoError(t, err)
	assert.Equal(t,
		"SpectralConv(spectral=[2×4, modes=[16] of [33]], linear=[4×2], grid=[64], activation=no activation)",
		plain.String())

	sig, err := NewSpectralConv(1, 1, tensor.Shape{8, 8}, []int{3, 3},
		SpectralConvConfig[Backend]{Activation: NewSigmoid[Backend]()}, backend)
	require.NoError(t, err)
	assert.Equal(t,
		"SpectralConv(spectral=[1×1, modes=[3 3] of [5 5]], linear=[1×1], grid=[8 8], activation=sigmoid)",
		sig.String())
}
