package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// planCache holds gonum FFT plans keyed by transform length.
//
// Plans carry internal scratch and are not safe for concurrent use; the
// backend follows the framework's single-writer call sequencing, so no
// locking is done here.
type planCache struct {
	real  map[int]*fourier.FFT
	cmplx map[int]*fourier.CmplxFFT
}

func newPlanCache() *planCache {
	return &planCache{
		real:  make(map[int]*fourier.FFT),
		cmplx: make(map[int]*fourier.CmplxFFT),
	}
}

func (p *planCache) realFFT(n int) *fourier.FFT {
	plan, ok := p.real[n]
	if !ok {
		plan = fourier.NewFFT(n)
		p.real[n] = plan
	}
	return plan
}

func (p *planCache) cmplxFFT(n int) *fourier.CmplxFFT {
	plan, ok := p.cmplx[n]
	if !ok {
		plan = fourier.NewCmplxFFT(n)
		p.cmplx[n] = plan
	}
	return plan
}

// RFFT computes the real-input Fourier transform over the trailing
// gridAxes axes of x.
//
// The last grid axis is transformed with a real FFT and halved to
// ⌊n/2⌋+1 coefficient bins; every other grid axis is then transformed
// with a full complex FFT. Leading axes (batch, channels) are carried
// through untouched.
func (cpu *CPUBackend) RFFT(x *tensor.RawTensor, gridAxes int) *tensor.RawTensor {
	shape := x.Shape()
	if gridAxes < 1 || gridAxes >= len(shape) {
		panic(fmt.Sprintf("rfft: %d grid axes invalid for %dD tensor", gridAxes, len(shape)))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("rfft: expected float32 input, got %s", x.DType()))
	}

	last := shape[len(shape)-1]
	half := last/2 + 1

	outShape := shape.Clone()
	outShape[len(outShape)-1] = half

	out, err := tensor.NewRaw(outShape, tensor.Complex64, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("rfft: %v", err))
	}

	// Real transform along the last axis, row by row.
	src := x.AsFloat32()
	dst := out.AsComplex64()
	plan := cpu.plans.realFFT(last)
	seq := make([]float64, last)
	coeff := make([]complex128, half)

	rows := len(src) / last
	for r := 0; r < rows; r++ {
		for j := 0; j < last; j++ {
			seq[j] = float64(src[r*last+j])
		}
		plan.Coefficients(coeff, seq)
		for j := 0; j < half; j++ {
			dst[r*half+j] = complex64(coeff[j])
		}
	}

	// Full complex transform along the remaining grid axes.
	for a := 0; a < gridAxes-1; a++ {
		cpu.transformAxis(out, len(shape)-gridAxes+a, true)
	}

	return out
}

// IRFFT inverts RFFT, recovering a real float32 tensor whose trailing
// axes have the sizes in gridShape. The round trip IRFFT(RFFT(x)) == x
// up to floating point.
func (cpu *CPUBackend) IRFFT(x *tensor.RawTensor, gridShape tensor.Shape) *tensor.RawTensor {
	shape := x.Shape()
	d := len(gridShape)
	if d < 1 || d >= len(shape) {
		panic(fmt.Sprintf("irfft: %d grid axes invalid for %dD tensor", d, len(shape)))
	}
	if x.DType() != tensor.Complex64 {
		panic(fmt.Sprintf("irfft: expected complex64 input, got %s", x.DType()))
	}

	last := gridShape[d-1]
	half := last/2 + 1
	if shape[len(shape)-1] != half {
		panic(fmt.Sprintf("irfft: last axis has %d bins, want %d for grid size %d",
			shape[len(shape)-1], half, last))
	}
	for i := 0; i < d-1; i++ {
		if shape[len(shape)-d+i] != gridShape[i] {
			panic(fmt.Sprintf("irfft: grid axis %d has %d bins, want %d",
				i, shape[len(shape)-d+i], gridShape[i]))
		}
	}

	// Inverse complex transform along the non-last grid axes.
	// Work on a copy: callers keep ownership of their coefficients.
	work := x
	if d > 1 {
		work = x.Clone()
		for a := 0; a < d-1; a++ {
			cpu.transformAxis(work, len(shape)-d+a, false)
		}
	}

	outShape := shape.Clone()
	outShape[len(outShape)-1] = last

	out, err := tensor.NewRaw(outShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("irfft: %v", err))
	}

	// Inverse real transform along the last axis.
	src := work.AsComplex64()
	dst := out.AsFloat32()
	plan := cpu.plans.realFFT(last)
	coeff := make([]complex128, half)
	seq := make([]float64, last)
	scale := 1.0 / float64(last)

	rows := len(dst) / last
	for r := 0; r < rows; r++ {
		for j := 0; j < half; j++ {
			coeff[j] = complex128(src[r*half+j])
		}
		plan.Sequence(seq, coeff)
		for j := 0; j < last; j++ {
			dst[r*last+j] = float32(seq[j] * scale)
		}
	}

	return out
}

// transformAxis runs an in-place complex FFT (forward) or normalized
// inverse (backward) along one axis of a complex64 tensor.
func (cpu *CPUBackend) transformAxis(t *tensor.RawTensor, ax int, forward bool) {
	shape := t.Shape()
	n := shape[ax]
	strides := shape.ComputeStrides()
	stride := strides[ax]

	data := t.AsComplex64()
	plan := cpu.plans.cmplxFFT(n)
	buf := make([]complex128, n)
	res := make([]complex128, n)
	scale := complex(1.0/float64(n), 0)

	lines := t.NumElements() / n
	for li := 0; li < lines; li++ {
		base := lineBase(li, shape, strides, ax)
		for j := 0; j < n; j++ {
			buf[j] = complex128(data[base+j*stride])
		}
		if forward {
			plan.Coefficients(res, buf)
		} else {
			plan.Sequence(res, buf)
			for j := range res {
				res[j] *= scale
			}
		}
		for j := 0; j < n; j++ {
			data[base+j*stride] = complex64(res[j])
		}
	}
}

// lineBase returns the flat offset of the li-th line along axis ax,
// enumerating all index combinations of the other axes.
func lineBase(li int, shape tensor.Shape, strides []int, ax int) int {
	base := 0
	rem := li
	for i := len(shape) - 1; i >= 0; i-- {
		if i == ax {
			continue
		}
		base += (rem % shape[i]) * strides[i]
		rem /= shape[i]
	}
	return base
}
