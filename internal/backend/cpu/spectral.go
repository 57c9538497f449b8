package cpu

import (
	"fmt"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// binInfo describes one retained frequency bin of the truncated spectrum.
type binInfo struct {
	fOff int  // flat offset into the per-(batch,channel) frequency block
	wOff int  // flat offset into the per-(in,out) mode block of the filter
	conj bool // whether the conjugate filter value applies at this bin
}

// SpectralContract contracts Fourier coefficients against a truncated
// spectral filter over the in-channel axis.
//
//	coeffs: [batch, in, f1, ..., fd]   (complex64; fd is the halved axis)
//	weight: [in, out, m1, ..., md]     (complex64, truncated mode block)
//	bias:   [out, m1, ..., md] or nil  (complex64)
//
// Result: [batch, out, f1, ..., fd]. Bins whose folded per-axis index is
// at or beyond modes come out exactly zero, which is the mode truncation.
//
// The filter is stored on the non-negative frequency orthant only. On the
// non-last grid axes it is extended to negative frequencies with the
// conjugate value, keyed off the sign of the first non-zero frequency
// component, so that real input fields always map to real output fields.
func (cpu *CPUBackend) SpectralContract(coeffs, weight, bias *tensor.RawTensor, modes []int) *tensor.RawTensor {
	cs := coeffs.Shape()
	ws := weight.Shape()
	d := len(modes)

	if len(cs) != 2+d {
		panic(fmt.Sprintf("spectral contract: coefficients are %dD, want %dD for %d modes", len(cs), 2+d, d))
	}
	if len(ws) != 2+d {
		panic(fmt.Sprintf("spectral contract: filter is %dD, want %dD for %d modes", len(ws), 2+d, d))
	}
	if ws[0] != cs[1] {
		panic(fmt.Sprintf("spectral contract: filter expects %d input channels, coefficients have %d", ws[0], cs[1]))
	}
	for i, m := range modes {
		if ws[2+i] != m {
			panic(fmt.Sprintf("spectral contract: filter axis %d has %d modes, want %d", i, ws[2+i], m))
		}
	}

	batch, inCh, outCh := cs[0], cs[1], ws[1]
	freq := tensor.Shape(cs[2:])
	modeShape := tensor.Shape(ws[2:])

	outShape := tensor.Shape{batch, outCh}
	outShape = append(outShape, freq...)
	out, err := tensor.NewRaw(outShape, tensor.Complex64, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("spectral contract: %v", err))
	}

	bins := retainedBins(freq, modeShape, modes)

	x := coeffs.AsComplex64()
	w := weight.AsComplex64()
	y := out.AsComplex64()
	var bv []complex64
	if bias != nil {
		if !bias.Shape().Equal(append(tensor.Shape{outCh}, modeShape...)) {
			panic(fmt.Sprintf("spectral contract: bias shape %v, want %v",
				bias.Shape(), append(tensor.Shape{outCh}, modeShape...)))
		}
		bv = bias.AsComplex64()
	}

	nFreq := freq.NumElements()
	nMode := modeShape.NumElements()

	for b := 0; b < batch; b++ {
		xBase := b * inCh * nFreq
		yBase := b * outCh * nFreq
		for _, bin := range bins {
			for o := 0; o < outCh; o++ {
				var acc complex128
				for i := 0; i < inCh; i++ {
					wv := w[(i*outCh+o)*nMode+bin.wOff]
					if bin.conj {
						wv = complex(real(wv), -imag(wv))
					}
					acc += complex128(wv) * complex128(x[xBase+i*nFreq+bin.fOff])
				}
				if bv != nil {
					b0 := bv[o*nMode+bin.wOff]
					if bin.conj {
						b0 = complex(real(b0), -imag(b0))
					}
					acc += complex128(b0)
				}
				y[yBase+o*nFreq+bin.fOff] = complex64(acc)
			}
		}
	}

	return out
}

// retainedBins enumerates the frequency bins that survive mode truncation,
// with their filter offsets and conjugation flags precomputed.
func retainedBins(freq, modeShape tensor.Shape, modes []int) []binInfo {
	d := len(modes)
	fStrides := freq.ComputeStrides()
	mStrides := modeShape.ComputeStrides()

	// Per-axis folding tables. The last axis is already half-spectrum;
	// its bins are all non-negative frequencies.
	fold := make([][]int, d)
	sign := make([][]int, d)
	keep := make([][]bool, d)
	for a := 0; a < d; a++ {
		n := freq[a]
		fold[a] = make([]int, n)
		sign[a] = make([]int, n)
		keep[a] = make([]bool, n)
		for k := 0; k < n; k++ {
			f, s := k, 0
			if a < d-1 {
				// Full-spectrum axis: indices above n/2 are negative
				// frequencies; fold them onto their positive partner.
				if k > n-k {
					f = n - k
					s = -1
				} else if k > 0 && k < n-k {
					s = 1
				}
				// k == 0 and the shared Nyquist bin (k == n-k) carry
				// no sign; the scan continues on the next axis.
			}
			fold[a][k] = f
			sign[a][k] = s
			keep[a][k] = f < modes[a]
		}
	}

	var bins []binInfo
	nFreq := freq.NumElements()
	for flat := 0; flat < nFreq; flat++ {
		wOff := 0
		conjSeen := false
		conj := false
		retained := true
		for a := 0; a < d; a++ {
			k := (flat / fStrides[a]) % freq[a]
			if !keep[a][k] {
				retained = false
				break
			}
			wOff += fold[a][k] * mStrides[a]
			if !conjSeen && sign[a][k] != 0 {
				conjSeen = true
				conj = sign[a][k] < 0
			}
		}
		if retained {
			bins = append(bins, binInfo{fOff: flat, wOff: wOff, conj: conj})
		}
	}

	return bins
}
