// Copyright 2025 NeuralOp ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Real and complex FFTs via gonum.org/v1/gonum/dsp/fourier
//   - Cached FFT plans per transform length
//   - Float32, Float64 and Complex64 support
//   - NumPy-compatible broadcasting
//
// All operations are single-threaded and deterministic: the same inputs
// always produce the same outputs bit for bit.
//
// # Basic Usage
//
//	import (
//	    "github.com/neuralop-ml/neuralop/backend/cpu"
//	    "github.com/neuralop-ml/neuralop/nn"
//	    "github.com/neuralop-ml/neuralop/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{8, 2, 64}, backend)
//	    layer, _ := nn.NewSpectralConv1D(2, 2, 64, 16,
//	        nn.SpectralConvConfig[*cpu.Backend]{}, backend)
//	    y := layer.Forward(x)
//	}
package cpu
