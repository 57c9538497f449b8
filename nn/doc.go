// Copyright 2025 NeuralOp ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks for Fourier neural operators.
//
// # Overview
//
// The central layer is SpectralConv, a convolution carried out in Fourier
// space: the input field is transformed with a real-input FFT, the lowest
// frequency modes are mixed across channels by a learned complex filter,
// higher frequencies are zeroed, and the result is transformed back to
// physical space. A pointwise linear path bypasses the transform so that
// information outside the retained modes still reaches the output.
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
//	    layer, err := nn.NewSpectralConv1D(2, 2, 64, 16,
//	        nn.SpectralConvConfig[*cpu.Backend]{
//	            Activation: nn.NewGELU[*cpu.Backend](),
//	        }, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    x := tensor.Zeros[float32](tensor.Shape{8, 2, 64}, backend)
//	    y := layer.Forward(x) // [8, 2, 64]
//	}
//
// # Building an Operator
//
// A full Fourier neural operator is a Sequential of a lifting layer,
// several spectral layers, and a projection layer:
//
//	model := nn.NewSequential[*cpu.Backend](
//	    nn.NewPointwiseLinear(1, 16, true, nil, backend),
//	    spectral1,
//	    spectral2,
//	    nn.NewPointwiseLinear(16, 1, true, nil, backend),
//	)
//
// # Shapes
//
// All layers take inputs of shape [batch, channels, grid...] where grid
// has one extent per spatial axis. SpectralConv fixes the grid shape at
// construction; PointwiseLinear accepts any grid.
//
// # Parameters
//
// Module.Parameters returns float32 views suitable for any optimizer in
// the optim package. Complex spectral weights appear as real views with
// a trailing axis of size 2 sharing the underlying buffer, so optimizer
// updates are visible to the layer immediately.
package nn
