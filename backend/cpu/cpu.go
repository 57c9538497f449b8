// Copyright 2025 NeuralOp ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/neuralop-ml/neuralop/internal/backend/cpu"
	"github.com/neuralop-ml/neuralop/tensor"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go, single-threaded implementations of all
// tensor operations, including the Fourier transforms used by spectral
// convolution layers.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/neuralop-ml/neuralop/backend/cpu"
//	    "github.com/neuralop-ml/neuralop/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
