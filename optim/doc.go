// Copyright 2025 NeuralOp ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural operators.
//
// # Overview
//
// Two optimizers are available:
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//
// Optimizers work on the float32 parameter views returned by
// nn.Module.Parameters(). Complex spectral filters are exposed as real
// views with a trailing axis of size 2, so a single update rule covers
// every parameter.
//
// # Basic Usage
//
//	import (
//	    "github.com/neuralop-ml/neuralop/backend/cpu"
//	    "github.com/neuralop-ml/neuralop/optim"
//	)
//
//	backend := cpu.New()
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	}, backend)
//
//	for step := range steps {
//	    grads := computeGradients(model, batch)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	}
//
// Gradients are computed by the caller and passed to Step as a map keyed
// by each parameter's raw tensor.
package optim
