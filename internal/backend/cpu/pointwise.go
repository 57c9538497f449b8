package cpu

import (
	"fmt"

	"github.com/neuralop-ml/neuralop/internal/tensor"
)

// PointwiseLinear applies a channel-mixing matrix at every grid location.
//
//	x:      [batch, in, grid...]  (float32)
//	weight: [out, in]             (float32)
//
// Result: [batch, out, grid...]. Each grid point's channel vector is
// multiplied by weight independently; no spatial mixing happens here.
func (cpu *CPUBackend) PointwiseLinear(x, weight *tensor.RawTensor) *tensor.RawTensor {
	xs := x.Shape()
	ws := weight.Shape()

	if len(xs) < 3 {
		panic(fmt.Sprintf("pointwise linear: input is %dD, want at least 3D [batch, channels, grid...]", len(xs)))
	}
	if len(ws) != 2 {
		panic(fmt.Sprintf("pointwise linear: weight is %dD, want 2D [out, in]", len(ws)))
	}
	if ws[1] != xs[1] {
		panic(fmt.Sprintf("pointwise linear: weight expects %d input channels, input has %d", ws[1], xs[1]))
	}

	batch, inCh, outCh := xs[0], xs[1], ws[0]
	grid := tensor.Shape(xs[2:])
	nGrid := grid.NumElements()

	outShape := tensor.Shape{batch, outCh}
	outShape = append(outShape, grid...)
	out, err := tensor.NewRaw(outShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("pointwise linear: %v", err))
	}

	src := x.AsFloat32()
	w := weight.AsFloat32()
	dst := out.AsFloat32()

	for b := 0; b < batch; b++ {
		for o := 0; o < outCh; o++ {
			row := dst[(b*outCh+o)*nGrid : (b*outCh+o+1)*nGrid]
			for i := 0; i < inCh; i++ {
				wv := w[o*inCh+i]
				if wv == 0 {
					continue
				}
				col := src[(b*inCh+i)*nGrid : (b*inCh+i+1)*nGrid]
				for g := range row {
					row[g] += wv * col[g]
				}
			}
		}
	}

	return out
}
