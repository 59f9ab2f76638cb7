package tensor

import (
	"math/rand/v2"

	"github.com/sarchlab/pimdriver/burst"
	"gonum.org/v1/gonum/mat"
)

// KernelData holds the operands of one invocation. Weight is only set for
// GEMV, Input1 only for binary elementwise kernels and Golden only when a
// reference output was requested.
type KernelData struct {
	Dims Dims

	Weight *NearBankTensor
	Input0 *NearBankTensor
	Input1 *NearBankTensor
	Golden *NearBankTensor
}

// OutputShape returns the burst shape of the kernel output.
func (k *KernelData) OutputShape() Shape {
	d := k.Dims
	if d.Kernel == GEMV {
		return BurstShape(d.OutputDim * d.Batch)
	}

	return Shape{Rows: d.Batch, Bursts: numBursts(d.OutputDim)}
}

// NumOutputs returns the number of output elements.
func (k *KernelData) NumOutputs() int {
	return k.Dims.OutputDim * k.Dims.Batch
}

// operand ids keep the fill streams of different operands apart.
const (
	operandWeight = iota
	operandInput0
	operandInput1
)

// Planner turns kernel dimensions into burst-partitioned operands.
type Planner struct{}

// Plan validates d and builds the operands required by its kernel type.
func (p Planner) Plan(d Dims) (*KernelData, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	data := &KernelData{Dims: d}

	switch {
	case d.Kernel == GEMV:
		p.planGemv(data)
	default:
		p.planEltwise(data)
	}

	return data, nil
}

func (p Planner) planGemv(data *KernelData) {
	d := data.Dims
	inBursts := d.InputDim / burst.LaneWidth

	data.Weight = NewNearBankTensor(
		Shape{Rows: d.OutputDim, Bursts: inBursts}, d.OutputDim*d.InputDim)
	fill(data.Weight, d, operandWeight)

	data.Input0 = NewNearBankTensor(
		Shape{Rows: d.Batch, Bursts: inBursts}, d.Batch*d.InputDim)
	fill(data.Input0, d, operandInput0)

	if d.WantGolden {
		data.Golden = gemvReference(data.Weight, data.Input0, d)
	}
}

// gemvReference computes W x X in float64 from the fp16 operands and rounds
// the result once. Element b*OutputDim+o holds output o of batch b.
func gemvReference(w, x *NearBankTensor, d Dims) *NearBankTensor {
	wm := mat.NewDense(d.OutputDim, d.InputDim, widen(w))

	xm := mat.NewDense(d.InputDim, d.Batch, nil)
	for b := 0; b < d.Batch; b++ {
		for k := 0; k < d.InputDim; k++ {
			xm.Set(k, b, float64(x.Element(b*d.InputDim+k).Float32()))
		}
	}

	var y mat.Dense
	y.Mul(wm, xm)

	n := d.OutputDim * d.Batch
	golden := NewNearBankTensor(BurstShape(n), n)
	for b := 0; b < d.Batch; b++ {
		for o := 0; o < d.OutputDim; o++ {
			golden.Set(b*d.OutputDim+o, float32(y.At(o, b)))
		}
	}

	return golden
}

func widen(t *NearBankTensor) []float64 {
	out := make([]float64, t.NumElements)
	for i := range out {
		out[i] = float64(t.Element(i).Float32())
	}

	return out
}

func (p Planner) planEltwise(data *KernelData) {
	d := data.Dims
	shape := Shape{Rows: d.Batch, Bursts: numBursts(d.InputDim)}
	n := d.Batch * d.InputDim

	data.Input0 = NewNearBankTensor(shape, n)
	fill(data.Input0, d, operandInput0)

	if d.Kernel.IsEltwise() {
		data.Input1 = NewNearBankTensor(shape, n)
		fill(data.Input1, d, operandInput1)
	}

	if !d.WantGolden {
		return
	}

	data.Golden = NewNearBankTensor(shape, n)
	for i := range data.Golden.Bursts {
		data.Golden.Bursts[i] = eltwiseReference(d.Kernel, data, i)
	}
}

func eltwiseReference(k KernelType, data *KernelData, i int) burst.Burst {
	a := data.Input0.Bursts[i]

	switch k {
	case ADD:
		return burst.Add(a, data.Input1.Bursts[i])
	case SUB:
		return burst.Sub(a, data.Input1.Bursts[i])
	case MUL:
		return burst.Mul(a, data.Input1.Bursts[i])
	case RELU:
		return burst.Relu(a)
	default:
		panic("not an elementwise kernel: " + k.String())
	}
}

func fill(t *NearBankTensor, d Dims, operand int) {
	if d.Fill == FillRandom {
		r := rand.New(rand.NewPCG(d.Seed, uint64(operand)))
		for i := 0; i < t.NumElements; i++ {
			t.Set(i, r.Float32()*2-1)
		}

		return
	}

	stride := 7 + 2*operand
	for i := 0; i < t.NumElements; i++ {
		t.Set(i, deterministicValue(i, stride, operand))
	}
}

// deterministicValue cycles through multiples of 1/16 in [-0.5, 0.5], which
// keep every product exact in fp16.
func deterministicValue(i, stride, operand int) float32 {
	return float32((i*stride+3*operand)%17-8) / 16
}
