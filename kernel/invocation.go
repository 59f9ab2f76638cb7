package kernel

import (
	"fmt"

	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
)

// Default bank rows of elementwise operands and results.
const (
	DefaultOperandRow0 = 0
	DefaultOperandRow1 = 128
	DefaultResultRow   = 256
)

// An Invocation is one kernel run. It is implemented by GEMV, Eltwise and
// Relu.
type Invocation interface {
	// KernelDims returns the dimensions the operands are planned from.
	KernelDims() tensor.Dims

	preload(e Engine, data *tensor.KernelData) error
	execute(e Engine, data *tensor.KernelData) error
	read(e Engine, data *tensor.KernelData) ([]burst.Burst, error)
}

// GEMV multiplies a weight matrix with a batch of input vectors.
type GEMV struct {
	Dims tensor.Dims

	// Accumulate adds the products to the results already in the odd banks.
	Accumulate bool
}

// KernelDims returns the dimensions with the kernel type set to GEMV.
func (g GEMV) KernelDims() tensor.Dims {
	d := g.Dims
	d.Kernel = tensor.GEMV

	return d
}

func (g GEMV) preload(e Engine, data *tensor.KernelData) error {
	return e.PreloadWeights(data.Weight)
}

func (g GEMV) execute(e Engine, data *tensor.KernelData) error {
	return e.ExecuteGemv(data.Weight, data.Input0, g.Accumulate)
}

func (g GEMV) read(e Engine, data *tensor.KernelData) ([]burst.Burst, error) {
	n := data.NumOutputs()
	buf := make([]burst.Burst, n)
	col := e.ResultColumnForGemv(data.Input0.Shape, data.Dims.OutputDim)

	if err := e.ReadResult(buf, pim.OddBank, n, 0, 0, col); err != nil {
		return nil, err
	}

	return buf, nil
}

// Eltwise applies ADD, SUB or MUL to two tensors spread over all banks.
type Eltwise struct {
	Dims tensor.Dims

	Row0, Row1, ResultRow int
}

// NewEltwise returns an elementwise invocation using the default rows.
func NewEltwise(d tensor.Dims) Eltwise {
	return Eltwise{
		Dims:      d,
		Row0:      DefaultOperandRow0,
		Row1:      DefaultOperandRow1,
		ResultRow: DefaultResultRow,
	}
}

// KernelDims returns the dimensions of the invocation.
func (e Eltwise) KernelDims() tensor.Dims {
	return e.Dims
}

func (e Eltwise) preload(eng Engine, data *tensor.KernelData) error {
	if !data.Dims.Kernel.IsEltwise() {
		return fmt.Errorf("%s is not a binary elementwise kernel",
			data.Dims.Kernel)
	}

	if err := eng.PreloadNoReplacement(data.Input0, e.Row0, 0); err != nil {
		return err
	}

	return eng.PreloadNoReplacement(data.Input1, e.Row1, 0)
}

func (e Eltwise) execute(eng Engine, data *tensor.KernelData) error {
	return eng.ExecuteEltwise(data.Input0.Shape, pim.AllBank,
		data.Dims.Kernel, e.Row0, e.ResultRow, e.Row1)
}

func (e Eltwise) read(eng Engine, data *tensor.KernelData) ([]burst.Burst, error) {
	return readSpread(eng, data.Input0.Shape, e.ResultRow)
}

// Relu clamps the negative elements of a tensor to zero.
type Relu struct {
	Dims tensor.Dims

	Row, ResultRow int
}

// NewRelu returns a RELU invocation using the default rows.
func NewRelu(d tensor.Dims) Relu {
	return Relu{
		Dims:      d,
		Row:       DefaultOperandRow0,
		ResultRow: DefaultResultRow,
	}
}

// KernelDims returns the dimensions with the kernel type set to RELU.
func (r Relu) KernelDims() tensor.Dims {
	d := r.Dims
	d.Kernel = tensor.RELU

	return d
}

func (r Relu) preload(e Engine, data *tensor.KernelData) error {
	return e.PreloadNoReplacement(data.Input0, r.Row, 0)
}

func (r Relu) execute(e Engine, data *tensor.KernelData) error {
	return e.ExecuteEltwise(data.Input0.Shape, pim.AllBank,
		tensor.RELU, r.Row, r.ResultRow)
}

func (r Relu) read(e Engine, data *tensor.KernelData) ([]burst.Burst, error) {
	return readSpread(e, data.Input0.Shape, r.ResultRow)
}

func readSpread(
	e Engine,
	shape tensor.Shape,
	row int,
) ([]burst.Burst, error) {
	buf := make([]burst.Burst, shape.NumBursts())
	if err := e.ReadData(buf, shape, row, 0); err != nil {
		return nil, err
	}

	return buf, nil
}

// For returns the invocation that runs d with default placement.
func For(d tensor.Dims) Invocation {
	switch {
	case d.Kernel == tensor.GEMV:
		return GEMV{Dims: d}
	case d.Kernel == tensor.RELU:
		return NewRelu(d)
	default:
		return NewEltwise(d)
	}
}
