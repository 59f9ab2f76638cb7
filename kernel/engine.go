// Package kernel runs PIM kernels through the preload, execute and read
// phases and measures the cycles each phase takes.
package kernel

import (
	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
)

// Engine is the memory system a kernel is driven against. api.Kernel
// implements it.
type Engine interface {
	PreloadWeights(w *tensor.NearBankTensor) error
	PreloadNoReplacement(t *tensor.NearBankTensor, row, col int) error
	ExecuteGemv(w, in *tensor.NearBankTensor, accumulate bool) error
	ExecuteEltwise(
		shape tensor.Shape,
		bank pim.BankSelector,
		op tensor.KernelType,
		row0, resultRow int,
		row1 ...int,
	) error
	ResultColumnForGemv(inputShape tensor.Shape, outputDim int) int
	ReadResult(
		buf []burst.Burst,
		bank pim.BankSelector,
		count, row, col, endCol int,
	) error
	ReadData(buf []burst.Burst, shape tensor.Shape, row, col int) error
	RunToQuiescence() error
	CurrentCycle() uint64
}
