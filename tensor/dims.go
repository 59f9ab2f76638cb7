package tensor

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pimdriver/burst"
)

// ErrInvalidDims is returned when kernel dimensions break the layout rules.
var ErrInvalidDims = errors.New("invalid kernel dimensions")

// Layout limits.
const (
	MinGemvOutputDim = 8
	GemvOutputAlign  = 8
	MinGemvInputDim  = 128
	EltwiseAlignment = burst.LaneWidth
)

// FillMode selects how operands are populated.
type FillMode int

// Fill modes.
const (
	FillDeterministic FillMode = iota
	FillRandom
)

func (f FillMode) String() string {
	if f == FillRandom {
		return "random"
	}

	return "deterministic"
}

// Dims describes one kernel invocation. Every field must be set explicitly.
type Dims struct {
	Kernel    KernelType
	Batch     int
	OutputDim int
	InputDim  int

	Fill FillMode
	Seed uint64

	// WantGolden requests a reference output for verification.
	WantGolden bool
}

func (d Dims) String() string {
	if d.Kernel == GEMV {
		return fmt.Sprintf("%s: %dx%d", d.Kernel, d.OutputDim, d.InputDim)
	}

	return fmt.Sprintf("%s: %d", d.Kernel, d.OutputDim)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidDims}, args...)...)
}

// Validate checks the alignment and minimum-size rules of the kernel type.
func (d Dims) Validate() error {
	if d.Batch < 1 {
		return invalid("batch size %d must be at least 1", d.Batch)
	}

	switch {
	case d.Kernel == GEMV:
		return d.validateGemv()
	case d.Kernel.IsEltwise(), d.Kernel == RELU:
		return d.validateEltwise()
	default:
		return invalid("unsupported kernel type %s", d.Kernel)
	}
}

func (d Dims) validateGemv() error {
	if d.InputDim < MinGemvInputDim || d.InputDim%burst.LaneWidth != 0 {
		return invalid(
			"GEMV input dim %d must be a multiple of %d and at least %d",
			d.InputDim, burst.LaneWidth, MinGemvInputDim)
	}

	if d.OutputDim < MinGemvOutputDim || d.OutputDim%GemvOutputAlign != 0 {
		return invalid(
			"GEMV output dim %d must be a multiple of %d and at least %d",
			d.OutputDim, GemvOutputAlign, MinGemvOutputDim)
	}

	return nil
}

func (d Dims) validateEltwise() error {
	if d.OutputDim != d.InputDim {
		return invalid("%s output dim %d differs from input dim %d",
			d.Kernel, d.OutputDim, d.InputDim)
	}

	if d.InputDim <= 0 || d.InputDim%EltwiseAlignment != 0 {
		return invalid("%s dim %d must be a positive multiple of %d",
			d.Kernel, d.InputDim, EltwiseAlignment)
	}

	if d.Kernel == RELU && d.Batch != 1 {
		return invalid("RELU runs with batch size 1, got %d", d.Batch)
	}

	return nil
}
