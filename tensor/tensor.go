// Package tensor describes kernel operands and lays them out as burst-sized
// blocks that can be distributed over PIM banks.
package tensor

import (
	"fmt"
	"strings"

	"github.com/sarchlab/pimdriver/burst"
	"github.com/x448/float16"
)

// KernelType identifies a kernel family.
type KernelType int

// The kernel types supported by the PIM units.
const (
	GEMV KernelType = iota
	ADD
	SUB
	MUL
	RELU
)

var kernelNames = map[KernelType]string{
	GEMV: "GEMV",
	ADD:  "ADD",
	SUB:  "SUB",
	MUL:  "MUL",
	RELU: "RELU",
}

// String returns the name of the kernel type.
func (k KernelType) String() string {
	name, ok := kernelNames[k]
	if !ok {
		return fmt.Sprintf("KernelType(%d)", int(k))
	}

	return name
}

// IsEltwise reports whether k is a binary elementwise operation.
func (k KernelType) IsEltwise() bool {
	return k == ADD || k == SUB || k == MUL
}

// ParseKernelType converts a case-insensitive name into a KernelType.
func ParseKernelType(s string) (KernelType, error) {
	for k, name := range kernelNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown kernel type %q", s)
}

// Shape is the burst shape of a tensor: Rows rows of Bursts bursts each.
type Shape struct {
	Rows   int
	Bursts int
}

// NumBursts returns the total number of bursts.
func (s Shape) NumBursts() int {
	return s.Rows * s.Bursts
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Bursts)
}

// BurstShape returns the single-row shape holding dim elements.
func BurstShape(dim int) Shape {
	return Shape{Rows: 1, Bursts: numBursts(dim)}
}

func numBursts(n int) int {
	return (n + burst.LaneWidth - 1) / burst.LaneWidth
}

// A NearBankTensor is a tensor partitioned into bursts. Element i lives in
// burst i / LaneWidth, lane i % LaneWidth.
type NearBankTensor struct {
	Shape       Shape
	NumElements int
	Bursts      []burst.Burst
}

// NewNearBankTensor allocates a zeroed tensor with n elements.
func NewNearBankTensor(shape Shape, n int) *NearBankTensor {
	if numBursts(n) > shape.NumBursts() {
		panic(fmt.Sprintf("shape %s cannot hold %d elements", shape, n))
	}

	return &NearBankTensor{
		Shape:       shape,
		NumElements: n,
		Bursts:      make([]burst.Burst, shape.NumBursts()),
	}
}

// Element returns element i.
func (t *NearBankTensor) Element(i int) float16.Float16 {
	return t.Bursts[i/burst.LaneWidth][i%burst.LaneWidth]
}

// Set stores v as element i, rounding it to fp16.
func (t *NearBankTensor) Set(i int, v float32) {
	t.Bursts[i/burst.LaneWidth][i%burst.LaneWidth] = float16.Fromfloat32(v)
}

// Float32s returns all elements widened to float32.
func (t *NearBankTensor) Float32s() []float32 {
	out := make([]float32, t.NumElements)
	for i := range out {
		out[i] = t.Element(i).Float32()
	}

	return out
}
