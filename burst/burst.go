// Package burst defines the burst-sized half-precision vectors that flow
// between the host and the PIM banks, together with the reduced-precision
// arithmetic performed on them.
package burst

import (
	"fmt"
	"strings"

	"github.com/x448/float16"
)

// LaneWidth is the number of half-precision lanes in one memory burst.
const LaneWidth = 16

// SizeInBytes is the number of bytes moved by one burst.
const SizeInBytes = LaneWidth * 2

// A Burst is one memory burst worth of fp16 values.
type Burst [LaneWidth]float16.Float16

// FromFloat32s rounds up to LaneWidth values into a burst. Missing lanes are
// left as zero.
func FromFloat32s(vals []float32) Burst {
	if len(vals) > LaneWidth {
		panic(fmt.Sprintf("burst holds %d lanes, got %d values",
			LaneWidth, len(vals)))
	}

	var b Burst
	for i, v := range vals {
		b[i] = float16.Fromfloat32(v)
	}

	return b
}

// Float32s returns the lanes widened to float32.
func (b Burst) Float32s() []float32 {
	out := make([]float32, LaneWidth)
	for i, v := range b {
		out[i] = v.Float32()
	}

	return out
}

// Lane returns lane i widened to float32.
func (b Burst) Lane(i int) float32 {
	return b[i].Float32()
}

// IsZero reports whether every lane holds +0 or -0.
func (b Burst) IsZero() bool {
	for _, v := range b {
		if v.Bits()&0x7fff != 0 {
			return false
		}
	}

	return true
}

func (b Burst) String() string {
	parts := make([]string, LaneWidth)
	for i, v := range b {
		parts[i] = fmt.Sprintf("%g", v.Float32())
	}

	return "[" + strings.Join(parts, " ") + "]"
}

func round(v float32) float16.Float16 {
	return float16.Fromfloat32(v)
}

// Add returns the lane-wise sum rounded to fp16.
func Add(a, b Burst) Burst {
	var out Burst
	for i := range out {
		out[i] = round(a[i].Float32() + b[i].Float32())
	}

	return out
}

// Sub returns the lane-wise difference rounded to fp16.
func Sub(a, b Burst) Burst {
	var out Burst
	for i := range out {
		out[i] = round(a[i].Float32() - b[i].Float32())
	}

	return out
}

// Mul returns the lane-wise product rounded to fp16.
func Mul(a, b Burst) Burst {
	var out Burst
	for i := range out {
		out[i] = round(a[i].Float32() * b[i].Float32())
	}

	return out
}

// Relu clamps negative lanes to zero. Non-negative lanes, including -0, are
// passed through untouched.
func Relu(a Burst) Burst {
	var out Burst
	for i, v := range a {
		if v.Float32() < 0 {
			out[i] = 0
			continue
		}
		out[i] = v
	}

	return out
}

// MAC multiplies w and x lane by lane and adds the products to acc. Both the
// product and the sum are rounded to fp16, as the PIM MAC unit does.
func MAC(acc, w, x Burst) Burst {
	var out Burst
	for i := range out {
		prod := round(w[i].Float32() * x[i].Float32())
		out[i] = round(acc[i].Float32() + prod.Float32())
	}

	return out
}
