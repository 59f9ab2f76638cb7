package burst

import (
	"math"

	"github.com/x448/float16"
)

// ReduceSum adds all lanes of a burst with a pairwise adder tree. Every
// partial sum is rounded to fp16.
func ReduceSum(b Burst) float16.Float16 {
	var level [LaneWidth]float16.Float16
	copy(level[:], b[:])

	for n := LaneWidth; n > 1; n /= 2 {
		for i := 0; i < n/2; i++ {
			level[i] = round(level[2*i].Float32() + level[2*i+1].Float32())
		}
	}

	return level[0]
}

// ULPDistance returns the number of representable fp16 values between the
// magnitudes of a and b. It is only meaningful when a and b share a sign.
func ULPDistance(a, b float16.Float16) int {
	d := int(a.Bits()&0x7fff) - int(b.Bits()&0x7fff)
	if d < 0 {
		d = -d
	}

	return d
}

// ToleranceEqual reports whether a and b agree within slack in absolute
// terms, or within scale ULPs when both have the same sign.
func ToleranceEqual(a, b float16.Float16, scale int, slack float32) bool {
	if a == b {
		return true
	}

	diff := math.Abs(float64(a.Float32()) - float64(b.Float32()))
	if diff <= float64(slack) {
		return true
	}

	if a.Signbit() != b.Signbit() {
		return false
	}

	return ULPDistance(a, b) <= scale
}

// Tolerance is the comparison policy used when checking reduced-precision
// results against a reference.
type Tolerance struct {
	// Scale is the number of fp16 ULPs a result may drift.
	Scale int

	// Slack is the absolute difference that is always accepted.
	Slack float32
}

// Equal applies the policy to a pair of values.
func (t Tolerance) Equal(a, b float16.Float16) bool {
	return ToleranceEqual(a, b, t.Scale, t.Slack)
}

// ExactTolerance accepts only bit-identical or numerically equal values.
var ExactTolerance = Tolerance{}

// DefaultSlack is the absolute slack used for reductions.
const DefaultSlack = 0.7

// ToleranceForReduction derives the policy for a reduction over width
// products. A 1024-wide GEMV row gets 256 ULPs.
func ToleranceForReduction(width int) Tolerance {
	scale := width / 4
	if scale < LaneWidth {
		scale = LaneWidth
	}

	return Tolerance{Scale: scale, Slack: DefaultSlack}
}
