// Package verify compares kernel outputs read back from the memory system
// against software reference values.
//
// Two comparisons are provided:
//
//   - GEMV: every result burst holds the 16 lane partial sums of one output.
//     The burst is reduced with the fp16 adder tree and the sum is compared
//     with the reference element of the same index.
//   - Elementwise: lane i%16 of burst i/16 is compared with reference
//     element i directly.
//
// Values are compared with a burst.Tolerance. A mismatch is recorded, never
// returned as an error, so one run always yields a complete Report.
package verify

import (
	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/x448/float16"
)

// Mismatch is one output that fell outside the tolerance.
type Mismatch struct {
	Index    int
	Actual   float16.Float16
	Expected float16.Float16
}

// A Verifier checks outputs under one tolerance policy.
type Verifier struct {
	Tolerance burst.Tolerance

	// MaxRecorded caps Report.Mismatches when positive. Zero records every
	// mismatch. MismatchCount is exact either way.
	MaxRecorded int
}

// ForDims returns the verifier suited to a kernel. GEMV outputs are
// reductions and get a width-derived tolerance; elementwise outputs must be
// exact.
func ForDims(d tensor.Dims) Verifier {
	if d.Kernel == tensor.GEMV {
		return Verifier{Tolerance: burst.ToleranceForReduction(d.InputDim)}
	}

	return Verifier{Tolerance: burst.ExactTolerance}
}

// Verify dispatches on the kernel type of d.
func (v Verifier) Verify(
	d tensor.Dims,
	raw []burst.Burst,
	golden *tensor.NearBankTensor,
	count int,
) *Report {
	var r *Report
	if d.Kernel == tensor.GEMV {
		r = v.VerifyGemv(raw, golden, count)
	} else {
		r = v.VerifyElementwise(raw, golden, count)
	}

	r.Title = d.String()

	return r
}

// VerifyGemv reduces raw[i] and compares it with golden element i for the
// first count outputs.
func (v Verifier) VerifyGemv(
	raw []burst.Burst,
	golden *tensor.NearBankTensor,
	count int,
) *Report {
	r := v.newReport("GEMV")

	for i := 0; i < count; i++ {
		var actual float16.Float16
		if i < len(raw) {
			actual = burst.ReduceSum(raw[i])
		}

		v.check(r, i, actual, golden.Element(i))
	}

	return r
}

// VerifyElementwise compares the first count lanes of raw with golden.
func (v Verifier) VerifyElementwise(
	raw []burst.Burst,
	golden *tensor.NearBankTensor,
	count int,
) *Report {
	r := v.newReport("elementwise")

	for i := 0; i < count; i++ {
		var actual float16.Float16
		if b := i / burst.LaneWidth; b < len(raw) {
			actual = raw[b][i%burst.LaneWidth]
		}

		v.check(r, i, actual, golden.Element(i))
	}

	return r
}

func (v Verifier) newReport(title string) *Report {
	return &Report{Title: title, Tolerance: v.Tolerance}
}

func (v Verifier) check(r *Report, i int, actual, expected float16.Float16) {
	r.Checked++

	if v.Tolerance.Equal(actual, expected) {
		return
	}

	r.MismatchCount++

	if v.MaxRecorded > 0 && len(r.Mismatches) >= v.MaxRecorded {
		return
	}

	r.Mismatches = append(r.Mismatches, Mismatch{
		Index:    i,
		Actual:   actual,
		Expected: expected,
	})
}
