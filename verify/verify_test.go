package verify_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/sarchlab/pimdriver/verify"
)

// partials spreads v over the lanes of a burst so that its reduction is v.
func partials(v float32) burst.Burst {
	vals := make([]float32, burst.LaneWidth)
	vals[0] = v / 2
	vals[5] = v / 4
	vals[11] = v / 4

	return burst.FromFloat32s(vals)
}

func golden(vals ...float32) *tensor.NearBankTensor {
	t := tensor.NewNearBankTensor(tensor.BurstShape(len(vals)), len(vals))
	for i, v := range vals {
		t.Set(i, v)
	}

	return t
}

var _ = Describe("Verifier", func() {
	gemv := tensor.Dims{Kernel: tensor.GEMV, Batch: 1, OutputDim: 8, InputDim: 1024}
	add := tensor.Dims{Kernel: tensor.ADD, Batch: 1, OutputDim: 16, InputDim: 16}

	It("should pick a tolerance per kernel", func() {
		Expect(verify.ForDims(gemv).Tolerance.Scale).To(Equal(256))
		Expect(verify.ForDims(add).Tolerance).To(Equal(burst.ExactTolerance))
	})

	It("should accept reduced GEMV outputs", func() {
		raw := []burst.Burst{partials(4), partials(-2), partials(0.5)}

		r := verify.ForDims(gemv).Verify(gemv, raw, golden(4, -2, 0.5), 3)

		Expect(r.Passed()).To(BeTrue())
		Expect(r.Checked).To(Equal(3))
		Expect(r.Title).To(Equal("GEMV: 8x1024"))
	})

	It("should record GEMV outputs beyond the tolerance", func() {
		raw := []burst.Burst{partials(4), partials(-2)}

		r := verify.ForDims(gemv).VerifyGemv(raw, golden(4, 2), 2)

		Expect(r.Passed()).To(BeFalse())
		Expect(r.MismatchCount).To(Equal(1))
		Expect(r.Mismatches[0].Index).To(Equal(1))
		Expect(r.Mismatches[0].Actual.Float32()).To(Equal(float32(-2)))
		Expect(r.Mismatches[0].Expected.Float32()).To(Equal(float32(2)))
	})

	It("should compare elementwise lanes exactly", func() {
		want := golden(1, 2, 3, 4)
		raw := make([]burst.Burst, 1)
		copy(raw, want.Bursts)

		v := verify.ForDims(add)
		Expect(v.VerifyElementwise(raw, want, 4).Passed()).To(BeTrue())

		raw[0] = burst.FromFloat32s([]float32{1, 2, 3.5, 4})
		Expect(v.VerifyElementwise(raw, want, 4).MismatchCount).To(Equal(1))
	})

	It("should count missing outputs as mismatches", func() {
		r := verify.ForDims(add).VerifyElementwise(nil, golden(1, 2), 2)

		Expect(r.MismatchCount).To(Equal(2))
	})

	It("should record every mismatch by default", func() {
		n := 100
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = float32(i + 1)
		}

		r := verify.ForDims(add).VerifyElementwise(nil, golden(vals...), n)

		Expect(r.MismatchCount).To(Equal(n))
		Expect(r.Mismatches).To(HaveLen(r.MismatchCount))
		Expect(r.Mismatches[n-1].Index).To(Equal(99))
		Expect(r.Mismatches[n-1].Expected.Float32()).To(Equal(float32(100)))

		var buf bytes.Buffer
		r.WriteReport(&buf)

		Expect(buf.String()).To(ContainSubstring("100 outputs differ"))
		Expect(buf.String()).To(MatchRegexp(`\|\s+99\s+\|`))
		Expect(buf.String()).NotTo(ContainSubstring("NOT SHOWN"))
	})

	It("should cap recorded mismatches only when asked", func() {
		n := 40
		vals := make([]float32, n)
		for i := range vals {
			vals[i] = 1
		}

		v := verify.Verifier{Tolerance: burst.ExactTolerance, MaxRecorded: 5}
		r := v.VerifyElementwise(nil, golden(vals...), n)

		Expect(r.MismatchCount).To(Equal(n))
		Expect(r.Mismatches).To(HaveLen(5))
	})

	It("should render a passing report", func() {
		r := verify.ForDims(add).Verify(add, golden(1).Bursts, golden(1), 1)

		var buf bytes.Buffer
		r.WriteReport(&buf)

		Expect(buf.String()).To(ContainSubstring("ADD: 16"))
		Expect(buf.String()).To(ContainSubstring("All outputs match"))
	})

	It("should save a failing report with a mismatch table", func() {
		v := verify.Verifier{Tolerance: burst.ExactTolerance, MaxRecorded: 1}
		r := v.VerifyElementwise(nil, golden(1, 2, 3), 3)

		path := filepath.Join(GinkgoT().TempDir(), "report.txt")
		Expect(r.SaveReportToFile(path)).To(Succeed())

		out, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("3 outputs differ"))
		Expect(string(out)).To(ContainSubstring("EXPECTED"))
		Expect(string(out)).To(ContainSubstring("NOT SHOWN"))
	})
})
