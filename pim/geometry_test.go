package pim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pimdriver/pim"
)

var _ = Describe("Geometry", func() {
	g := pim.Geometry{Channels: 2, Ranks: 1, Banks: 16, Rows: 4, Cols: 32}

	It("should count units and banks", func() {
		Expect(g.UnitsPerRank()).To(Equal(8))
		Expect(g.NumUnits()).To(Equal(16))
		Expect(g.TotalBanks()).To(Equal(32))
		Expect(g.BurstsPerBank()).To(Equal(128))
	})

	It("should spread units over channels first", func() {
		Expect(g.UnitBank(0, pim.EvenBank)).To(Equal(pim.BankID{Bank: 0}))
		Expect(g.UnitBank(1, pim.EvenBank)).
			To(Equal(pim.BankID{Channel: 1, Bank: 0}))
		Expect(g.UnitBank(2, pim.OddBank)).To(Equal(pim.BankID{Bank: 3}))
		Expect(g.UnitBank(15, pim.OddBank)).
			To(Equal(pim.BankID{Channel: 1, Bank: 15}))
	})

	It("should spread bursts over every bank before reusing one", func() {
		seen := make(map[pim.BankID]bool)
		for j := 0; j < g.TotalBanks(); j++ {
			id, off := g.SpreadBank(j)
			Expect(off).To(Equal(0))
			Expect(seen[id]).To(BeFalse())
			seen[id] = true
		}

		id, off := g.SpreadBank(g.TotalBanks() + 3)
		Expect(off).To(Equal(1))
		Expect(id).To(Equal(pim.BankID{Channel: 1, Bank: 1}))
	})

	It("should wrap offsets into the next row", func() {
		loc, err := g.Locate(pim.BankID{Bank: 3}, 1, 30, 5)

		Expect(err).NotTo(HaveOccurred())
		Expect(loc.Row).To(Equal(2))
		Expect(loc.Col).To(Equal(3))
	})

	It("should reject addresses beyond the bank", func() {
		_, err := g.Locate(pim.BankID{}, 3, 31, 1)

		Expect(err).To(MatchError(pim.ErrAddressOutOfRange))
	})

	DescribeTable("bank selectors",
		func(s pim.BankSelector, bank int, want bool) {
			Expect(s.Matches(bank)).To(Equal(want))
		},
		Entry("even accepts 4", pim.EvenBank, 4, true),
		Entry("even rejects 5", pim.EvenBank, 5, false),
		Entry("odd accepts 5", pim.OddBank, 5, true),
		Entry("all accepts 5", pim.AllBank, 5, true),
	)
})
