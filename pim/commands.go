package pim

import (
	"github.com/sarchlab/pimdriver/burst"
)

// Write queues a single-bank burst write.
func (d *Device) Write(loc Location, v burst.Burst) {
	b := d.bankAt(loc.BankID)

	d.enqueue(&transaction{
		kind:    KindWrite,
		channel: loc.Channel,
		rows:    []bankRow{{bank: b, row: loc.Row}},
		width:   1,
		apply: func() {
			b.write(loc.Row, loc.Col, v)
		},
	})
}

// Read queues a single-bank burst read into dst. dst is filled when the
// transaction issues.
func (d *Device) Read(loc Location, dst *burst.Burst) {
	b := d.bankAt(loc.BankID)

	d.enqueue(&transaction{
		kind:    KindRead,
		channel: loc.Channel,
		rows:    []bankRow{{bank: b, row: loc.Row}},
		width:   1,
		apply: func() {
			*dst = b.read(loc.Row, loc.Col)
		},
	})
}

// AccSeed initializes the accumulator of the unit owning even bank Unit.
// A nil From clears the accumulator.
type AccSeed struct {
	Unit BankID
	From *Location
}

// Seed queues an accumulator initialization for units of one channel.
func (d *Device) Seed(ch int, seeds []AccSeed) {
	var rows []bankRow
	for _, s := range seeds {
		if s.From != nil {
			rows = append(rows, bankRow{
				bank: d.bankAt(s.From.BankID), row: s.From.Row})
		}
	}

	d.enqueue(&transaction{
		kind:    KindSeed,
		channel: ch,
		rows:    rows,
		width:   len(seeds),
		apply: func() {
			for _, s := range seeds {
				acc := d.bankAt(s.Unit)
				if s.From == nil {
					acc.reg = burst.Burst{}
					continue
				}
				acc.reg = d.Peek(*s.From)
			}
		},
	})
}

// MAC queues an all-unit multiply-accumulate. Every listed unit multiplies
// the burst at (row, col) of its even bank with x and adds the products to
// its accumulator.
func (d *Device) MAC(ch int, units []BankID, row, col int, x burst.Burst) {
	rows := make([]bankRow, len(units))
	for i, u := range units {
		rows[i] = bankRow{bank: d.bankAt(u), row: row}
	}

	d.enqueue(&transaction{
		kind:    KindMAC,
		channel: ch,
		rows:    rows,
		width:   len(units),
		apply: func() {
			for _, r := range rows {
				r.bank.reg = burst.MAC(r.bank.reg, r.bank.read(row, col), x)
			}
		},
	})
}

// AccMove stores the accumulator of Unit at To.
type AccMove struct {
	Unit BankID
	To   Location
}

// Writeback queues accumulator stores for units of one channel.
func (d *Device) Writeback(ch int, moves []AccMove) {
	rows := make([]bankRow, len(moves))
	for i, m := range moves {
		rows[i] = bankRow{bank: d.bankAt(m.To.BankID), row: m.To.Row}
	}

	d.enqueue(&transaction{
		kind:    KindWriteback,
		channel: ch,
		rows:    rows,
		width:   len(moves),
		apply: func() {
			for _, m := range moves {
				acc := d.bankAt(m.Unit).reg
				d.bankAt(m.To.BankID).write(m.To.Row, m.To.Col, acc)
			}
		},
	})
}

// EltLoad queues a load of each location into its bank register.
func (d *Device) EltLoad(ch int, locs []Location) {
	d.enqueueEltwise(KindEltLoad, ch, locs, func(b *bank, l Location) {
		b.reg = b.read(l.Row, l.Col)
	})
}

// EltCompute queues op on each bank register. Binary operations combine
// the register with the burst at each location.
func (d *Device) EltCompute(
	ch int,
	locs []Location,
	op func(reg, operand burst.Burst) burst.Burst,
) {
	d.enqueueEltwise(KindEltCompute, ch, locs, func(b *bank, l Location) {
		b.reg = op(b.reg, b.read(l.Row, l.Col))
	})
}

// EltStore queues a store of each bank register to its location.
func (d *Device) EltStore(ch int, locs []Location) {
	d.enqueueEltwise(KindEltStore, ch, locs, func(b *bank, l Location) {
		b.write(l.Row, l.Col, b.reg)
	})
}

func (d *Device) enqueueEltwise(
	kind Kind,
	ch int,
	locs []Location,
	f func(b *bank, l Location),
) {
	rows := make([]bankRow, len(locs))
	for i, l := range locs {
		rows[i] = bankRow{bank: d.bankAt(l.BankID), row: l.Row}
	}

	d.enqueue(&transaction{
		kind:    kind,
		channel: ch,
		rows:    rows,
		width:   len(locs),
		apply: func() {
			for i, l := range locs {
				f(rows[i].bank, l)
			}
		},
	})
}
