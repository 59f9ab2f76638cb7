package pim

import "github.com/sarchlab/pimdriver/burst"

const noOpenRow = -1

// bank stores the bursts of one DRAM bank. Unwritten bursts read as zero.
type bank struct {
	cols    int
	data    map[int]burst.Burst
	openRow int

	// reg is the PIM register that elementwise operations stage through.
	reg burst.Burst
}

func newBank(cols int) *bank {
	return &bank{
		cols:    cols,
		data:    make(map[int]burst.Burst),
		openRow: noOpenRow,
	}
}

func (b *bank) read(row, col int) burst.Burst {
	return b.data[row*b.cols+col]
}

func (b *bank) write(row, col int, v burst.Burst) {
	b.data[row*b.cols+col] = v
}

// activate opens row and returns whether the row was already open.
func (b *bank) activate(row int) (hit, wasClosed bool) {
	hit = b.openRow == row
	wasClosed = b.openRow == noOpenRow
	b.openRow = row

	return hit, wasClosed
}
