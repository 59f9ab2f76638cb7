package pim

import (
	"errors"
	"fmt"
)

// Errors reported by the memory model.
var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrUnsupportedBank   = errors.New("unsupported bank selector")
)

// BankSelector picks the banks a PIM command applies to.
type BankSelector int

// Bank selectors. Even banks hold PIM operands, odd banks hold results.
const (
	EvenBank BankSelector = iota
	OddBank
	AllBank
)

// Name returns the name of the selector.
func (s BankSelector) Name() string {
	switch s {
	case EvenBank:
		return "EVEN_BANK"
	case OddBank:
		return "ODD_BANK"
	case AllBank:
		return "ALL_BANK"
	default:
		panic("invalid bank selector")
	}
}

// Matches reports whether bank number b (within its rank) is selected.
func (s BankSelector) Matches(b int) bool {
	switch s {
	case EvenBank:
		return b%2 == 0
	case OddBank:
		return b%2 == 1
	default:
		return true
	}
}

// BankID identifies one bank of the memory system.
type BankID struct {
	Channel, Rank, Bank int
}

// Location is a burst-granular address inside a bank.
type Location struct {
	BankID
	Row, Col int
}

func (l Location) String() string {
	return fmt.Sprintf("ch%d.rk%d.bk%d[%d:%d]",
		l.Channel, l.Rank, l.Bank, l.Row, l.Col)
}

// Geometry describes the banks visible to a kernel. Cols counts bursts.
type Geometry struct {
	Channels, Ranks, Banks int
	Rows, Cols             int
}

// UnitsPerRank is the number of PIM units in a rank. Each unit serves an
// even/odd bank pair.
func (g Geometry) UnitsPerRank() int {
	return g.Banks / 2
}

// NumUnits returns the number of PIM units.
func (g Geometry) NumUnits() int {
	return g.Channels * g.Ranks * g.UnitsPerRank()
}

// TotalBanks returns the number of banks.
func (g Geometry) TotalBanks() int {
	return g.Channels * g.Ranks * g.Banks
}

// BurstsPerBank returns the capacity of a bank in bursts.
func (g Geometry) BurstsPerBank() int {
	return g.Rows * g.Cols
}

// UnitBank returns the even or odd bank of PIM unit u. Consecutive units are
// spread over channels first.
func (g Geometry) UnitBank(u int, parity BankSelector) BankID {
	ch := u % g.Channels
	rest := u / g.Channels
	rank := rest / g.UnitsPerRank()
	pair := rest % g.UnitsPerRank()

	bank := 2 * pair
	if parity == OddBank {
		bank++
	}

	return BankID{Channel: ch, Rank: rank, Bank: bank}
}

// SpreadBank returns the bank holding burst j of a tensor spread over all
// banks, and the burst offset inside that bank.
func (g Geometry) SpreadBank(j int) (BankID, int) {
	ch := j % g.Channels
	rest := j / g.Channels
	perChannel := g.Ranks * g.Banks
	local := rest % perChannel

	id := BankID{
		Channel: ch,
		Rank:    local / g.Banks,
		Bank:    local % g.Banks,
	}

	return id, rest / perChannel
}

// Locate converts a row/column base plus a burst offset into a location.
func (g Geometry) Locate(id BankID, row, col, offset int) (Location, error) {
	linear := row*g.Cols + col + offset
	if row < 0 || col < 0 || linear >= g.BurstsPerBank() {
		return Location{}, fmt.Errorf(
			"%w: row %d col %d offset %d exceeds %d rows of %d bursts",
			ErrAddressOutOfRange, row, col, offset, g.Rows, g.Cols)
	}

	return Location{
		BankID: id,
		Row:    linear / g.Cols,
		Col:    linear % g.Cols,
	}, nil
}
