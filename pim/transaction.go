package pim

import "fmt"

// Kind classifies the transactions issued to a channel.
type Kind int

// Transaction kinds.
const (
	KindWrite Kind = iota
	KindRead
	KindSeed
	KindMAC
	KindWriteback
	KindEltLoad
	KindEltCompute
	KindEltStore
	numKinds
)

var kindNames = [numKinds]string{
	"WRITE", "READ", "SEED", "MAC", "WRITEBACK",
	"ELT_LOAD", "ELT_COMPUTE", "ELT_STORE",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

func (k Kind) isPIM() bool {
	return k == KindMAC || k == KindEltCompute
}

func (k Kind) readsData() bool {
	return k == KindRead || k == KindSeed || k == KindEltLoad
}

func (k Kind) writesData() bool {
	return k == KindWrite || k == KindWriteback || k == KindEltStore
}

type bankRow struct {
	bank *bank
	row  int
}

// A transaction is one command on a channel. All banks listed in rows are
// activated in parallel before apply runs. Width is the number of banks the
// command moves or computes a burst in.
type transaction struct {
	kind    Kind
	channel int
	rows    []bankRow
	width   int
	apply   func()
}
