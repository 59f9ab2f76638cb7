package pim

import (
	"math"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/config"
)

// Stats counts the work done by a device.
type Stats struct {
	Cycles       uint64            `yaml:"cycles"`
	Transactions map[string]uint64 `yaml:"transactions"`
	RowHits      uint64            `yaml:"row_hits"`
	RowMisses    uint64            `yaml:"row_misses"`
	BytesRead    uint64            `yaml:"bytes_read"`
	BytesWritten uint64            `yaml:"bytes_written"`
	PIMOps       uint64            `yaml:"pim_ops"`
}

// Device is a multi-channel HBM stack with PIM units between bank pairs.
// Commands are queued per channel and retire as the engine ticks the device.
type Device struct {
	*sim.TickingComponent

	timing     config.DeviceConfig
	geometry   Geometry
	banks      [][][]*bank // [channel][rank][bank]
	queues     [][]*transaction
	queued     int
	queueDepth int
	busyUntil  []uint64
	doneAt     uint64

	stats Stats
}

// Geometry returns the full bank geometry of the device.
func (d *Device) Geometry() Geometry {
	return d.geometry
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	s := d.stats
	s.Cycles = d.CurrentCycle()
	s.Transactions = make(map[string]uint64, len(d.stats.Transactions))
	for k, v := range d.stats.Transactions {
		s.Transactions[k] = v
	}

	return s
}

// CurrentCycle converts the engine time into device cycles.
func (d *Device) CurrentCycle() uint64 {
	now := float64(d.Engine.CurrentTime())
	return uint64(math.Round(now * float64(d.Freq)))
}

// Pending returns the number of queued transactions.
func (d *Device) Pending() int {
	return d.queued
}

// CanEnqueue reports whether the transaction queue has room.
func (d *Device) CanEnqueue() bool {
	return d.queued < d.queueDepth
}

func (d *Device) bankAt(id BankID) *bank {
	return d.banks[id.Channel][id.Rank][id.Bank]
}

// Peek returns the burst stored at loc without timing it.
func (d *Device) Peek(loc Location) burst.Burst {
	return d.bankAt(loc.BankID).read(loc.Row, loc.Col)
}

func (d *Device) enqueue(t *transaction) {
	if !d.CanEnqueue() {
		panic("transaction queue is full")
	}

	d.queues[t.channel] = append(d.queues[t.channel], t)
	d.queued++
}

// Tick issues at most one transaction per idle channel.
func (d *Device) Tick() (madeProgress bool) {
	now := d.CurrentCycle()

	for ch := range d.queues {
		madeProgress = d.issue(ch, now) || madeProgress
	}

	if d.queued > 0 || now < d.doneAt {
		return true
	}

	return madeProgress
}

func (d *Device) issue(ch int, now uint64) bool {
	if len(d.queues[ch]) == 0 || now < d.busyUntil[ch] {
		return false
	}

	t := d.queues[ch][0]
	d.queues[ch] = d.queues[ch][1:]
	d.queued--

	cost := d.activate(t) + d.commandCycles(t.kind)
	d.busyUntil[ch] = now + cost

	done := now + cost + d.completionCycles(t.kind)
	if done > d.doneAt {
		d.doneAt = done
	}

	t.apply()
	d.count(t)

	Trace("Transaction",
		"Device", d.Name(),
		"Kind", t.kind.String(),
		"Channel", ch,
		"Cycle", now,
		"Cost", cost,
		"Pending", d.queued,
	)

	return true
}

// activate opens the rows a transaction needs. Banks open their rows in
// parallel, so the slowest bank sets the cost.
func (d *Device) activate(t *transaction) uint64 {
	var worst uint64

	for _, br := range t.rows {
		hit, wasClosed := br.bank.activate(br.row)

		var c uint64
		switch {
		case hit:
			d.stats.RowHits++
			continue
		case wasClosed:
			c = uint64(d.timing.TRCD)
		default:
			c = uint64(d.timing.TRP + d.timing.TRCD)
		}

		d.stats.RowMisses++
		if c > worst {
			worst = c
		}
	}

	return worst
}

func (d *Device) commandCycles(k Kind) uint64 {
	if k.isPIM() {
		return uint64(d.timing.TPIM)
	}

	return uint64(d.timing.TCCD)
}

func (d *Device) completionCycles(k Kind) uint64 {
	switch {
	case k.readsData():
		return uint64(d.timing.TCL)
	case k.writesData():
		return uint64(d.timing.TWR)
	default:
		return 0
	}
}

func (d *Device) count(t *transaction) {
	d.stats.Transactions[t.kind.String()]++

	bytes := uint64(t.width * burst.SizeInBytes)
	switch {
	case t.kind == KindRead:
		d.stats.BytesRead += bytes
	case t.kind == KindWrite:
		d.stats.BytesWritten += bytes
	case t.kind.isPIM():
		d.stats.PIMOps += uint64(t.width)
	}
}
