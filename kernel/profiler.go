package kernel

import "fmt"

// CycleCounter reports the current cycle of a memory system.
type CycleCounter interface {
	CurrentCycle() uint64
}

// Profiler samples a cycle counter at phase boundaries.
type Profiler struct {
	counter CycleCounter
	last    uint64
}

// NewProfiler creates a profiler whose first reading is taken now.
func NewProfiler(counter CycleCounter) *Profiler {
	return &Profiler{
		counter: counter,
		last:    counter.CurrentCycle(),
	}
}

// Last returns the most recent reading.
func (p *Profiler) Last() uint64 {
	return p.last
}

// Sample reads the counter. The counter never goes backwards.
func (p *Profiler) Sample() uint64 {
	now := p.counter.CurrentCycle()
	if now < p.last {
		panic(fmt.Sprintf("cycle counter went backwards: %d after %d",
			now, p.last))
	}

	p.last = now

	return now
}

// Marks are the cycle readings taken around the three phases. Start is the
// reading before preloading begins.
type Marks struct {
	Start   uint64
	Preload uint64
	Execute uint64
	Read    uint64
}

// Latencies are the cycles spent in each phase.
type Latencies struct {
	Preload uint64
	Execute uint64
	Read    uint64
}

// Latencies derives per-phase cycle counts from the marks.
func (m Marks) Latencies() Latencies {
	return Latencies{
		Preload: m.Preload - m.Start,
		Execute: m.Execute - m.Preload,
		Read:    m.Read - m.Execute,
	}
}

// Total returns the cycles spent in all phases.
func (l Latencies) Total() uint64 {
	return l.Preload + l.Execute + l.Read
}
