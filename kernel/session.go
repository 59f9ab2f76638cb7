package kernel

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/pimdriver/api"
	"github.com/sarchlab/pimdriver/burst"
)

// SessionBuilder creates sessions.
type SessionBuilder struct {
	system    api.MemorySystemBuilder
	channels  int
	ranks     int
	verify    bool
	tolerance *burst.Tolerance
}

// WithMemorySystem sets how the memory system is built.
func (b SessionBuilder) WithMemorySystem(
	ms api.MemorySystemBuilder,
) SessionBuilder {
	b.system = ms
	return b
}

// WithChannels sets the PIM channels used. Zero uses every channel.
func (b SessionBuilder) WithChannels(n int) SessionBuilder {
	b.channels = n
	return b
}

// WithRanks sets the PIM ranks used. Zero uses every rank.
func (b SessionBuilder) WithRanks(n int) SessionBuilder {
	b.ranks = n
	return b
}

// WithVerification makes every run compare its outputs with a reference.
func (b SessionBuilder) WithVerification(on bool) SessionBuilder {
	b.verify = on
	return b
}

// WithTolerance overrides the per-kernel verification tolerance.
func (b SessionBuilder) WithTolerance(t burst.Tolerance) SessionBuilder {
	b.tolerance = &t
	return b
}

// Build creates the memory system, the kernel wrapper and the orchestrator.
func (b SessionBuilder) Build(name string) (*Session, error) {
	ms, err := b.system.Build(name)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory system: %w", err)
	}

	channels, err := orDefault(ms, b.channels, "NUM_CHANS")
	if err != nil {
		return nil, err
	}

	ranks, err := orDefault(ms, b.ranks, "NUM_RANKS")
	if err != nil {
		return nil, err
	}

	k, err := api.KernelBuilder{}.
		WithMemorySystem(ms).
		WithChannels(channels).
		WithRanks(ranks).
		Build()
	if err != nil {
		return nil, err
	}

	ob := Builder{}.WithEngine(k).WithVerification(b.verify)
	if b.tolerance != nil {
		ob = ob.WithTolerance(*b.tolerance)
	}

	return &Session{
		system:       ms,
		kernel:       k,
		orchestrator: ob.Build(),
	}, nil
}

func orDefault(ms *api.MemorySystem, n int, key string) (int, error) {
	if n != 0 {
		return n, nil
	}

	v, err := ms.GetConfigUint(key)
	if err != nil {
		return 0, err
	}

	return int(v), nil
}

// Session owns one memory system and runs kernels on it one at a time.
type Session struct {
	system       *api.MemorySystem
	kernel       *api.Kernel
	orchestrator *Orchestrator
}

// MemorySystem returns the memory system of the session.
func (s *Session) MemorySystem() *api.MemorySystem {
	return s.system
}

// Kernel returns the kernel wrapper of the session.
func (s *Session) Kernel() *api.Kernel {
	return s.kernel
}

// Run runs one invocation to completion.
func (s *Session) Run(inv Invocation) (*Result, error) {
	return s.orchestrator.Run(inv)
}

// Close flushes the statistics of the memory system.
func (s *Session) Close() error {
	return s.system.Close()
}

// WriteSummary prints the kernel line and the phase latencies of r.
func WriteSummary(w io.Writer, r *Result) {
	fmt.Fprintln(w, r.Dims.String())

	l := r.Latencies()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Phase", "Cycles"})
	t.AppendRow(table.Row{"Preload", l.Preload})
	t.AppendRow(table.Row{"Execute", l.Execute})
	t.AppendRow(table.Row{"Read", l.Read})
	t.AppendFooter(table.Row{"Total", l.Total()})
	t.Render()

	if r.Report != nil {
		r.Report.WriteReport(w)
	}
}

var _ Engine = (*api.Kernel)(nil)
