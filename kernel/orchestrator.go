package kernel

import (
	"fmt"

	"github.com/sarchlab/pimdriver/burst"
	"github.com/sarchlab/pimdriver/pim"
	"github.com/sarchlab/pimdriver/tensor"
	"github.com/sarchlab/pimdriver/verify"
)

// Phase is the state of an orchestrator.
type Phase int

// Phases in the order a run visits them.
const (
	Idle Phase = iota
	Preloading
	Executing
	Reading
	Done
)

var phaseNames = [...]string{"Idle", "Preloading", "Executing", "Reading", "Done"}

func (p Phase) String() string {
	if p < Idle || p > Done {
		return fmt.Sprintf("Phase(%d)", int(p))
	}

	return phaseNames[p]
}

// Result is the outcome of one kernel run.
type Result struct {
	Kernel tensor.KernelType
	Dims   tensor.Dims

	// Raw holds the bursts read back from the memory system.
	Raw    []burst.Burst
	Golden *tensor.NearBankTensor
	Marks  Marks

	// Report is set when verification was requested.
	Report *verify.Report
}

// Latencies returns the cycles spent in each phase.
func (r *Result) Latencies() Latencies {
	return r.Marks.Latencies()
}

// Outputs returns the kernel outputs as float32 values. GEMV outputs are the
// reduced result bursts.
func (r *Result) Outputs() []float32 {
	if r.Kernel == tensor.GEMV {
		out := make([]float32, len(r.Raw))
		for i, b := range r.Raw {
			out[i] = burst.ReduceSum(b).Float32()
		}

		return out
	}

	n := r.Dims.Batch * r.Dims.OutputDim
	out := make([]float32, 0, n)
	for _, b := range r.Raw {
		out = append(out, b.Float32s()...)
	}

	return out[:n]
}

// Builder can build orchestrators.
type Builder struct {
	engine    Engine
	verify    bool
	tolerance *burst.Tolerance
}

// WithEngine sets the engine the orchestrator drives.
func (b Builder) WithEngine(e Engine) Builder {
	b.engine = e
	return b
}

// WithVerification makes every run compare its outputs with a reference.
func (b Builder) WithVerification(on bool) Builder {
	b.verify = on
	return b
}

// WithTolerance overrides the per-kernel verification tolerance.
func (b Builder) WithTolerance(t burst.Tolerance) Builder {
	b.tolerance = &t
	return b
}

// Build creates a new orchestrator.
func (b Builder) Build() *Orchestrator {
	if b.engine == nil {
		panic("orchestrator needs an engine")
	}

	return &Orchestrator{
		engine:    b.engine,
		verify:    b.verify,
		tolerance: b.tolerance,
	}
}

// Orchestrator runs kernels through the preload, execute and read phases.
type Orchestrator struct {
	engine    Engine
	planner   tensor.Planner
	verify    bool
	tolerance *burst.Tolerance

	phase Phase
}

// Phase returns the phase the orchestrator is in.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

func (o *Orchestrator) enter(p Phase, d tensor.Dims) {
	if p != Idle && p != o.phase+1 {
		panic(fmt.Sprintf("invalid phase transition %s -> %s", o.phase, p))
	}

	pim.Trace("PhaseTransition",
		"Kernel", d.String(),
		"From", o.phase.String(),
		"To", p.String(),
	)

	o.phase = p
}

// Run plans the operands of inv and drives them through the memory system.
// Operands and buffers are owned by the run and released when it returns.
func (o *Orchestrator) Run(inv Invocation) (*Result, error) {
	d := inv.KernelDims()
	if o.verify {
		d.WantGolden = true
	}

	o.enter(Idle, d)

	data, err := o.planner.Plan(d)
	if err != nil {
		return nil, fmt.Errorf("failed to plan %s: %w", d, err)
	}

	prof := NewProfiler(o.engine)
	marks := Marks{Start: prof.Last()}

	o.enter(Preloading, d)
	if err := o.step(inv.preload, data); err != nil {
		return nil, err
	}
	marks.Preload = prof.Sample()

	o.enter(Executing, d)
	if err := o.step(inv.execute, data); err != nil {
		return nil, err
	}
	marks.Execute = prof.Sample()

	o.enter(Reading, d)
	var raw []burst.Burst
	err = o.step(func(e Engine, data *tensor.KernelData) error {
		var err error
		raw, err = inv.read(e, data)
		return err
	}, data)
	if err != nil {
		return nil, err
	}
	marks.Read = prof.Sample()

	o.enter(Done, d)

	r := &Result{
		Kernel: d.Kernel,
		Dims:   d,
		Raw:    raw,
		Golden: data.Golden,
		Marks:  marks,
	}

	if o.verify {
		r.Report = o.verifier(d).Verify(d, raw, data.Golden, data.NumOutputs())
	}

	return r, nil
}

func (o *Orchestrator) step(
	f func(e Engine, data *tensor.KernelData) error,
	data *tensor.KernelData,
) error {
	if err := f(o.engine, data); err != nil {
		return fmt.Errorf("%s %s: %w", o.phase, data.Dims, err)
	}

	if err := o.engine.RunToQuiescence(); err != nil {
		return fmt.Errorf("%s %s: %w", o.phase, data.Dims, err)
	}

	return nil
}

func (o *Orchestrator) verifier(d tensor.Dims) verify.Verifier {
	v := verify.ForDims(d)
	if o.tolerance != nil {
		v.Tolerance = *o.tolerance
	}

	return v
}
