package api

import (
	"fmt"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/pimdriver/config"
	"github.com/sarchlab/pimdriver/pim"
)

// MemorySystemBuilder creates a new instance of MemorySystem.
type MemorySystemBuilder struct {
	devicePath string
	systemPath string
	outputDir  string
	traceTag   string
	queueDepth int
	monitor    *monitoring.Monitor
}

// WithDeviceConfig sets the device configuration file. An empty path uses
// the built-in HBM2 PIM device.
func (b MemorySystemBuilder) WithDeviceConfig(path string) MemorySystemBuilder {
	b.devicePath = path
	return b
}

// WithSystemConfig sets the system configuration file.
func (b MemorySystemBuilder) WithSystemConfig(path string) MemorySystemBuilder {
	b.systemPath = path
	return b
}

// WithOutputDir sets where statistics are written on Close.
func (b MemorySystemBuilder) WithOutputDir(dir string) MemorySystemBuilder {
	b.outputDir = dir
	return b
}

// WithTraceTag sets the prefix of output files.
func (b MemorySystemBuilder) WithTraceTag(tag string) MemorySystemBuilder {
	b.traceTag = tag
	return b
}

// WithQueueDepth overrides the transaction queue depth of the system file.
func (b MemorySystemBuilder) WithQueueDepth(n int) MemorySystemBuilder {
	b.queueDepth = n
	return b
}

// WithMonitor registers the engine and the device with a monitor.
func (b MemorySystemBuilder) WithMonitor(
	monitor *monitoring.Monitor,
) MemorySystemBuilder {
	b.monitor = monitor
	return b
}

// Build loads the configuration and creates the memory system.
func (b MemorySystemBuilder) Build(name string) (*MemorySystem, error) {
	cfg, err := config.Load(b.devicePath, b.systemPath)
	if err != nil {
		return nil, err
	}

	depth := b.queueDepth
	if depth == 0 {
		depth = int(cfg.System.TransQueueDepth)
	}
	if depth < 0 {
		return nil, fmt.Errorf("queue depth %d must not be negative", depth)
	}

	engine := sim.NewSerialEngine()

	device := pim.MakeBuilder().
		WithEngine(engine).
		WithFreq(sim.Freq(cfg.System.FreqMHz) * sim.MHz).
		WithConfig(cfg).
		WithQueueDepth(depth).
		Build(name + ".HBM")

	if b.monitor != nil {
		b.monitor.RegisterEngine(engine)
		b.monitor.RegisterComponent(device)
	}

	tag := b.traceTag
	if tag == "" {
		tag = name
	}

	return &MemorySystem{
		name:      name,
		engine:    engine,
		cfg:       cfg,
		device:    device,
		outputDir: b.outputDir,
		traceTag:  tag,
	}, nil
}

// KernelBuilder creates a kernel bound to a memory system.
type KernelBuilder struct {
	ms       *MemorySystem
	channels int
	ranks    int
}

// WithMemorySystem sets the memory system the kernel drives.
func (b KernelBuilder) WithMemorySystem(ms *MemorySystem) KernelBuilder {
	b.ms = ms
	return b
}

// WithChannels sets the number of PIM channels the kernel uses.
func (b KernelBuilder) WithChannels(n int) KernelBuilder {
	b.channels = n
	return b
}

// WithRanks sets the number of PIM ranks per channel the kernel uses.
func (b KernelBuilder) WithRanks(n int) KernelBuilder {
	b.ranks = n
	return b
}

// Build creates the kernel.
func (b KernelBuilder) Build() (*Kernel, error) {
	if b.ms == nil {
		return nil, fmt.Errorf("kernel needs a memory system")
	}

	full := b.ms.device.Geometry()
	if b.channels < 1 || b.channels > full.Channels {
		return nil, fmt.Errorf("kernel uses %d channels, device has %d",
			b.channels, full.Channels)
	}
	if b.ranks < 1 || b.ranks > full.Ranks {
		return nil, fmt.Errorf("kernel uses %d ranks, device has %d",
			b.ranks, full.Ranks)
	}

	g := full
	g.Channels = b.channels
	g.Ranks = b.ranks

	return &Kernel{
		ms:       b.ms,
		device:   b.ms.device,
		geometry: g,
	}, nil
}
