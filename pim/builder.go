package pim

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/pimdriver/config"
)

// Builder can create new devices.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	cfg        *config.Config
	queueDepth int
}

// MakeBuilder returns a builder using the built-in configuration.
func MakeBuilder() Builder {
	cfg := config.Default()

	return Builder{
		freq:       sim.Freq(cfg.System.FreqMHz) * sim.MHz,
		cfg:        cfg,
		queueDepth: int(cfg.System.TransQueueDepth),
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the device.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithConfig sets the device and system configuration.
func (b Builder) WithConfig(cfg *config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithQueueDepth sets the number of transactions the device can hold.
func (b Builder) WithQueueDepth(n int) Builder {
	if n < 1 {
		panic("queue depth must be positive")
	}

	b.queueDepth = n
	return b
}

// Build creates a device.
func (b Builder) Build(name string) *Device {
	dev := b.cfg.Device
	sys := b.cfg.System

	d := &Device{
		timing: dev,
		geometry: Geometry{
			Channels: int(sys.NumChans),
			Ranks:    int(sys.NumRanks),
			Banks:    int(dev.NumBanks),
			Rows:     int(dev.NumRows),
			Cols:     int(dev.NumCols),
		},
		queueDepth: b.queueDepth,
		stats: Stats{
			Transactions: make(map[string]uint64),
		},
	}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	g := d.geometry
	d.banks = make([][][]*bank, g.Channels)
	for ch := range d.banks {
		d.banks[ch] = make([][]*bank, g.Ranks)
		for rk := range d.banks[ch] {
			d.banks[ch][rk] = make([]*bank, g.Banks)
			for bk := range d.banks[ch][rk] {
				d.banks[ch][rk][bk] = newBank(g.Cols)
			}
		}
	}

	d.queues = make([][]*transaction, g.Channels)
	d.busyUntil = make([]uint64, g.Channels)

	Trace("DeviceBuilt",
		"Device", name,
		"Config", dev.Name,
		"Geometry", fmt.Sprintf("%+v", g),
		"QueueDepth", b.queueDepth,
	)

	return d
}
