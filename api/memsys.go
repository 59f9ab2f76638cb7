// Package api defines the host-side interface of the PIM memory system.
package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/pimdriver/config"
	"github.com/sarchlab/pimdriver/pim"
	"gopkg.in/yaml.v3"
)

// MemorySystem owns the simulation engine and the PIM device.
type MemorySystem struct {
	name      string
	engine    sim.Engine
	cfg       *config.Config
	device    *pim.Device
	outputDir string
	traceTag  string
}

// Device returns the simulated device.
func (m *MemorySystem) Device() *pim.Device {
	return m.device
}

// GetConfigUint returns an integer setting of the device or system file.
func (m *MemorySystem) GetConfigUint(key string) (uint, error) {
	return m.cfg.GetUint(key)
}

// Run runs the engine until every issued transaction has retired.
func (m *MemorySystem) Run() error {
	if m.device.Pending() == 0 {
		return nil
	}

	m.device.TickLater()

	if err := m.engine.Run(); err != nil {
		return fmt.Errorf("engine run failed: %w", err)
	}

	return nil
}

// StatsPath returns the file Close writes statistics to, or an empty string
// when no output directory is set.
func (m *MemorySystem) StatsPath() string {
	if m.outputDir == "" {
		return ""
	}

	return filepath.Join(m.outputDir, m.traceTag+".stats.yaml")
}

// Close writes the device statistics to the output directory, if any.
func (m *MemorySystem) Close() error {
	path := m.StatsPath()
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	out, err := yaml.Marshal(map[string]any{
		"system": m.name,
		"device": m.cfg.Device.Name,
		"stats":  m.device.Stats(),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}

	return nil
}
