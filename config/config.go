// Package config loads the device and system descriptions of the PIM memory
// system.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed hbm2_pim.yaml
var defaultDevice []byte

//go:embed system_hbm.yaml
var defaultSystem []byte

// DeviceConfig describes one HBM channel. Timings are in cycles.
type DeviceConfig struct {
	Name          string `yaml:"NAME"`
	NumBankGroups uint   `yaml:"NUM_BANK_GROUPS"`
	NumBanks      uint   `yaml:"NUM_BANKS"`
	NumRows       uint   `yaml:"NUM_ROWS"`

	// NumCols is the number of bursts in one row.
	NumCols uint `yaml:"NUM_COLS"`

	TCCD uint `yaml:"tCCD"`
	TRCD uint `yaml:"tRCD"`
	TRP  uint `yaml:"tRP"`
	TCL  uint `yaml:"tCL"`
	TWR  uint `yaml:"tWR"`

	// TPIM is the issue interval of an all-bank PIM operation.
	TPIM uint `yaml:"tPIM"`
}

// SystemConfig describes the topology around the devices.
type SystemConfig struct {
	NumChans        uint `yaml:"NUM_CHANS"`
	NumRanks        uint `yaml:"NUM_RANKS"`
	FreqMHz         uint `yaml:"FREQ_MHZ"`
	TransQueueDepth uint `yaml:"TRANS_QUEUE_DEPTH"`
}

// Config is the combined device and system configuration.
type Config struct {
	Device DeviceConfig
	System SystemConfig

	values map[string]uint
}

// Load reads the device and system files. An empty path selects the built-in
// default for that file.
func Load(devicePath, systemPath string) (*Config, error) {
	devData, err := readOrDefault(devicePath, defaultDevice)
	if err != nil {
		return nil, err
	}

	sysData, err := readOrDefault(systemPath, defaultSystem)
	if err != nil {
		return nil, err
	}

	return Parse(devData, sysData)
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := Parse(defaultDevice, defaultSystem)
	if err != nil {
		panic(err)
	}

	return c
}

func readOrDefault(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return data, nil
}

// Parse decodes device and system YAML documents.
func Parse(deviceYAML, systemYAML []byte) (*Config, error) {
	c := &Config{values: make(map[string]uint)}

	if err := decodeStrict(deviceYAML, &c.Device); err != nil {
		return nil, fmt.Errorf("device config: %w", err)
	}

	if err := decodeStrict(systemYAML, &c.System); err != nil {
		return nil, fmt.Errorf("system config: %w", err)
	}

	for _, doc := range [][]byte{deviceYAML, systemYAML} {
		if err := c.collectValues(doc); err != nil {
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	return dec.Decode(out)
}

func (c *Config) collectValues(doc []byte) error {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return err
	}

	for k, v := range raw {
		if n, ok := v.(int); ok && n >= 0 {
			c.values[k] = uint(n)
		}
	}

	return nil
}

// Validate checks the values the memory model depends on.
func (c *Config) Validate() error {
	d := c.Device
	s := c.System

	switch {
	case d.NumBanks == 0 || d.NumBanks%2 != 0:
		return fmt.Errorf("NUM_BANKS must be a positive even number, got %d",
			d.NumBanks)
	case d.NumRows == 0 || d.NumCols == 0:
		return fmt.Errorf("NUM_ROWS and NUM_COLS must be positive")
	case d.TCCD == 0 || d.TPIM == 0:
		return fmt.Errorf("tCCD and tPIM must be positive")
	case s.NumChans == 0 || s.NumRanks == 0:
		return fmt.Errorf("NUM_CHANS and NUM_RANKS must be positive")
	case s.FreqMHz == 0:
		return fmt.Errorf("FREQ_MHZ must be positive")
	case s.TransQueueDepth == 0:
		return fmt.Errorf("TRANS_QUEUE_DEPTH must be positive")
	}

	return nil
}

// GetUint returns an integer setting of either file by its key.
func (c *Config) GetUint(key string) (uint, error) {
	v, ok := c.values[key]
	if !ok {
		return 0, fmt.Errorf("config key %q not found", key)
	}

	return v, nil
}

// Keys lists the integer settings in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
