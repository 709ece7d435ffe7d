package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds execution latencies per operation class.
type TimingConfig struct {
	// ALULatency is the execution latency of ALU operations. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the execution latency of conditional branches.
	// Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// OtherLatency is the execution latency of all remaining operations.
	// Default: 1 cycle.
	OtherLatency uint64 `json:"other_latency"`

	// LoadLatency is the load latency when no cache model is attached.
	// Default: 4 cycles.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the store latency when no cache model is attached.
	// Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`
}

// DefaultTimingConfig returns a TimingConfig with the default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:    1,
		BranchLatency: 1,
		OtherLatency:  1,
		LoadLatency:   4,
		StoreLatency:  1,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Missing fields keep their
// default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.OtherLatency == 0 {
		return fmt.Errorf("other_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
