// Package core assembles a pipeline, its latency table and its memory model
// from a single configuration.
package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/oosim/timing/cache"
	"github.com/sarchlab/oosim/timing/exeq"
	"github.com/sarchlab/oosim/timing/latency"
	"github.com/sarchlab/oosim/timing/pipeline"
)

// Memory model names accepted by Config.Memory.
const (
	MemoryFixed     = "fixed"
	MemoryCache     = "cache"
	MemoryHierarchy = "hierarchy"
)

// Config holds the full simulator configuration.
type Config struct {
	Pipeline pipeline.Config       `json:"pipeline"`
	Timing   *latency.TimingConfig `json:"timing"`

	// Memory selects the load/store latency model: "fixed" uses the load and
	// store latencies from Timing, "cache" a single data cache, "hierarchy" an
	// L1/L2 pair in front of memory.
	Memory string `json:"memory"`

	L1            cache.Config `json:"l1"`
	L2            cache.Config `json:"l2"`
	MemoryLatency uint64       `json:"memory_latency"`
}

// DefaultConfig returns the default configuration with the fixed memory model.
func DefaultConfig() *Config {
	return &Config{
		Pipeline:      pipeline.DefaultConfig(),
		Timing:        latency.DefaultTimingConfig(),
		Memory:        MemoryFixed,
		L1:            cache.DefaultConfig(),
		L2:            cache.DefaultL2Config(),
		MemoryLatency: cache.DefaultMemoryLatency,
	}
}

// LoadConfig reads a Config from a JSON file. Missing fields keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if c.Timing == nil {
		return fmt.Errorf("timing config is missing")
	}
	if err := c.Timing.Validate(); err != nil {
		return err
	}

	switch c.Memory {
	case MemoryFixed:
	case MemoryCache:
		if err := c.L1.Validate(); err != nil {
			return fmt.Errorf("l1: %w", err)
		}
	case MemoryHierarchy:
		if err := c.L1.Validate(); err != nil {
			return fmt.Errorf("l1: %w", err)
		}
		if err := c.L2.Validate(); err != nil {
			return fmt.Errorf("l2: %w", err)
		}
	default:
		return fmt.Errorf("unknown memory model %q", c.Memory)
	}

	return nil
}

// Core is a configured pipeline together with its memory model.
type Core struct {
	// Pipeline is the underlying out-of-order pipeline.
	Pipeline *pipeline.Pipeline

	config *Config
	memory exeq.MemorySystem
	l1     *cache.Cache
	l2     *cache.Cache
}

// NewCore validates config and builds a core fed by source.
func NewCore(source pipeline.TraceSource, config *Config) (*Core, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Core{config: config}
	table := latency.NewTableWithConfig(config.Timing)

	switch config.Memory {
	case MemoryCache:
		c.l1 = cache.New(config.L1)
		c.memory = c.l1
	case MemoryHierarchy:
		h := cache.NewHierarchy(config.L1, config.L2, config.MemoryLatency)
		c.l1, c.l2 = h.L1, h.L2
		c.memory = h
	default:
		c.memory = table
	}

	pipe, err := pipeline.NewPipeline(source,
		pipeline.WithConfig(config.Pipeline),
		pipeline.WithLatencyTable(table),
		pipeline.WithMemorySystem(c.memory),
	)
	if err != nil {
		return nil, err
	}
	c.Pipeline = pipe

	return c, nil
}

// Config returns the configuration the core was built with.
func (c *Core) Config() *Config {
	return c.config
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() error {
	return c.Pipeline.Tick()
}

// Halted returns true once the last trace instruction has retired.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Stats returns pipeline statistics.
func (c *Core) Stats() pipeline.Statistics {
	return c.Pipeline.Stats()
}

// Run executes the core until it halts.
func (c *Core) Run() error {
	return c.Pipeline.Run()
}

// RunCycles executes the core for at most the given number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) (bool, error) {
	return c.Pipeline.RunCycles(cycles)
}

// L1Stats returns the first-level cache statistics. ok is false with the
// fixed memory model.
func (c *Core) L1Stats() (stats cache.Statistics, ok bool) {
	if c.l1 == nil {
		return cache.Statistics{}, false
	}
	return c.l1.Stats(), true
}

// L2Stats returns the second-level cache statistics. ok is false unless the
// hierarchy memory model is used.
func (c *Core) L2Stats() (stats cache.Statistics, ok bool) {
	if c.l2 == nil {
		return cache.Statistics{}, false
	}
	return c.l2.Stats(), true
}
