// Package latency provides the execution latency model of the out-of-order
// core.
//
// A Table answers two questions: how long a non-memory operation stays in the
// execution queue, and, when no cache model is attached, how long a load or
// store takes.
package latency

import (
	"github.com/sarchlab/oosim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the operation class.
// Loads and stores return their fixed memory latency.
func (t *Table) GetLatency(op insts.OpType) uint64 {
	switch op {
	case insts.OpALU:
		return t.config.ALULatency
	case insts.OpCBR:
		return t.config.BranchLatency
	case insts.OpLoad:
		return t.config.LoadLatency
	case insts.OpStore:
		return t.config.StoreLatency
	default:
		return t.config.OtherLatency
	}
}

// AccessLatency returns the fixed latency of a memory access. The address is
// ignored; this is the model used when no cache is simulated.
func (t *Table) AccessLatency(_ uint64, isWrite bool) uint64 {
	if isWrite {
		return t.config.StoreLatency
	}
	return t.config.LoadLatency
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
