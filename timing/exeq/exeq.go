// Package exeq implements the execution queue, which holds scheduled
// instructions until their execution latency has elapsed.
//
// The queue is a pool of slots without ordering. Every cycle all occupied slots
// count down by one; an instruction whose count reaches zero has finished and
// can be removed in any order.
package exeq

import (
	"errors"
	"fmt"

	"github.com/sarchlab/oosim/insts"
)

// DefaultNumEntries is the default queue capacity.
const DefaultNumEntries = 16

var (
	// ErrFull is returned when inserting into a queue with no free slot.
	ErrFull = errors.New("exeq: trying to insert into full queue")
	// ErrNoneDone is returned when removing while no instruction has finished.
	ErrNoneDone = errors.New("exeq: no finished entry to remove")
)

// MemorySystem resolves the latency of a data access.
type MemorySystem interface {
	AccessLatency(addr uint64, isWrite bool) uint64
}

// LatencyTable resolves the latency of non-memory operations.
type LatencyTable interface {
	GetLatency(op insts.OpType) uint64
}

type entry struct {
	valid bool
	inst  insts.Instruction
}

// EXEQ is the execution queue.
type EXEQ struct {
	entries []entry
	table   LatencyTable
	mem     MemorySystem
}

// New creates a queue with numEntries slots. Non-memory latencies come from
// table, load/store latencies from mem.
func New(numEntries int, table LatencyTable, mem MemorySystem) *EXEQ {
	return &EXEQ{
		entries: make([]entry, numEntries),
		table:   table,
		mem:     mem,
	}
}

func (q *EXEQ) latencyOf(inst *insts.Instruction) uint64 {
	switch inst.Op {
	case insts.OpLoad:
		return q.mem.AccessLatency(inst.MemAddr, false)
	case insts.OpStore:
		return q.mem.AccessLatency(inst.MemAddr, true)
	default:
		return q.table.GetLatency(inst.Op)
	}
}

// Insert places inst into a free slot with its execution latency as the wait
// count. Insertion into a full queue is a capacity misconfiguration.
func (q *EXEQ) Insert(inst insts.Instruction) error {
	for i := range q.entries {
		if q.entries[i].valid {
			continue
		}

		inst.ExeWaitCycles = q.latencyOf(&inst)
		q.entries[i] = entry{valid: true, inst: inst}
		return nil
	}

	return fmt.Errorf("inserting inst %d: %w", inst.InstNum, ErrFull)
}

// Cycle decrements the wait count of every occupied slot.
func (q *EXEQ) Cycle() {
	for i := range q.entries {
		e := &q.entries[i]
		if e.valid && e.inst.ExeWaitCycles > 0 {
			e.inst.ExeWaitCycles--
		}
	}
}

// CheckDone returns true if any occupied slot has finished.
func (q *EXEQ) CheckDone() bool {
	for i := range q.entries {
		if q.entries[i].valid && q.entries[i].inst.ExeWaitCycles == 0 {
			return true
		}
	}
	return false
}

// Remove frees a finished slot and returns its instruction.
func (q *EXEQ) Remove() (insts.Instruction, error) {
	for i := range q.entries {
		e := &q.entries[i]
		if e.valid && e.inst.ExeWaitCycles == 0 {
			e.valid = false
			return e.inst, nil
		}
	}
	return insts.Instruction{}, ErrNoneDone
}

// Flush frees every slot.
func (q *EXEQ) Flush() {
	for i := range q.entries {
		q.entries[i].valid = false
	}
}

// Size returns the capacity.
func (q *EXEQ) Size() int {
	return len(q.entries)
}

// Len returns the number of occupied slots.
func (q *EXEQ) Len() int {
	n := 0
	for i := range q.entries {
		if q.entries[i].valid {
			n++
		}
	}
	return n
}

// Pending returns copies of all in-flight instructions in slot order.
func (q *EXEQ) Pending() []insts.Instruction {
	var out []insts.Instruction
	for i := range q.entries {
		if q.entries[i].valid {
			out = append(out, q.entries[i].inst)
		}
	}
	return out
}
