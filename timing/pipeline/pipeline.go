// Package pipeline provides the trace-driven out-of-order pipeline driver.
//
// The pipeline has seven stages: fetch, decode, issue (rename), schedule,
// execute, writeback and commit. Renaming goes through the RAT into ROB tags,
// scheduling picks ready ROB entries, execution latency is modeled by the
// EXEQ, and commit retires the ROB head in program order. When exceptions are
// enabled, committing a faulting instruction flushes all speculative state and
// replays the in-flight instructions after a fixed handler delay.
package pipeline

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/oosim/insts"
	"github.com/sarchlab/oosim/timing/exeq"
	"github.com/sarchlab/oosim/timing/latency"
	"github.com/sarchlab/oosim/timing/rat"
	"github.com/sarchlab/oosim/timing/rob"
	"github.com/sarchlab/oosim/trace"
)

// Hook positions invoked by the pipeline.
var (
	// HookPosCommit fires for every retired instruction. Item is the
	// insts.Instruction.
	HookPosCommit = &sim.HookPos{Name: "Commit"}
	// HookPosException fires when a faulting instruction reaches commit and the
	// pipeline is flushed. Item is the faulting insts.Instruction.
	HookPosException = &sim.HookPos{Name: "Exception"}
	// HookPosRecoveryDone fires when the last replayed instruction retires.
	// Item is that insts.Instruction.
	HookPosRecoveryDone = &sim.HookPos{Name: "RecoveryDone"}
)

// TraceSource supplies trace records. Next returns io.EOF at the end of the
// trace.
type TraceSource interface {
	Next() (trace.Record, error)
}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Exceptions is the number of exceptions taken.
	Exceptions uint64
	// ReplayedInstructions is the number of instructions refetched from the
	// recovery window.
	ReplayedInstructions uint64
	// ROBFullStalls is the number of cycles issue stalled on a full ROB.
	ROBFullStalls uint64
	// HandlerCycles is the number of cycles spent in exception handlers.
	HandlerCycles uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// IPC returns the instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithConfig sets the structural configuration.
func WithConfig(config Config) PipelineOption {
	return func(p *Pipeline) {
		p.config = config
	}
}

// WithLatencyTable sets the latency table for non-memory operations.
func WithLatencyTable(table exeq.LatencyTable) PipelineOption {
	return func(p *Pipeline) {
		p.latencyTable = table
	}
}

// WithMemorySystem sets the model that resolves load and store latency.
func WithMemorySystem(mem exeq.MemorySystem) PipelineOption {
	return func(p *Pipeline) {
		p.memory = mem
	}
}

// Pipeline is the out-of-order pipeline.
type Pipeline struct {
	sim.HookableBase

	config Config
	source TraceSource

	latencyTable exeq.LatencyTable
	memory       exeq.MemorySystem

	// Pipeline latches. exLatch grows to hold every instruction that finishes
	// in the same cycle.
	feLatch []Latch
	idLatch []Latch
	scLatch []Latch
	exLatch []Latch

	rob  *rob.ROB
	rat  *rat.RAT
	exeq *exeq.EXEQ

	// instNumTracker is the sequence number of the last fetched instruction.
	instNumTracker uint64
	// haltInstNum is the sequence number of the last trace instruction, known
	// once fetch reaches the end of the trace.
	haltInstNum uint64
	fetchDone   bool
	// lastRetired is the sequence number of the youngest retired instruction.
	lastRetired uint64
	// nextDecode is the sequence number decode accepts next.
	nextDecode uint64

	recovery recovery

	stats  Statistics
	halted bool
}

// NewPipeline creates a pipeline fed by source. Without options it uses
// DefaultConfig and the default latency table for both operation and memory
// latencies.
func NewPipeline(source TraceSource, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		config: DefaultConfig(),
		source: source,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	if p.latencyTable == nil {
		p.latencyTable = latency.NewTable()
	}
	if p.memory == nil {
		p.memory = latency.NewTable()
	}

	width := p.config.Width
	p.feLatch = make([]Latch, width)
	p.idLatch = make([]Latch, width)
	p.scLatch = make([]Latch, width)

	p.rob = rob.New(p.config.NumROBEntries)
	p.rat = rat.New(p.config.NumArchRegs)
	p.exeq = exeq.New(p.config.EXEQEntries(), p.latencyTable, p.memory)

	p.haltInstNum = ^uint64(0) - 3
	p.nextDecode = 1

	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Halted returns true once the last trace instruction has retired.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// HaltInstNum returns the sequence number of the last trace instruction. It is
// only meaningful once the end of the trace has been fetched.
func (p *Pipeline) HaltInstNum() uint64 {
	return p.haltInstNum
}

// ROB returns the reorder buffer.
func (p *Pipeline) ROB() *rob.ROB {
	return p.rob
}

// RAT returns the register alias table.
func (p *Pipeline) RAT() *rat.RAT {
	return p.rat
}

// EXEQ returns the execution queue.
func (p *Pipeline) EXEQ() *exeq.EXEQ {
	return p.exeq
}

// FetchLatches returns a copy of the fetch latches.
func (p *Pipeline) FetchLatches() []Latch {
	return copyLatches(p.feLatch)
}

// DecodeLatches returns a copy of the decode latches.
func (p *Pipeline) DecodeLatches() []Latch {
	return copyLatches(p.idLatch)
}

// ScheduleLatches returns a copy of the schedule latches.
func (p *Pipeline) ScheduleLatches() []Latch {
	return copyLatches(p.scLatch)
}

// ExecuteLatches returns a copy of the execute/writeback latches.
func (p *Pipeline) ExecuteLatches() []Latch {
	return copyLatches(p.exLatch)
}

// Run executes the pipeline until it halts.
func (p *Pipeline) Run() error {
	for !p.halted {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles executes the pipeline for at most the given number of cycles.
// Returns true if still running, false if halted.
func (p *Pipeline) RunCycles(cycles uint64) (bool, error) {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		if err := p.Tick(); err != nil {
			return !p.halted, err
		}
	}
	return !p.halted, nil
}

// Tick executes one pipeline cycle.
//
// Stages are evaluated from commit back to fetch, so every stage sees the
// state its downstream neighbour left in this cycle and latches free up in
// the same cycle they are drained. The order must not change.
func (p *Pipeline) Tick() error {
	if p.halted {
		return nil
	}

	p.stats.Cycles++

	p.commit()
	p.writeback()
	if err := p.execute(); err != nil {
		return fmt.Errorf("cycle %d: %w", p.stats.Cycles, err)
	}
	p.schedule()
	p.issue()
	p.decode()
	if err := p.fetch(); err != nil {
		return fmt.Errorf("cycle %d: %w", p.stats.Cycles, err)
	}

	return nil
}

func (p *Pipeline) invokeHook(pos *sim.HookPos, inst insts.Instruction) {
	if p.NumHooks() == 0 {
		return
	}
	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   inst,
	})
}
